package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"invoicerag/internal/domain"
)

var exportCmd = &cobra.Command{
	Use:   "export <invoice.json>",
	Short: "Export an edited invoice",
	Long: `Read a structured invoice from a JSON file, recompute its totals and
persist it: the record is upserted by invoice number and the final JSON is
written to the exports directory. Use this after hand-editing the output of
'generate'.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	var inv domain.InvoiceData
	if err := json.Unmarshal(data, &inv); err != nil {
		return fmt.Errorf("invalid invoice JSON: %w", err)
	}
	if inv.InvoiceNumber == "" {
		return fmt.Errorf("invoice_number is required")
	}

	svc, err := openServices()
	if err != nil {
		return err
	}
	defer svc.Close()

	rec, overwrote, err := svc.ingest.Export(&inv, GetConfig().ExportsDir())
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	if overwrote {
		fmt.Printf("Warning: overwrote existing record for invoice %s\n", inv.InvoiceNumber)
	}
	fmt.Printf("Exported %s (record %d, total %.2f)\n", rec.FilePath, rec.ID, inv.Totals.GrandTotal)
	return nil
}
