package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Manage invoice records",
}

var recordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoice records, newest first",
	RunE:  runRecordsList,
}

var recordsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a record together with its vectors and stored file",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecordsDelete,
}

var recordsReindexCmd = &cobra.Command{
	Use:   "reindex <id>",
	Short: "Rebuild a generated invoice's vectors from its stored JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecordsReindex,
}

func init() {
	rootCmd.AddCommand(recordsCmd)
	recordsCmd.AddCommand(recordsListCmd)
	recordsCmd.AddCommand(recordsDeleteCmd)
	recordsCmd.AddCommand(recordsReindexCmd)
}

func runRecordsList(cmd *cobra.Command, args []string) error {
	svc, err := openServices()
	if err != nil {
		return err
	}
	defer svc.Close()

	records, err := svc.records.ListRecords()
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("No records.")
		return nil
	}

	fmt.Printf("%-5s %-12s %-10s %-28s %-12s %-22s %10s\n", "ID", "STATUS", "SOURCE", "FILE", "NUMBER", "CLIENT", "TOTAL")
	for _, rec := range records {
		total := "-"
		if rec.GrandTotal != nil {
			total = fmt.Sprintf("%.2f", *rec.GrandTotal)
		}
		fmt.Printf("%-5d %-12s %-10s %-28s %-12s %-22s %10s\n",
			rec.ID, rec.Status, rec.Source, clip(rec.Filename, 28), clip(rec.InvoiceNumber, 12), clip(rec.ClientName, 22), total)
	}
	return nil
}

func runRecordsDelete(cmd *cobra.Command, args []string) error {
	id, err := parseRecordID(args[0])
	if err != nil {
		return err
	}

	svc, err := openServices()
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.ingest.Delete(id); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	fmt.Printf("Deleted record %d\n", id)
	return nil
}

func runRecordsReindex(cmd *cobra.Command, args []string) error {
	id, err := parseRecordID(args[0])
	if err != nil {
		return err
	}

	svc, err := openServices()
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.ingest.Reindex(id); err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}
	fmt.Printf("Re-indexed record %d\n", id)
	return nil
}

func parseRecordID(arg string) (uint64, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid record id: %s", arg)
	}
	return id, nil
}

// clip shortens s to at most n display positions, counting runes so a
// multibyte name is never cut mid-character.
func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
