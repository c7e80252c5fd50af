package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"invoicerag/internal/adapter/llm"
	"invoicerag/internal/domain"
	"invoicerag/internal/usecase"
)

var (
	generatePrompt string
	generateExport bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Draft an invoice from a natural-language request",
	Long: `Retrieve the most similar indexed invoices, fold them into the prompt
together with the business profile and client roster, and ask the LLM for a
structured invoice. Totals are always recomputed locally; whatever the model
returns in the totals fields is discarded.

Examples:
  invoicerag generate -q "2 hours consulting for Acme, 10% discount, net 30"
  invoicerag generate -q "monthly hosting for Widgets Inc" --export`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVarP(&generatePrompt, "query", "q", "", "invoice request (required)")
	generateCmd.Flags().BoolVar(&generateExport, "export", false, "persist the invoice and write it to the exports directory")
	generateCmd.MarkFlagRequired("query")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	svc, err := openServices()
	if err != nil {
		return err
	}
	defer svc.Close()

	client, err := llm.NewOpenAIClient(cfg.LLM.APIKeyEnv, cfg.LLM.Model, cfg.LLM.BaseURL, cfg.LLM.Temperature, cfg.LLM.MaxTokens)
	if err != nil {
		return err
	}

	assembler := usecase.NewContextAssembler(svc.index, cfg.Retrieval.TopK, cfg.Retrieval.MaxDocs, cfg.Retrieval.DistanceThreshold)
	ragContext, docs, err := assembler.GetContext(generatePrompt)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}
	if docs > 0 {
		fmt.Printf("Using %d similar invoice(s) as context\n", docs)
	} else {
		fmt.Println("No similar invoices found, generating without context")
	}

	profile, err := svc.records.GetProfile()
	if err != nil {
		return fmt.Errorf("failed to load business profile: %w", err)
	}
	clients, err := svc.records.ListClients()
	if err != nil {
		return fmt.Errorf("failed to load clients: %w", err)
	}
	nextNumber, err := svc.records.NextInvoiceNumber()
	if err != nil {
		return fmt.Errorf("failed to derive invoice number: %w", err)
	}

	generator := usecase.NewGenerateUseCase(client, cfg.LLM.MaxRetries)
	inv, err := generator.Generate(context.Background(), usecase.GenerateInput{
		Prompt:            generatePrompt,
		Profile:           profile,
		Clients:           clients,
		RAGContext:        ragContext,
		NextInvoiceNumber: nextNumber,
	})
	if err != nil {
		var genErr *domain.GenerationError
		if errors.As(err, &genErr) {
			return fmt.Errorf("the model never produced a valid invoice (%d attempts); last output:\n%s", genErr.Attempts, genErr.LastRaw)
		}
		return err
	}

	domain.RecalculateTotals(inv)

	if generateExport {
		rec, overwrote, err := svc.ingest.Export(inv, cfg.ExportsDir())
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		if overwrote {
			fmt.Printf("Warning: overwrote existing record for invoice %s\n", inv.InvoiceNumber)
		}
		fmt.Printf("Saved %s (record %d)\n", rec.FilePath, rec.ID)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(inv)
}
