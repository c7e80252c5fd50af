package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"invoicerag/internal/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage the business profile",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the business profile used in generation prompts",
	RunE:  runSettingsShow,
}

var profileFlags domain.BusinessProfile

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update business profile fields",
	Long: `Update the business profile. Only the flags you pass change; everything
else keeps its stored value.

Example:
  invoicerag settings set --name "My Studio" --currency EUR --tax 19`,
	RunE: runSettingsSet,
}

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Manage the client roster",
}

var (
	clientName    string
	clientEmail   string
	clientPhone   string
	clientAddress string
	clientNotes   string
)

var clientAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a client to the roster",
	RunE:  runClientAdd,
}

var clientListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known clients",
	RunE:  runClientList,
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)

	f := settingsSetCmd.Flags()
	f.StringVar(&profileFlags.Name, "name", "", "business name")
	f.StringVar(&profileFlags.Address, "address", "", "business address")
	f.StringVar(&profileFlags.Email, "email", "", "billing email")
	f.StringVar(&profileFlags.Phone, "phone", "", "phone number")
	f.StringVar(&profileFlags.TaxID, "tax-id", "", "tax / VAT id")
	f.StringVar(&profileFlags.DefaultCurrency, "currency", "", "default currency code")
	f.Float64Var(&profileFlags.DefaultTaxPct, "tax", 0, "default tax percentage")
	f.StringVar(&profileFlags.PaymentTerms, "terms", "", "default payment terms")
	f.StringVar(&profileFlags.BankName, "bank", "", "bank name")
	f.StringVar(&profileFlags.AccountName, "account-name", "", "account holder")
	f.StringVar(&profileFlags.AccountNumber, "account", "", "account number / IBAN")
	f.StringVar(&profileFlags.RoutingNumber, "routing", "", "routing number / BIC")

	rootCmd.AddCommand(clientCmd)
	clientCmd.AddCommand(clientAddCmd)
	clientCmd.AddCommand(clientListCmd)

	clientAddCmd.Flags().StringVar(&clientName, "name", "", "client name (required)")
	clientAddCmd.Flags().StringVar(&clientEmail, "email", "", "client email")
	clientAddCmd.Flags().StringVar(&clientPhone, "phone", "", "client phone")
	clientAddCmd.Flags().StringVar(&clientAddress, "address", "", "billing address")
	clientAddCmd.Flags().StringVar(&clientNotes, "notes", "", "free-form notes")
	clientAddCmd.MarkFlagRequired("name")
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	svc, err := openServices()
	if err != nil {
		return err
	}
	defer svc.Close()

	profile, err := svc.records.GetProfile()
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(profile)
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	svc, err := openServices()
	if err != nil {
		return err
	}
	defer svc.Close()

	profile, err := svc.records.GetProfile()
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	flags := cmd.Flags()
	stringFields := []struct {
		flag string
		src  *string
		dst  *string
	}{
		{"name", &profileFlags.Name, &profile.Name},
		{"address", &profileFlags.Address, &profile.Address},
		{"email", &profileFlags.Email, &profile.Email},
		{"phone", &profileFlags.Phone, &profile.Phone},
		{"tax-id", &profileFlags.TaxID, &profile.TaxID},
		{"currency", &profileFlags.DefaultCurrency, &profile.DefaultCurrency},
		{"terms", &profileFlags.PaymentTerms, &profile.PaymentTerms},
		{"bank", &profileFlags.BankName, &profile.BankName},
		{"account-name", &profileFlags.AccountName, &profile.AccountName},
		{"account", &profileFlags.AccountNumber, &profile.AccountNumber},
		{"routing", &profileFlags.RoutingNumber, &profile.RoutingNumber},
	}
	for _, f := range stringFields {
		if flags.Changed(f.flag) {
			*f.dst = *f.src
		}
	}
	if flags.Changed("tax") {
		profile.DefaultTaxPct = profileFlags.DefaultTaxPct
	}

	if err := svc.records.SaveProfile(profile); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	fmt.Println("Profile updated.")
	return nil
}

func runClientAdd(cmd *cobra.Command, args []string) error {
	svc, err := openServices()
	if err != nil {
		return err
	}
	defer svc.Close()

	client := &domain.Client{
		Name:  clientName,
		Email: clientEmail,
		Phone: clientPhone,
		Notes: clientNotes,
	}
	if clientAddress != "" {
		client.Addresses = []domain.ClientAddress{{Label: "billing", Address: clientAddress}}
	}

	if err := svc.records.AddClient(client); err != nil {
		return fmt.Errorf("failed to add client: %w", err)
	}
	fmt.Printf("Added client %d: %s\n", client.ID, client.Name)
	return nil
}

func runClientList(cmd *cobra.Command, args []string) error {
	svc, err := openServices()
	if err != nil {
		return err
	}
	defer svc.Close()

	clients, err := svc.records.ListClients()
	if err != nil {
		return fmt.Errorf("failed to list clients: %w", err)
	}
	if len(clients) == 0 {
		fmt.Println("No clients.")
		return nil
	}

	for _, c := range clients {
		line := fmt.Sprintf("%d. %s", c.ID, c.Name)
		if c.Email != "" {
			line += " <" + c.Email + ">"
		}
		fmt.Println(line)
		for _, addr := range c.Addresses {
			fmt.Printf("   %s: %s\n", addr.Label, addr.Address)
		}
	}
	return nil
}
