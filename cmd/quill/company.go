package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"quill/internal/api"
	"quill/internal/config"
	"quill/internal/models"
)

type companyFlags struct {
	name, logo, phone, email, address string
}

func (f *companyFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "company name")
	cmd.Flags().StringVar(&f.logo, "logo", "", "uploaded logo media key; empty clears it")
	cmd.Flags().StringVar(&f.phone, "phone", "", "phone number in E.164 form")
	cmd.Flags().StringVar(&f.email, "email", "", "contact email")
	cmd.Flags().StringVar(&f.address, "address", "", "postal address")
}

func (f *companyFlags) request(cmd *cobra.Command) api.CompanyRequest {
	return api.CompanyRequest{
		Name:    stringFlag(cmd, "name", f.name),
		Logo:    stringFlag(cmd, "logo", f.logo),
		Phone:   stringFlag(cmd, "phone", f.phone),
		Email:   stringFlag(cmd, "email", f.email),
		Address: stringFlag(cmd, "address", f.address),
	}
}

func newCompanyCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "company",
		Short: "Manage company records",
	}
	cmd.AddCommand(
		newCompanyListCmd(cfg, jsonOutput),
		newCompanyShowCmd(cfg, jsonOutput),
		newCompanyWriteCmd(cfg, jsonOutput, false),
		newCompanyWriteCmd(cfg, jsonOutput, true),
		newCompanyDeleteCmd(cfg, jsonOutput),
	)
	return cmd
}

func newCompanyListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List companies",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				companies, err := client.ListCompanies(cmd.Context())
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(companies)
				}
				if len(companies) == 0 {
					return writePlain("no companies\n")
				}
				lines := make([]string, 0, len(companies))
				for _, company := range companies {
					lines = append(lines, fmt.Sprintf("%s  %s", company.ID, company.Name))
				}
				return writeLines(lines)
			})
		},
	}
}

func newCompanyShowCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one company",
		Args:  requireOneID,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				company, err := client.GetCompany(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(company)
				}
				return writeCompanyDetail(company)
			})
		},
	}
}

// newCompanyWriteCmd builds create, or update when update is set.
func newCompanyWriteCmd(cfg *config.Config, jsonOutput *bool, update bool) *cobra.Command {
	var flags companyFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a company",
		Args:  cobra.NoArgs,
	}
	if update {
		cmd.Use = "update <id>"
		cmd.Short = "Update a company"
		cmd.Args = requireOneID
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		req := flags.request(cmd)
		if !update && req.Name == nil {
			return fmt.Errorf("--name is required")
		}
		return withClient(cfg, func(client *api.Client) error {
			var (
				company models.Company
				err     error
			)
			if update {
				company, err = client.UpdateCompany(cmd.Context(), args[0], req)
			} else {
				company, err = client.CreateCompany(cmd.Context(), req)
			}
			if err != nil {
				return err
			}
			if *jsonOutput {
				return writeJSON(company)
			}
			return writeCompanyDetail(company)
		})
	}
	flags.bind(cmd)
	return cmd
}

func newCompanyDeleteCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a company and its logo",
		Args:    requireOneID,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.DeleteCompany(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				lines := []string{fmt.Sprintf("deleted company %s", resp.ID)}
				for _, key := range resp.PurgedFiles {
					lines = append(lines, "  removed "+key)
				}
				return writeLines(lines)
			})
		},
	}
}

func writeCompanyDetail(company models.Company) error {
	lines := []string{
		fmt.Sprintf("%s  %s", company.ID, company.Name),
	}
	for _, field := range [][2]string{
		{"logo", company.Logo},
		{"phone", company.Phone},
		{"email", company.Email},
		{"address", company.Address},
	} {
		if field[1] != "" {
			lines = append(lines, fmt.Sprintf("%s: %s", field[0], field[1]))
		}
	}
	lines = append(lines, "updated_at: "+formatTime(company.UpdatedAt))
	return writeLines(lines)
}
