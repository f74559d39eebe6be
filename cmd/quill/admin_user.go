package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"quill/internal/api"
	internalauth "quill/internal/auth"
	"quill/internal/config"
	"quill/internal/models"
)

func newAdminUserCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(
		newAdminUserAddCmd(cfg, jsonOutput),
		newAdminUserListCmd(cfg, jsonOutput),
		newAdminUserUpdateCmd(cfg, jsonOutput),
		newAdminUserDeleteCmd(cfg, jsonOutput),
	)
	return cmd
}

func newAdminUserAddCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		passwordStdin bool
		req           api.AdminUserCreateRequest
	)

	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Create a user with a role",
		Args:  requireExactlyArgs(1, "username is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !passwordStdin {
				return fmt.Errorf("--password-stdin is required")
			}
			username, err := internalauth.NormalizeUsername(args[0])
			if err != nil {
				return err
			}
			if _, err := models.ParseRole(req.Role); err != nil {
				return err
			}
			password, err := readPasswordStdin()
			if err != nil {
				return err
			}
			req.Username = username
			req.Password = password

			return withClient(cfg, func(client *api.Client) error {
				created, err := client.CreateUser(cmd.Context(), req)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(created)
				}
				return writePlain("created %s user %s (%s)\n", created.Role, created.Username, created.ID)
			})
		},
	}

	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read password from stdin")
	cmd.Flags().StringVar(&req.Role, "role", string(models.RoleMember), "admin, editor or member")
	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "last name")
	return cmd
}

func newAdminUserListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				users, err := client.ListUsers(cmd.Context())
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(map[string]any{"count": len(users), "users": users})
				}
				if len(users) == 0 {
					return writePlain("no users\n")
				}
				if err := writePlain("USERNAME\tROLE\tSTATUS\tID\n"); err != nil {
					return err
				}
				for _, user := range users {
					status := "enabled"
					if user.Disabled {
						status = "disabled"
					}
					if err := writePlain("%s\t%s\t%s\t%s\n", user.Username, user.Role, status, user.ID); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newAdminUserUpdateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		role, email, firstName, lastName string
		disable, enable, passwordStdin   bool
	)

	cmd := &cobra.Command{
		Use:   "update <username>",
		Short: "Change a user's role, details or status",
		Args:  requireExactlyArgs(1, "username is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if disable && enable {
				return fmt.Errorf("--disable and --enable are mutually exclusive")
			}
			req := api.AdminUserUpdateRequest{
				Role:      stringFlag(cmd, "role", role),
				Email:     stringFlag(cmd, "email", email),
				FirstName: stringFlag(cmd, "first-name", firstName),
				LastName:  stringFlag(cmd, "last-name", lastName),
			}
			if disable || enable {
				req.Disabled = &disable
			}
			if passwordStdin {
				password, err := readPasswordStdin()
				if err != nil {
					return err
				}
				req.Password = &password
			}

			return withClient(cfg, func(client *api.Client) error {
				updated, err := client.UpdateUser(cmd.Context(), args[0], req)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(updated)
				}
				return writePlain("updated user %s (role=%s disabled=%t)\n", updated.Username, updated.Role, updated.Disabled)
			})
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "admin, editor or member")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&firstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "last name")
	cmd.Flags().BoolVar(&disable, "disable", false, "block logins and revoke access")
	cmd.Flags().BoolVar(&enable, "enable", false, "re-enable a disabled user")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read a new password from stdin")
	return cmd
}

func newAdminUserDeleteCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <username>",
		Aliases: []string{"rm"},
		Short:   "Delete a user; authored content keeps a null author",
		Args:    requireExactlyArgs(1, "username is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.DeleteUser(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				return writePlain("deleted user %s\n", args[0])
			})
		},
	}
}
