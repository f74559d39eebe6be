package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"quill/internal/api"
	"quill/internal/config"
)

func newLoginCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Open a session and print its token",
		Args:  requireExactlyArgs(1, "username is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !passwordStdin {
				return fmt.Errorf("--password-stdin is required")
			}
			password, err := readPasswordStdin()
			if err != nil {
				return err
			}

			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.Login(cmd.Context(), api.AuthLoginRequest{Username: args[0], Password: password})
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				return writeLines([]string{
					fmt.Sprintf("logged in as %s (%s) until %s", resp.User.Username, resp.User.Role, formatTime(resp.ExpiresAt)),
					fmt.Sprintf("export QUILL_SESSION=%s", resp.Token),
				})
			})
		},
	}

	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read password from stdin")
	return cmd
}

func newLogoutCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session in QUILL_SESSION",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				if err := client.Logout(cmd.Context()); err != nil {
					return err
				}
				return writePlain("session revoked; unset QUILL_SESSION\n")
			})
		},
	}
}

func newWhoamiCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show how the CLI is authenticated",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				me, err := client.Me(cmd.Context())
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(me)
				}
				if !me.Authenticated {
					return writePlain("anonymous\n")
				}
				who := me.AuthType
				if me.User != nil {
					who = fmt.Sprintf("%s (%s, %s)", me.User.Username, me.User.Role, me.AuthType)
				}
				return writePlain("%s staff=%t admin=%t\n", who, me.Staff, me.Admin)
			})
		},
	}
}
