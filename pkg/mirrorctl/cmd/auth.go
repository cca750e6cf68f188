package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/containermirror/mirrorctl/pkg/mirrorctl/auth"
	"github.com/containermirror/mirrorctl/pkg/mirrorctl/config"
	"github.com/containermirror/mirrorctl/pkg/mirrorctl/github"
	"github.com/containermirror/mirrorctl/pkg/mirrorctl/output"
)

func NewAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with GitHub",
	}
	cmd.AddCommand(
		newAuthLoginCommand(),
		newAuthTokenCommand(),
		newAuthStatusCommand(),
		newAuthLogoutCommand(),
	)
	return cmd
}

func newAuthLoginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Login via the GitHub device flow",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if rt.nonInteractive {
				return errors.New("device flow needs a browser; use 'mirrorctl auth token <pat>' instead")
			}
			options := []auth.FlowOption{
				auth.WithWriter(rt.Writer()),
				auth.WithLogger(rt.Logger()),
			}
			if proxy := rt.Proxy(); proxy != "" {
				options = append(options, auth.WithProxy(proxy))
			}
			flow, err := auth.NewFlow(options...)
			if err != nil {
				return err
			}
			token, err := flow.Login(cmd.Context())
			if err != nil {
				_, _ = fmt.Fprintf(rt.Writer(), "\nDevice login failed. You can create a token manually at\n  %s\nand store it with 'mirrorctl auth token <pat>'.\n", auth.TokenPageURL())
				return err
			}
			login, err := storeAndVerify(cmd, rt, token.AccessToken)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Logged in as %s\n", login)
			return nil
		},
	}
}

func newAuthTokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "token <pat>",
		Short: "Store a personal access token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			login, err := storeAndVerify(cmd, rt, args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Token stored, authenticated as %s\n", login)
			return nil
		},
	}
}

// storeAndVerify saves the credential and proves it works by resolving the
// authenticated login. A token that fails verification is not stored.
func storeAndVerify(cmd *cobra.Command, rt *runtimeState, token string) (string, error) {
	client, err := github.New(token, github.WithLogger(rt.Logger()), github.WithWriter(rt.Writer()))
	if err != nil {
		return "", err
	}
	login, err := client.Identity(cmd.Context())
	if err != nil {
		return "", fmt.Errorf("token verification failed: %w", err)
	}
	store, err := tokenStore(rt)
	if err != nil {
		return "", err
	}
	if err := store.Store(token); err != nil {
		return "", err
	}
	return login, nil
}

func newAuthStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			storage := rt.TokenStorage()
			if storage == "" {
				storage = auth.StorageFile
			}
			status := output.AuthStatus{Storage: storage}
			if client, err := buildClient(rt); err == nil {
				if login, err := client.Identity(cmd.Context()); err == nil {
					status.Authenticated = true
					status.Login = login
				}
			}
			format := output.Format(rt.OutputFormat())
			if format == output.FormatTable {
				output.WriteStatusTable(rt.Writer(), status)
				return nil
			}
			return output.WriteObject(rt.Writer(), format, status)
		},
	}
}

func newAuthLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored credential",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			store, err := tokenStore(rt)
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return err
			}
			// A legacy inline credential in the config must go too,
			// or logout leaves a usable token behind.
			if err := rt.EnsureConfigLoaded(); err != nil {
				return err
			}
			if rt.cfg.Token != "" {
				rt.cfg.Token = ""
				if err := config.Save(rt.configPath, rt.cfg); err != nil {
					return err
				}
			}
			_, _ = fmt.Fprintln(rt.Writer(), "Logged out")
			return nil
		},
	}
}
