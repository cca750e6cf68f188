package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/containermirror/mirrorctl/pkg/mirrorctl/config"
	"github.com/containermirror/mirrorctl/pkg/mirrorctl/output"
)

func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage mirrorctl configuration",
	}
	cmd.AddCommand(
		newConfigShowCommand(),
		newConfigSetProxyCommand(),
		newConfigClearProxyCommand(),
		newConfigTestProxyCommand(),
	)
	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if err := rt.EnsureConfigLoaded(); err != nil {
				return err
			}
			format := output.Format(rt.OutputFormat())
			if format == output.FormatTable {
				output.WriteRegistryTable(rt.Writer(), rt.cfg)
				if rt.cfg.Proxy != "" {
					_, _ = fmt.Fprintf(rt.Writer(), "\nProxy: %s\n", rt.cfg.Proxy)
				}
				return nil
			}
			// Never render the inline credential.
			shown := *rt.cfg
			shown.Token = ""
			return output.WriteObject(rt.Writer(), format, shown)
		},
	}
}

func newConfigSetProxyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-proxy <url>",
		Short: "Set the HTTP proxy used for GitHub requests",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if err := rt.EnsureConfigLoaded(); err != nil {
				return err
			}
			rt.cfg.Proxy = args[0]
			if err := config.Save(rt.configPath, rt.cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Proxy set to %s\n", args[0])
			return nil
		},
	}
}

// proxyProbeURL is the endpoint test-proxy connects to. GitHub's API root
// answers unauthenticated requests, so any HTTP response proves the proxy
// forwards traffic.
var proxyProbeURL = "https://api.github.com"

func newConfigTestProxyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "test-proxy",
		Short: "Test the configured HTTP proxy against the GitHub API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if err := rt.EnsureConfigLoaded(); err != nil {
				return err
			}
			proxy := rt.Proxy()
			if proxy == "" {
				_, _ = fmt.Fprintln(rt.Writer(), "No proxy configured")
				return nil
			}
			return testProxy(cmd.Context(), rt.Writer(), proxy)
		},
	}
}

func testProxy(ctx context.Context, w io.Writer, proxy string) error {
	proxyURL, err := url.Parse(proxy)
	if err != nil {
		return fmt.Errorf("invalid proxy: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Testing proxy %s...\n", proxy)

	client := &http.Client{
		Transport: &http.Transport{Proxy: http.ProxyURL(proxyURL)},
		Timeout:   10 * time.Second,
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, proxyProbeURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "mirrorctl")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("proxy connection failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	// Any response, success or not, means the proxy forwarded the request.
	_, _ = fmt.Fprintf(w, "Proxy connection OK (GitHub API answered %s)\n", resp.Status)
	return nil
}

func newConfigClearProxyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-proxy",
		Short: "Remove the configured HTTP proxy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if err := rt.EnsureConfigLoaded(); err != nil {
				return err
			}
			rt.cfg.Proxy = ""
			if err := config.Save(rt.configPath, rt.cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(rt.Writer(), "Proxy cleared")
			return nil
		},
	}
}
