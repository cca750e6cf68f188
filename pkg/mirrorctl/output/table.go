package output

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/containermirror/mirrorctl/pkg/mirrorctl/config"
)

// AuthStatus is the rendered result of `mirrorctl auth status`.
type AuthStatus struct {
	Authenticated bool   `json:"authenticated" yaml:"authenticated"`
	Login         string `json:"login,omitempty" yaml:"login,omitempty"`
	Storage       string `json:"storage" yaml:"storage"`
}

func WriteStatusTable(w io.Writer, status AuthStatus) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	state := "not logged in"
	if status.Authenticated {
		state = "logged in"
	}
	_, _ = fmt.Fprintln(tw, "STATE\tLOGIN\tSTORAGE")
	login := status.Login
	if login == "" {
		login = "-"
	}
	_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", state, login, status.Storage)
	_ = tw.Flush()
}

func WriteRegistryTable(w io.Writer, cfg *config.Config) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "REGISTRY\tROLE")
	for _, registry := range cfg.Registries() {
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", registry, registryRole(cfg, registry))
	}
	_ = tw.Flush()
}

func registryRole(cfg *config.Config, registry string) string {
	switch registry {
	case cfg.DefaultRegistry:
		return "default"
	case cfg.MirrorRegistry:
		return "mirror"
	case config.GHCRRegistry:
		return "upstream"
	default:
		return "custom"
	}
}
