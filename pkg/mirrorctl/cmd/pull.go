package cmd

import (
	"github.com/spf13/cobra"

	"github.com/containermirror/mirrorctl/pkg/mirrorctl/sync"
)

func NewPullCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pull <image>...",
		Short: "Sync images to your registry and pull them locally",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSync,
	}
}

func runSync(cmd *cobra.Command, args []string) error {
	rt, err := getRuntime(cmd)
	if err != nil {
		return err
	}
	if err := rt.EnsureConfigLoaded(); err != nil {
		return err
	}
	client, err := buildClient(rt)
	if err != nil {
		return err
	}
	orchestrator := sync.NewOrchestrator(
		client,
		&sync.DockerPuller{Out: rt.Writer()},
		rt.cfg.DefaultRegistry,
		sync.WithOutput(rt.Writer()),
		sync.WithLogger(rt.Logger()),
	)
	return orchestrator.Run(cmd.Context(), args)
}
