package sync

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Puller fetches the mirrored image locally once a sync run succeeds.
type Puller interface {
	Fetch(ctx context.Context, ref string) error
}

var lookPath = exec.LookPath

// DockerPuller shells out to the local docker client. When docker is not
// installed it prints the manual pull command instead of failing, since the
// sync itself already succeeded.
type DockerPuller struct {
	Out io.Writer
}

func (p *DockerPuller) writer() io.Writer {
	if p.Out != nil {
		return p.Out
	}
	return os.Stdout
}

func (p *DockerPuller) Fetch(ctx context.Context, ref string) error {
	if _, err := lookPath("docker"); err != nil {
		_, _ = fmt.Fprintln(p.writer(), "Docker not detected, pull the image manually:")
		_, _ = fmt.Fprintf(p.writer(), "  docker pull %s\n", ref)
		return nil
	}
	cmd := exec.CommandContext(ctx, "docker", "pull", ref)
	cmd.Stdout = p.writer()
	cmd.Stderr = p.writer()
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to pull %s: %w", ref, err)
	}
	return nil
}
