package sync

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/containermirror/mirrorctl/pkg/mirrorctl/github"
)

// errorKeywords are the substrings (case-sensitive) that mark a log line as
// an error signal worth surfacing after a failed run.
var errorKeywords = []string{"Error", "error", "denied", "failed"}

// JobClient is the slice of the GitHub client the orchestrator drives.
type JobClient interface {
	Identity(ctx context.Context) (string, error)
	VersionExists(ctx context.Context, name, tag string) (bool, error)
	DeleteVersion(ctx context.Context, name, tag string) error
	TriggerSync(ctx context.Context, image string) (repo string, runID int64, err error)
	RunState(ctx context.Context, repo string, runID int64) (github.RunState, error)
	ListSteps(ctx context.Context, repo string, runID int64) []github.Step
	Logs(ctx context.Context, repo string, runID int64) string
}

// RunFailedError is returned when the remote run reaches a non-success
// terminal conclusion.
type RunFailedError struct {
	State github.RunState
}

func (e *RunFailedError) Error() string {
	return fmt.Sprintf("sync run finished with state %s", e.State)
}

// Orchestrator drives the end-to-end sync of each requested image: stale
// artifact cleanup, workflow dispatch, run monitoring, and the final local
// fetch.
type Orchestrator struct {
	client   JobClient
	puller   Puller
	registry string
	out      io.Writer
	log      *zap.Logger

	// pollInterval paces the run-status loop, deleteSettle the pause after
	// removing a stale artifact version.
	pollInterval time.Duration
	deleteSettle time.Duration
	sleep        func(time.Duration)
}

type OrchestratorOption func(*Orchestrator)

func NewOrchestrator(client JobClient, puller Puller, registry string, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		client:       client,
		puller:       puller,
		registry:     registry,
		out:          os.Stdout,
		log:          zap.NewNop(),
		pollInterval: 3 * time.Second,
		deleteSettle: 2 * time.Second,
		sleep:        time.Sleep,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func WithOutput(w io.Writer) OrchestratorOption {
	return func(o *Orchestrator) { o.out = w }
}

func WithLogger(log *zap.Logger) OrchestratorOption {
	return func(o *Orchestrator) { o.log = log }
}

// Run syncs the requested images strictly sequentially. The first failing
// item ends the batch; there is no continue-on-error policy.
func (o *Orchestrator) Run(ctx context.Context, images []string) error {
	login, err := o.client.Identity(ctx)
	if err != nil {
		return err
	}
	for i, image := range images {
		if len(images) > 1 {
			_, _ = fmt.Fprintf(o.out, "[%d/%d] %s\n", i+1, len(images), image)
		}
		if err := o.syncOne(ctx, login, ParseReference(image)); err != nil {
			return fmt.Errorf("sync of %s failed: %w", image, err)
		}
	}
	return nil
}

func (o *Orchestrator) syncOne(ctx context.Context, login string, ref Reference) error {
	mirrored := ref.Mirrored(o.registry, login)
	o.log.Debug("starting sync", zap.String("image", ref.Image), zap.String("mirrored", mirrored))

	exists, err := o.client.VersionExists(ctx, ref.Name, ref.Tag)
	if err != nil {
		return err
	}
	if exists {
		_, _ = fmt.Fprintf(o.out, "%s:%s already exists, replacing it...\n", ref.Name, ref.Tag)
		if err := o.client.DeleteVersion(ctx, ref.Name, ref.Tag); err != nil {
			return err
		}
		o.sleep(o.deleteSettle)
	}

	_, _ = fmt.Fprintf(o.out, "Dispatching sync of %s (large images can take a while)...\n", ref.Image)
	repo, runID, err := o.client.TriggerSync(ctx, ref.Image)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(o.out, "Sync run started, id %d\n", runID)

	if err := o.monitor(ctx, repo, runID); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(o.out, "Sync complete, fetching %s\n", mirrored)
	return o.puller.Fetch(ctx, mirrored)
}

// monitor polls the run every pollInterval until it reaches a terminal
// state. Completed steps are reported once each, tracked in a per-run set
// discarded when monitoring ends. There is no overall deadline: a run that
// never completes is polled until the context is cancelled.
func (o *Orchestrator) monitor(ctx context.Context, repo string, runID int64) error {
	reported := make(map[string]struct{})
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		state, err := o.client.RunState(ctx, repo, runID)
		if err != nil {
			return err
		}
		switch state {
		case github.RunSucceeded:
			_, _ = fmt.Fprintln(o.out, "Sync succeeded")
			return nil
		case github.RunFailed, github.RunCancelled:
			o.reportFailure(ctx, repo, runID)
			return &RunFailedError{State: state}
		default:
			for _, step := range o.client.ListSteps(ctx, repo, runID) {
				if step.Status != "completed" || step.Conclusion != "success" {
					continue
				}
				if _, seen := reported[step.Name]; seen {
					continue
				}
				reported[step.Name] = struct{}{}
				_, _ = fmt.Fprintf(o.out, "  done: %s\n", step.Name)
			}
		}
		o.sleep(o.pollInterval)
	}
}

func (o *Orchestrator) reportFailure(ctx context.Context, repo string, runID int64) {
	logs := o.client.Logs(ctx, repo, runID)
	if logs == "" {
		return
	}
	_, _ = fmt.Fprintln(o.out, "Error details:")
	for _, line := range strings.Split(logs, "\n") {
		if containsErrorSignal(line) {
			_, _ = fmt.Fprintln(o.out, line)
		}
	}
}

func containsErrorSignal(line string) bool {
	for _, keyword := range errorKeywords {
		if strings.Contains(line, keyword) {
			return true
		}
	}
	return false
}
