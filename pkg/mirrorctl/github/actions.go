package github

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// RunState is the coarse run status the monitor loop switches on. Terminal
// conclusions are folded into the state: a completed run reports succeeded,
// failed, or cancelled.
type RunState string

const (
	RunQueued     RunState = "queued"
	RunInProgress RunState = "in_progress"
	RunSucceeded  RunState = "completed"
	RunFailed     RunState = "failure"
	RunCancelled  RunState = "cancelled"
)

func (s RunState) Terminal() bool {
	return s == RunSucceeded || s == RunFailed || s == RunCancelled
}

type workflowRun struct {
	ID         int64  `json:"id"`
	Status     string `json:"status"`
	Conclusion string `json:"conclusion"`
}

type Step struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	Conclusion string `json:"conclusion"`
}

type ActionsService struct {
	client *Client
}

// Dispatch triggers the sync workflow with the image reference as input.
// GitHub may not recognize a just-uploaded workflow immediately, so a
// "not found" response is retried a bounded number of times; any other
// failure aborts with the response body as context.
func (s *ActionsService) Dispatch(ctx context.Context, repo, image string) error {
	payload := map[string]any{
		"ref":    "main",
		"inputs": map[string]string{"image": image},
	}
	endpoint := fmt.Sprintf("/repos/%s/actions/workflows/%s/dispatches", repo, workflowFile)

	retries := s.client.dispatchRetries
	for {
		req, err := s.client.request(ctx)
		if err != nil {
			return err
		}
		resp, err := req.SetBody(payload).Post(endpoint)
		if err != nil {
			return err
		}
		if resp.IsSuccess() {
			return nil
		}
		if resp.StatusCode() == 404 && retries > 0 {
			retries--
			s.client.log.Debug("workflow not registered yet, retrying dispatch",
				zap.Int("retries_left", retries))
			_, _ = fmt.Fprintln(s.client.out, "Waiting for the workflow to become dispatchable...")
			s.client.sleep(s.client.retryDelay)
			continue
		}
		return fmt.Errorf("failed to trigger workflow: %w", newAPIError(resp))
	}
}

// LatestRunID resolves the most recently created run of the sync workflow.
// Dispatch does not return a run id, so the newest run is the best available
// correlation; a concurrent dispatch against the same workflow can race it.
func (s *ActionsService) LatestRunID(ctx context.Context, repo string) (int64, error) {
	req, err := s.client.request(ctx)
	if err != nil {
		return 0, err
	}
	var runs struct {
		WorkflowRuns []workflowRun `json:"workflow_runs"`
	}
	resp, err := req.SetResult(&runs).
		Get(fmt.Sprintf("/repos/%s/actions/workflows/%s/runs?per_page=1", repo, workflowFile))
	if err != nil {
		return 0, err
	}
	if !resp.IsSuccess() {
		return 0, fmt.Errorf("failed to list workflow runs: %w", newAPIError(resp))
	}
	if len(runs.WorkflowRuns) == 0 {
		return 0, fmt.Errorf("no workflow runs found for %s", repo)
	}
	return runs.WorkflowRuns[0].ID, nil
}

// State fetches a run and maps status/conclusion onto RunState.
func (s *ActionsService) State(ctx context.Context, repo string, runID int64) (RunState, error) {
	req, err := s.client.request(ctx)
	if err != nil {
		return "", err
	}
	var run workflowRun
	resp, err := req.SetResult(&run).Get(fmt.Sprintf("/repos/%s/actions/runs/%d", repo, runID))
	if err != nil {
		return "", err
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("failed to get run status: %w", newAPIError(resp))
	}
	if run.Status != "completed" {
		return RunState(run.Status), nil
	}
	switch run.Conclusion {
	case "failure":
		return RunFailed, nil
	case "cancelled":
		return RunCancelled, nil
	default:
		// success, and any other conclusion GitHub reports on a
		// completed run
		return RunSucceeded, nil
	}
}

// Steps returns the ordered step list of the run's first job. The sync
// workflow has a single job; step reporting is cosmetic, so failures yield
// an empty list rather than an error.
func (s *ActionsService) Steps(ctx context.Context, repo string, runID int64) []Step {
	jobs, err := s.listJobs(ctx, repo, runID)
	if err != nil || len(jobs) == 0 {
		return nil
	}
	return jobs[0].Steps
}

// Logs concatenates the log output of every job in the run. Per-job
// failures are skipped; total failure yields an empty string, never an
// error.
func (s *ActionsService) Logs(ctx context.Context, repo string, runID int64) string {
	jobs, err := s.listJobs(ctx, repo, runID)
	if err != nil {
		return ""
	}
	var logs string
	for _, job := range jobs {
		req, err := s.client.request(ctx)
		if err != nil {
			return logs
		}
		resp, err := req.Get(fmt.Sprintf("/repos/%s/actions/jobs/%d/logs", repo, job.ID))
		if err != nil || !resp.IsSuccess() {
			continue
		}
		logs += string(resp.Body()) + "\n"
	}
	return logs
}

type runJob struct {
	ID    int64  `json:"id"`
	Steps []Step `json:"steps"`
}

func (s *ActionsService) listJobs(ctx context.Context, repo string, runID int64) ([]runJob, error) {
	req, err := s.client.request(ctx)
	if err != nil {
		return nil, err
	}
	var jobs struct {
		Jobs []runJob `json:"jobs"`
	}
	resp, err := req.SetResult(&jobs).Get(fmt.Sprintf("/repos/%s/actions/runs/%d/jobs", repo, runID))
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, newAPIError(resp)
	}
	return jobs.Jobs, nil
}

// TriggerSync ensures the sync pipeline is current, dispatches it for the
// given image, and resolves the resulting run id. Returns the repository
// full name and the run id.
func (c *Client) TriggerSync(ctx context.Context, image string) (string, int64, error) {
	repo, err := c.EnsureSyncRepo(ctx)
	if err != nil {
		return "", 0, err
	}
	if err := c.Actions().Dispatch(ctx, repo, image); err != nil {
		return "", 0, err
	}
	// give GitHub a moment to materialize the run before correlating
	c.sleep(c.correlateDelay)
	runID, err := c.Actions().LatestRunID(ctx, repo)
	if err != nil {
		return "", 0, err
	}
	c.log.Debug("sync dispatched", zap.String("repo", repo), zap.Int64("run_id", runID), zap.String("image", image))
	return repo, runID, nil
}
