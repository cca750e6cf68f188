package github

import (
	"context"
	"encoding/base64"
	"fmt"

	"go.uber.org/zap"
)

type Repository struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	HTMLURL  string `json:"html_url"`
}

type RepoService struct {
	client *Client
}

func (s *RepoService) Exists(ctx context.Context, fullName string) (bool, error) {
	req, err := s.client.request(ctx)
	if err != nil {
		return false, err
	}
	resp, err := req.Get("/repos/" + fullName)
	if err != nil {
		return false, err
	}
	if resp.IsSuccess() {
		return true, nil
	}
	if resp.StatusCode() == 404 {
		return false, nil
	}
	return false, fmt.Errorf("failed to check repository: %w", newAPIError(resp))
}

func (s *RepoService) Create(ctx context.Context, name string) error {
	payload := map[string]any{
		"name":         name,
		"description":  "Container image mirror repository managed by mirrorctl",
		"private":      false,
		"auto_init":    true,
		"has_issues":   false,
		"has_projects": false,
		"has_wiki":     false,
	}
	req, err := s.client.request(ctx)
	if err != nil {
		return err
	}
	resp, err := req.SetBody(payload).Post("/user/repos")
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("failed to create repository: %w", newAPIError(resp))
	}
	return nil
}

// ContentSHA returns the revision marker of a file in the repository, or
// false when the file does not exist.
func (s *RepoService) ContentSHA(ctx context.Context, fullName, path string) (string, bool, error) {
	req, err := s.client.request(ctx)
	if err != nil {
		return "", false, err
	}
	var content struct {
		SHA string `json:"sha"`
	}
	resp, err := req.SetResult(&content).Get(fmt.Sprintf("/repos/%s/contents/%s", fullName, path))
	if err != nil {
		return "", false, err
	}
	if resp.StatusCode() == 404 {
		return "", false, nil
	}
	if !resp.IsSuccess() {
		return "", false, fmt.Errorf("failed to get %s: %w", path, newAPIError(resp))
	}
	return content.SHA, true, nil
}

// PutContent creates or updates a file on the main branch. Pass the current
// revision sha to update, empty to create.
func (s *RepoService) PutContent(ctx context.Context, fullName, path, message string, content []byte, sha string) error {
	payload := map[string]any{
		"message": message,
		"content": base64.StdEncoding.EncodeToString(content),
		"branch":  "main",
	}
	if sha != "" {
		payload["sha"] = sha
	}
	req, err := s.client.request(ctx)
	if err != nil {
		return err
	}
	resp, err := req.SetBody(payload).Put(fmt.Sprintf("/repos/%s/contents/%s", fullName, path))
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("failed to upload %s: %w", path, newAPIError(resp))
	}
	return nil
}

// SetWorkflowPermissions enables Actions and grants workflows read-write
// repository access. Callers downgrade failures to a warning.
func (s *RepoService) SetWorkflowPermissions(ctx context.Context, owner, repo string) error {
	req, err := s.client.request(ctx)
	if err != nil {
		return err
	}
	// enabling Actions can fail on accounts where it is already on,
	// which is fine
	_, _ = req.SetBody(map[string]any{"enabled": true, "allowed_actions": "all"}).
		Put(fmt.Sprintf("/repos/%s/%s/actions/permissions", owner, repo))

	req, err = s.client.request(ctx)
	if err != nil {
		return err
	}
	resp, err := req.SetBody(map[string]any{
		"default_workflow_permissions":     "write",
		"can_approve_pull_request_reviews": true,
	}).Put(fmt.Sprintf("/repos/%s/%s/actions/permissions/workflow", owner, repo))
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("failed to set workflow permissions: %w", newAPIError(resp))
	}
	return nil
}

// EnsureSyncRepo makes sure the user's sync repository exists and its
// workflow definition matches the bundled template, creating either as
// needed. The workflow is overwritten unconditionally when present so the
// remote definition never drifts from the template. Returns the repository
// full name.
func (c *Client) EnsureSyncRepo(ctx context.Context) (string, error) {
	login, err := c.Identity(ctx)
	if err != nil {
		return "", err
	}
	fullName := login + "/" + SyncRepoName

	exists, err := c.Repos().Exists(ctx, fullName)
	if err != nil {
		return "", err
	}
	if exists {
		if err := c.ensureWorkflow(ctx, fullName); err != nil {
			return "", err
		}
		return fullName, nil
	}

	_, _ = fmt.Fprintln(c.out, "First use: creating the sync repository (this can take a moment)...")
	if err := c.Repos().Create(ctx, SyncRepoName); err != nil {
		return "", err
	}
	if err := c.uploadWorkflow(ctx, fullName, "Add mirror sync workflow", ""); err != nil {
		return "", err
	}
	if err := c.Repos().SetWorkflowPermissions(ctx, login, SyncRepoName); err != nil {
		_, _ = fmt.Fprintf(c.out, "Warning: could not set Actions permissions: %v\n", err)
		_, _ = fmt.Fprintf(c.out, "Enable 'Read and write permissions' manually at https://github.com/%s/settings/actions\n", fullName)
	}
	_, _ = fmt.Fprintf(c.out, "Sync repository ready: https://github.com/%s\n", fullName)
	return fullName, nil
}

func (c *Client) ensureWorkflow(ctx context.Context, fullName string) error {
	sha, found, err := c.Repos().ContentSHA(ctx, fullName, workflowPath)
	if err != nil {
		return err
	}
	message := "Add mirror sync workflow"
	if found {
		message = "Update mirror sync workflow"
	}
	return c.uploadWorkflow(ctx, fullName, message, sha)
}

func (c *Client) uploadWorkflow(ctx context.Context, fullName, message, sha string) error {
	if err := c.Repos().PutContent(ctx, fullName, workflowPath, message, workflowTemplate, sha); err != nil {
		return err
	}
	c.log.Debug("workflow uploaded", zap.String("repo", fullName), zap.String("sha", sha))
	_, _ = fmt.Fprintln(c.out, "Sync workflow configured, waiting for GitHub to register it...")
	c.sleep(c.settleDelay)
	return nil
}
