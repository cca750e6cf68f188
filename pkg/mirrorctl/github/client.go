package github

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.github.com"
	defaultAgent   = "mirrorctl"
	acceptHeader   = "application/vnd.github+json"

	// SyncRepoName is the conventional repository holding the sync workflow
	// under the authenticated user's namespace.
	SyncRepoName = "mirror-sync"

	workflowFile = "mirror-sync.yml"
	workflowPath = ".github/workflows/" + workflowFile
)

// Client is an authenticated client for the subset of the GitHub REST API
// the sync protocol needs: user identity, repository and workflow content
// management, workflow dispatch/run tracking, and container package
// versions.
type Client struct {
	rest    *resty.Client
	limiter *rate.Limiter
	log     *zap.Logger
	out     io.Writer

	// login is resolved once per credential and cached for the client's
	// lifetime. All calls are sequential, so a plain field suffices.
	login string

	// settleDelay gives GitHub time to register a created or changed
	// workflow file before it can be dispatched.
	settleDelay time.Duration
	// dispatchRetries bounds the "workflow not found yet" retry loop,
	// retryDelay spacing the attempts.
	dispatchRetries int
	retryDelay      time.Duration
	// correlateDelay precedes resolving the just-dispatched run id from
	// the newest run in the list.
	correlateDelay time.Duration

	sleep func(time.Duration)
}

type Option func(*Client) error

func New(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, errors.New("token is required")
	}
	rest := resty.New().
		SetBaseURL(defaultBaseURL).
		SetAuthToken(token).
		SetHeader("Accept", acceptHeader).
		SetHeader("User-Agent", defaultAgent).
		SetTimeout(30 * time.Second)

	c := &Client{
		rest: rest,
		// GitHub secondary rate limits bite well below this; the limiter
		// keeps tight poll loops polite.
		limiter:         rate.NewLimiter(rate.Limit(5), 10),
		log:             zap.NewNop(),
		out:             io.Discard,
		settleDelay:     10 * time.Second,
		dispatchRetries: 5,
		retryDelay:      10 * time.Second,
		correlateDelay:  2 * time.Second,
		sleep:           time.Sleep,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func WithBaseURL(baseURL string) Option {
	return func(c *Client) error {
		if baseURL == "" {
			return errors.New("base URL is required")
		}
		c.rest.SetBaseURL(baseURL)
		return nil
	}
}

func WithProxy(proxy string) Option {
	return func(c *Client) error {
		if proxy != "" {
			c.rest.SetProxy(proxy)
		}
		return nil
	}
}

func WithUserAgent(userAgent string) Option {
	return func(c *Client) error {
		c.rest.SetHeader("User-Agent", userAgent)
		return nil
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) error {
		c.log = log
		return nil
	}
}

// WithWriter sets the writer for user-facing progress messages emitted
// during repository bootstrap.
func WithWriter(w io.Writer) Option {
	return func(c *Client) error {
		c.out = w
		return nil
	}
}

func (c *Client) request(ctx context.Context) (*resty.Request, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.rest.R().SetContext(ctx), nil
}

func (c *Client) Users() *UserService       { return &UserService{client: c} }
func (c *Client) Repos() *RepoService       { return &RepoService{client: c} }
func (c *Client) Actions() *ActionsService  { return &ActionsService{client: c} }
func (c *Client) Packages() *PackageService { return &PackageService{client: c} }

// Identity returns the authenticated user's login, resolved once and cached.
func (c *Client) Identity(ctx context.Context) (string, error) {
	if c.login != "" {
		return c.login, nil
	}
	user, err := c.Users().Current(ctx)
	if err != nil {
		return "", err
	}
	c.login = user.Login
	return c.login, nil
}

// Facade methods consumed by the sync orchestrator.

func (c *Client) VersionExists(ctx context.Context, name, tag string) (bool, error) {
	return c.Packages().VersionExists(ctx, name, tag)
}

func (c *Client) DeleteVersion(ctx context.Context, name, tag string) error {
	return c.Packages().DeleteVersion(ctx, name, tag)
}

func (c *Client) RunState(ctx context.Context, repo string, runID int64) (RunState, error) {
	return c.Actions().State(ctx, repo, runID)
}

func (c *Client) ListSteps(ctx context.Context, repo string, runID int64) []Step {
	return c.Actions().Steps(ctx, repo, runID)
}

func (c *Client) Logs(ctx context.Context, repo string, runID int64) string {
	return c.Actions().Logs(ctx, repo, runID)
}
