package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	// ClientID identifies the mirrorctl OAuth app. Device-flow client IDs
	// are public by design.
	ClientID = "Ov23li7Y8uyN0cW2UHeS"

	// Scopes requested during login: repo + workflow for the sync
	// repository, packages for GHCR artifact management.
	Scopes = "repo workflow write:packages read:packages delete:packages"

	deviceCodeEndpoint  = "https://github.com/login/device/code"
	accessTokenEndpoint = "https://github.com/login/oauth/access_token"
	deviceGrantType     = "urn:ietf:params:oauth:grant-type:device_code"

	// slowDownIncrement is added to the poll interval on every slow_down
	// response, cumulatively.
	slowDownIncrement = 5 * time.Second
)

var (
	ErrAccessDenied = errors.New("access denied by user")
	ErrCodeExpired  = errors.New("device code expired, please try again")
	ErrLoginTimeout = errors.New("authentication timed out, please try again")
)

// ProviderError is a structured error code returned by the token endpoint
// outside the pending/terminal set the flow handles itself.
type ProviderError struct {
	Code        string
	Description string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("authentication error: %s - %s", e.Code, e.Description)
}

// DeviceGrant is the device/user code pair issued by GitHub. It is consumed
// exactly once by the poll loop that requested it.
type DeviceGrant struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationURI string `json:"verification_uri"`
	ExpiresIn       int    `json:"expires_in"`
	Interval        int    `json:"interval"`
}

type accessTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	Scope       string `json:"scope,omitempty"`
	Error       string `json:"error,omitempty"`
	ErrorDesc   string `json:"error_description,omitempty"`
}

// Flow drives the OAuth 2.0 device authorization grant against GitHub.
type Flow struct {
	http        *http.Client
	deviceURL   string
	tokenURL    string
	out         io.Writer
	log         *zap.Logger
	sleep       func(time.Duration)
	openBrowser func(string) error
}

type FlowOption func(*Flow) error

func NewFlow(opts ...FlowOption) (*Flow, error) {
	f := &Flow{
		http:        &http.Client{Timeout: 30 * time.Second},
		deviceURL:   deviceCodeEndpoint,
		tokenURL:    accessTokenEndpoint,
		out:         os.Stdout,
		log:         zap.NewNop(),
		sleep:       time.Sleep,
		openBrowser: openBrowser,
	}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func WithProxy(proxy string) FlowOption {
	return func(f *Flow) error {
		if proxy == "" {
			return nil
		}
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			return fmt.Errorf("invalid proxy: %w", err)
		}
		f.http = &http.Client{
			Transport: &http.Transport{Proxy: http.ProxyURL(proxyURL)},
			Timeout:   30 * time.Second,
		}
		return nil
	}
}

func WithEndpoints(deviceURL, tokenURL string) FlowOption {
	return func(f *Flow) error {
		f.deviceURL = deviceURL
		f.tokenURL = tokenURL
		return nil
	}
}

func WithWriter(w io.Writer) FlowOption {
	return func(f *Flow) error {
		f.out = w
		return nil
	}
}

func WithLogger(log *zap.Logger) FlowOption {
	return func(f *Flow) error {
		f.log = log
		return nil
	}
}

// Login runs the full device flow: grant request, user prompt, token poll.
func (f *Flow) Login(ctx context.Context) (*oauth2.Token, error) {
	grant, err := f.RequestDeviceGrant(ctx)
	if err != nil {
		return nil, err
	}
	f.AwaitAuthorization(grant)
	return f.PollForToken(ctx, grant)
}

// RequestDeviceGrant obtains a device/user code pair from GitHub.
func (f *Flow) RequestDeviceGrant(ctx context.Context) (*DeviceGrant, error) {
	values := url.Values{}
	values.Set("client_id", ClientID)
	values.Set("scope", Scopes)

	resp, err := f.postForm(ctx, f.deviceURL, values)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to get device code: %s", string(body))
	}
	var grant DeviceGrant
	if err := json.NewDecoder(resp.Body).Decode(&grant); err != nil {
		return nil, err
	}
	return &grant, nil
}

// AwaitAuthorization presents the verification URI and user code and makes
// a best-effort attempt to open the local browser. Browser failures are
// never fatal.
func (f *Flow) AwaitAuthorization(grant *DeviceGrant) {
	_, _ = fmt.Fprintf(f.out, "Visit %s and enter code: %s\n", grant.VerificationURI, grant.UserCode)
	_, _ = fmt.Fprintln(f.out, "Waiting for authorization...")
	if !strings.EqualFold(os.Getenv("MIRRORCTL_NO_BROWSER"), "true") {
		if err := f.openBrowser(grant.VerificationURI); err != nil {
			f.log.Debug("browser open failed", zap.Error(err))
		}
	}
}

// PollForToken polls the token endpoint until the user authorizes, denies,
// or the grant expires. The attempt budget is expires_in/interval computed
// once up front; a slow_down response lengthens every subsequent sleep but
// never shrinks the budget.
func (f *Flow) PollForToken(ctx context.Context, grant *DeviceGrant) (*oauth2.Token, error) {
	intervalSeconds := grant.Interval
	if intervalSeconds <= 0 {
		intervalSeconds = 5
	}
	interval := time.Duration(intervalSeconds) * time.Second
	maxAttempts := grant.ExpiresIn / intervalSeconds
	attempts := 0

	values := url.Values{}
	values.Set("client_id", ClientID)
	values.Set("device_code", grant.DeviceCode)
	values.Set("grant_type", deviceGrantType)

	for {
		attempts++
		if attempts > maxAttempts {
			return nil, ErrLoginTimeout
		}
		f.sleep(interval)
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := f.postForm(ctx, f.tokenURL, values)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 400 {
			// HTTP-level failures during polling are treated as
			// "keep waiting"; the attempt budget still bounds the loop.
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			f.log.Debug("token poll returned non-success status", zap.Int("status", resp.StatusCode))
			continue
		}
		var token accessTokenResponse
		err = json.NewDecoder(resp.Body).Decode(&token)
		_ = resp.Body.Close()
		if err != nil {
			return nil, err
		}

		if token.AccessToken != "" {
			return &oauth2.Token{AccessToken: token.AccessToken, TokenType: token.TokenType}, nil
		}
		switch token.Error {
		case "authorization_pending":
			_, _ = fmt.Fprint(f.out, ".")
		case "slow_down":
			interval += slowDownIncrement
		case "expired_token":
			return nil, ErrCodeExpired
		case "access_denied":
			return nil, ErrAccessDenied
		default:
			return nil, &ProviderError{Code: token.Error, Description: token.ErrorDesc}
		}
	}
}

func (f *Flow) postForm(ctx context.Context, endpoint string, values url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "mirrorctl")
	return f.http.Do(req)
}

// TokenPageURL builds the pre-filled personal access token creation page
// used as the manual fallback when the device flow fails.
func TokenPageURL() string {
	return "https://github.com/settings/tokens/new?description=mirrorctl&scopes=repo,workflow,write:packages,read:packages,delete:packages"
}
