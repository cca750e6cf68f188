package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contentsPath = "/repos/octocat/mirror-sync/contents/.github/workflows/mirror-sync.yml"

// fakeGitHub models just enough of the API for the bootstrap paths.
type fakeGitHub struct {
	repoExists     bool
	workflowSHA    string
	repoCreates    int
	contentPuts    int
	lastPutBody    map[string]any
	permissionPuts int
	failPerms      bool
}

func (f *fakeGitHub) handler(t *testing.T) http.Handler {
	mux := newTestMux()
	mux.HandleFunc("GET /user", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(User{Login: "octocat"})
	})
	mux.HandleFunc("GET /repos/octocat/mirror-sync", func(w http.ResponseWriter, _ *http.Request) {
		if !f.repoExists {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Repository{FullName: "octocat/mirror-sync"})
	})
	mux.HandleFunc("POST /user/repos", func(w http.ResponseWriter, _ *http.Request) {
		f.repoCreates++
		f.repoExists = true
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{}`))
	})
	mux.HandleFunc("GET "+contentsPath, func(w http.ResponseWriter, _ *http.Request) {
		if f.workflowSHA == "" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"sha": f.workflowSHA})
	})
	mux.HandleFunc("PUT "+contentsPath, func(w http.ResponseWriter, r *http.Request) {
		f.contentPuts++
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		f.lastPutBody = body
		f.workflowSHA = "sha-after-put"
		_, _ = w.Write([]byte(`{}`))
	})
	mux.HandleFunc("PUT /repos/octocat/mirror-sync/actions/permissions", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	mux.HandleFunc("PUT /repos/octocat/mirror-sync/actions/permissions/workflow", func(w http.ResponseWriter, _ *http.Request) {
		f.permissionPuts++
		if f.failPerms {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"message":"Resource not accessible"}`))
			return
		}
		_, _ = w.Write([]byte(`{}`))
	})
	return mux
}

func TestEnsureSyncRepoCreatesEverything(t *testing.T) {
	fake := &fakeGitHub{}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	c := newTestClient(t, server)
	repo, err := c.EnsureSyncRepo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "octocat/mirror-sync", repo)
	assert.Equal(t, 1, fake.repoCreates)
	assert.Equal(t, 1, fake.contentPuts)
	assert.Equal(t, 1, fake.permissionPuts)
	// first upload carries no revision marker
	_, hasSHA := fake.lastPutBody["sha"]
	assert.False(t, hasSHA)
	assert.NotEmpty(t, fake.lastPutBody["content"])
}

func TestEnsureSyncRepoUpdatesExistingWorkflow(t *testing.T) {
	fake := &fakeGitHub{repoExists: true, workflowSHA: "abc123"}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	c := newTestClient(t, server)
	_, err := c.EnsureSyncRepo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, fake.repoCreates)
	assert.Equal(t, 1, fake.contentPuts)
	// the update names the revision being replaced
	assert.Equal(t, "abc123", fake.lastPutBody["sha"])
}

func TestEnsureSyncRepoIsIdempotent(t *testing.T) {
	fake := &fakeGitHub{}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	c := newTestClient(t, server)
	_, err := c.EnsureSyncRepo(context.Background())
	require.NoError(t, err)
	_, err = c.EnsureSyncRepo(context.Background())
	require.NoError(t, err)
	// second pass overwrites the workflow but never re-creates the repo
	assert.Equal(t, 1, fake.repoCreates)
	assert.Equal(t, 2, fake.contentPuts)
	assert.Equal(t, "sha-after-put", fake.lastPutBody["sha"])
}

func TestEnsureSyncRepoPermissionFailureIsWarning(t *testing.T) {
	fake := &fakeGitHub{failPerms: true}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	c := newTestClient(t, server)
	repo, err := c.EnsureSyncRepo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "octocat/mirror-sync", repo)
}

func TestUploadWorkflowSleepsForSettle(t *testing.T) {
	fake := &fakeGitHub{repoExists: true, workflowSHA: "abc123"}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	c := newTestClient(t, server)
	var slept int
	c.sleep = func(time.Duration) { slept++ }
	_, err := c.EnsureSyncRepo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, slept)
}
