package sync

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReference(t *testing.T) {
	tests := []struct {
		image string
		want  Reference
	}{
		{"nginx:alpine", Reference{Image: "nginx:alpine", Name: "nginx", Tag: "alpine"}},
		{"redis", Reference{Image: "redis:latest", Name: "redis", Tag: "latest"}},
		{"library/ubuntu:24.04", Reference{Image: "library/ubuntu:24.04", Name: "library/ubuntu", Tag: "24.04"}},
	}
	for _, tt := range tests {
		t.Run(tt.image, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseReference(tt.image))
		})
	}
}

func TestMirrored(t *testing.T) {
	ref := ParseReference("nginx")
	assert.Equal(t, "ghcr.nju.edu.cn/octocat/nginx:latest", ref.Mirrored("ghcr.nju.edu.cn", "octocat"))
}

func TestDockerPullerWithoutDocker(t *testing.T) {
	orig := lookPath
	lookPath = func(string) (string, error) { return "", errors.New("not found") }
	t.Cleanup(func() { lookPath = orig })

	var out bytes.Buffer
	p := &DockerPuller{Out: &out}
	require.NoError(t, p.Fetch(context.Background(), "ghcr.nju.edu.cn/octocat/nginx:alpine"))
	assert.Contains(t, out.String(), "docker pull ghcr.nju.edu.cn/octocat/nginx:alpine")
}
