package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()
	require.NotEmpty(t, info.Version)
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, GitCommit, info.GitCommit)
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.Platform, "/")
}

func TestBuildInfoString(t *testing.T) {
	s := GetBuildInfo().String()
	assert.Contains(t, s, "mirrorctl")
	assert.Contains(t, s, Version)
}
