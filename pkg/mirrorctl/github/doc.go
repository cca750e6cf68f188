// Package github is the authenticated GitHub REST client behind mirrorctl:
// sync repository and workflow bootstrap, workflow dispatch and run
// tracking, and GHCR container package version management.
package github
