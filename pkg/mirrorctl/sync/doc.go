// Package sync orchestrates the end-to-end mirror of an image: stale GHCR
// artifact cleanup, workflow dispatch, run monitoring with step progress,
// and the final local pull.
package sync
