// Package auth implements the GitHub OAuth device authorization grant for
// the mirrorctl CLI, plus credential storage via keychain or file backends
// and the manual token-page fallback.
package auth
