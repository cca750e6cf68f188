// Package cmd implements the cobra command tree for the mirrorctl CLI,
// including subcommands for authentication, image sync, configuration, and
// shell completion.
package cmd
