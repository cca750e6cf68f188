package main

import (
	"os"

	mirrorcmd "github.com/containermirror/mirrorctl/pkg/mirrorctl/cmd"
)

func main() {
	root := mirrorcmd.NewRootCommand(mirrorcmd.DefaultConfig())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
