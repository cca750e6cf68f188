package github

import _ "embed"

// workflowTemplate is the pipeline definition uploaded verbatim to the sync
// repository. The client only transports it, never parses it.
//
//go:embed templates/mirror-sync.yml
var workflowTemplate []byte
