package sync

import (
	"fmt"
	"strings"
)

// Reference is a parsed upstream image reference.
type Reference struct {
	// Image is the reference as requested, tag included.
	Image string
	// Name is the package name part, Tag the tag part (default "latest").
	Name string
	Tag  string
}

func ParseReference(image string) Reference {
	name, tag, found := strings.Cut(image, ":")
	if !found {
		return Reference{Image: image + ":latest", Name: image, Tag: "latest"}
	}
	return Reference{Image: image, Name: name, Tag: tag}
}

// Mirrored builds the fully qualified pull reference of the mirrored image
// under the given registry and owner namespace.
func (r Reference) Mirrored(registry, owner string) string {
	return fmt.Sprintf("%s/%s/%s", registry, owner, r.Image)
}
