package catalog

import (
	"strings"

	"github.com/google/uuid"
)

const refPrefix = "#"

// ShortRef is a fixed-length stand-in for a product id that is too long to embed
// in a button payload. Index lookups accept it wherever an id is accepted.
func ShortRef(id string) string {
	ref := uuid.NewSHA1(uuid.NameSpaceURL, []byte(id))
	return refPrefix + strings.ReplaceAll(ref.String(), "-", "")
}
