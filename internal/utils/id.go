package utils

import (
	"github.com/oklog/ulid/v2"
)

// GenerateStableID returns a new ULID. ULIDs sort by creation time, so workspaces of successive runs list in order.
func GenerateStableID() string {
	return ulid.Make().String()
}
