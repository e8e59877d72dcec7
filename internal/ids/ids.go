package ids

import "github.com/oklog/ulid/v2"

// New returns a lexicographically sortable identifier used for tenant ids,
// storage keys and request correlation.
func New() string {
	return ulid.Make().String()
}
