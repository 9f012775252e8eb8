package contact

import "github.com/oklog/ulid/v2"

// NewID returns a new ULID. ulid.Make draws from a process-wide monotonic
// entropy source, so ids created within the same millisecond still sort and
// never repeat.
func NewID() string {
	return ulid.Make().String()
}
