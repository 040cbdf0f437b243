package ids

import "github.com/segmentio/ksuid"

// New returns a new k-sortable id. Every entity the service creates uses
// these, so time-ordered scans stay cheap.
func New() string {
	return ksuid.New().String()
}
