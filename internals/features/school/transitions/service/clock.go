// file: internals/features/school/transitions/service/clock.go
package service

import "time"

// Clock abstracts "now" so every stamped timestamp (enrollment dates,
// withdrawal dates, rollback window) is deterministic under test.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }
