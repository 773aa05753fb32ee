package service

import (
	"context"
	"time"

	"stride/internal/domain/entity"

	"github.com/paulmach/orb"
)

// CrimeRecordProvider abstracts the external crime-record capability.
type CrimeRecordProvider interface {
	// QueryIncidents returns incidents whose location falls inside the
	// bounding box and whose timestamp falls in [from, to].
	QueryIncidents(ctx context.Context, bound orb.Bound, from, to time.Time) ([]entity.CrimeIncident, error)
}
