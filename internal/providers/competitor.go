package providers

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CompetitorProvider reports a competitor set's price signal for a hotel on
// a date. Acquisition internals are out of scope (§6 Non-goals); the
// contract is what the Pricing Engine and the Price-Watch subsystem need.
type CompetitorProvider interface {
	Fetch(ctx context.Context, hotelID uuid.UUID, date time.Time) (CompetitorSignal, error)
}

type CompetitorSignal struct {
	MedianPrice float64
	SampleSize  int
	AsOf        time.Time
}

// NoopCompetitorProvider reports no signal, which the Pricing Engine must
// treat as "skip the competitor factor" rather than error (§4.2 edge case).
type NoopCompetitorProvider struct{}

func (NoopCompetitorProvider) Fetch(ctx context.Context, hotelID uuid.UUID, date time.Time) (CompetitorSignal, error) {
	return CompetitorSignal{}, nil
}
