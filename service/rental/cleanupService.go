package rental

import (
	"context"
	"time"

	striperepo "rentique/repository/stripe"
)

type Cleaner interface {
	ReleaseExpired(ctx context.Context) (int64, error)
}

type cleaner struct {
	r Repo
	x striperepo.Repo
}

// NewCleaner releases products held by card bookings that never paid within
// the hold window, and voids their open payment intents.
func NewCleaner(r Repo, x striperepo.Repo) Cleaner { return &cleaner{r: r, x: x} }

func (c *cleaner) ReleaseExpired(ctx context.Context) (int64, error) {
	n, refs, err := c.r.ReleaseExpiredHolds(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	// Best effort: an intent that survives here expires at the gateway.
	for _, ref := range refs {
		_ = c.x.CancelIntent(ref)
	}
	return n, nil
}
