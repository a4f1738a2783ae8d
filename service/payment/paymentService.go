package paymentsvc

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"rentique/model"
	rentalrepo "rentique/repository/rental"
	"rentique/util/redisx"
)

type Service interface {
	HandleStripe(ctx context.Context, sigHeader string, raw []byte) error
}

// Rentals is the slice of the rental repository the webhook needs.
type Rentals interface {
	ByPaymentRef(ctx context.Context, ref string) (*model.Rental, error)
	Confirm(ctx context.Context, rentalID int64) (*model.Rental, bool, error)
}

// Dedup short-circuits webhook events already applied. An event is marked
// only after it has been applied: a transient failure must stay retryable,
// so Stripe's redelivery can land the confirmation.
type Dedup interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Mark(ctx context.Context, eventID string) error
}

type redisDedup struct{ rdb *redis.Client }

// NewRedisDedup wraps a redis client as event dedup storage. A nil client
// yields a nil Dedup, which disables the short-circuit; the status guard in
// the rental repo still keeps confirmation idempotent.
func NewRedisDedup(rdb *redis.Client) Dedup {
	if rdb == nil {
		return nil
	}
	return &redisDedup{rdb: rdb}
}

func (d *redisDedup) Seen(ctx context.Context, eventID string) (bool, error) {
	return redisx.Exists(ctx, d.rdb, fmt.Sprintf(redisx.KeyDedupPayment, eventID))
}

func (d *redisDedup) Mark(ctx context.Context, eventID string) error {
	return d.rdb.Set(ctx, fmt.Sprintf(redisx.KeyDedupPayment, eventID), "1", redisx.TTLDedup).Err()
}

type service struct {
	r     Rentals
	dedup Dedup
}

func New(r Rentals, dedup Dedup) Service { return &service{r: r, dedup: dedup} }

type stripeEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string            `json:"id"`
			Status   string            `json:"status"`
			Metadata map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

func (s *service) HandleStripe(ctx context.Context, sigHeader string, raw []byte) error {
	var ev stripeEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return fmt.Errorf("bad webhook json: %w", err)
	}
	if ev.ID == "" || ev.Type == "" {
		return errors.New("missing event fields")
	}

	switch ev.Type {
	case "payment_intent.succeeded":
		return s.onSucceeded(ctx, ev)
	case "payment_intent.payment_failed", "payment_intent.canceled":
		// The expiry cleaner reclaims the product; nothing to do here.
		return nil
	default:
		return nil
	}
}

func (s *service) onSucceeded(ctx context.Context, ev stripeEvent) error {
	if s.dedup != nil {
		if seen, _ := s.dedup.Seen(ctx, ev.ID); seen {
			return nil
		}
	}

	rentalID, err := rentalIDFromEvent(ev)
	if err != nil {
		rental, lerr := s.r.ByPaymentRef(ctx, ev.Data.Object.ID)
		if lerr != nil {
			return fmt.Errorf("intent not mapped to a rental: %w", lerr)
		}
		rentalID = rental.ID
	}

	_, _, err = s.r.Confirm(ctx, rentalID)
	switch {
	case errors.Is(err, rentalrepo.ErrConflict):
		// Late retry after the rental already moved on; the payment itself
		// was recorded, so the event is done.
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("webhook for unknown rental %d", rentalID)
	case err != nil:
		// Leave the event unmarked so Stripe's retry can apply it.
		return err
	}

	s.markDone(ctx, ev.ID)
	return nil
}

func (s *service) markDone(ctx context.Context, eventID string) {
	if s.dedup == nil {
		return
	}
	// Best effort: an unmarked event just re-runs through the idempotent
	// confirm on redelivery.
	_ = s.dedup.Mark(ctx, eventID)
}

func rentalIDFromEvent(ev stripeEvent) (int64, error) {
	raw, ok := ev.Data.Object.Metadata["rental_id"]
	if !ok {
		return 0, errors.New("no rental_id metadata")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("bad rental_id metadata")
	}
	return id, nil
}
