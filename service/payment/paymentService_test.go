package paymentsvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"rentique/model"
	rentalrepo "rentique/repository/rental"
)

type rentalsMock struct {
	byRefFn   func(ctx context.Context, ref string) (*model.Rental, error)
	confirmFn func(ctx context.Context, rentalID int64) (*model.Rental, bool, error)
}

func (m *rentalsMock) ByPaymentRef(ctx context.Context, ref string) (*model.Rental, error) {
	return m.byRefFn(ctx, ref)
}
func (m *rentalsMock) Confirm(ctx context.Context, id int64) (*model.Rental, bool, error) {
	return m.confirmFn(ctx, id)
}

func succeededEvent(rentalID int64) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_1",
		"type": "payment_intent.succeeded",
		"data": {"object": {"id": "pi_123", "status": "succeeded",
			"metadata": {"rental_id": "%d"}}}
	}`, rentalID))
}

func TestHandleStripe_SucceededConfirms(t *testing.T) {
	var confirmed int64
	m := &rentalsMock{
		confirmFn: func(ctx context.Context, id int64) (*model.Rental, bool, error) {
			confirmed = id
			return &model.Rental{ID: id, Status: model.RentalConfirmed}, false, nil
		},
	}
	svc := New(m, nil)

	err := svc.HandleStripe(context.Background(), "sig", succeededEvent(78))
	require.NoError(t, err)
	require.Equal(t, int64(78), confirmed)
}

func TestHandleStripe_MissingMetadataFallsBackToRef(t *testing.T) {
	raw := []byte(`{
		"id": "evt_2",
		"type": "payment_intent.succeeded",
		"data": {"object": {"id": "pi_456", "status": "succeeded", "metadata": {}}}
	}`)

	var confirmed int64
	m := &rentalsMock{
		byRefFn: func(ctx context.Context, ref string) (*model.Rental, error) {
			require.Equal(t, "pi_456", ref)
			return &model.Rental{ID: 90}, nil
		},
		confirmFn: func(ctx context.Context, id int64) (*model.Rental, bool, error) {
			confirmed = id
			return &model.Rental{ID: id}, false, nil
		},
	}
	svc := New(m, nil)

	require.NoError(t, svc.HandleStripe(context.Background(), "sig", raw))
	require.Equal(t, int64(90), confirmed)
}

func TestHandleStripe_LateRetryAfterTerminalIsSwallowed(t *testing.T) {
	m := &rentalsMock{
		confirmFn: func(ctx context.Context, id int64) (*model.Rental, bool, error) {
			return nil, false, rentalrepo.ErrConflict
		},
	}
	svc := New(m, nil)

	require.NoError(t, svc.HandleStripe(context.Background(), "sig", succeededEvent(78)))
}

func TestHandleStripe_UnknownRental(t *testing.T) {
	m := &rentalsMock{
		confirmFn: func(ctx context.Context, id int64) (*model.Rental, bool, error) {
			return nil, false, sql.ErrNoRows
		},
	}
	svc := New(m, nil)

	require.Error(t, svc.HandleStripe(context.Background(), "sig", succeededEvent(404)))
}

func TestHandleStripe_IgnoredEventTypes(t *testing.T) {
	m := &rentalsMock{
		confirmFn: func(ctx context.Context, id int64) (*model.Rental, bool, error) {
			t.Fatal("failed intents must not confirm anything")
			return nil, false, nil
		},
	}
	svc := New(m, nil)

	raw := []byte(`{"id":"evt_3","type":"payment_intent.payment_failed","data":{"object":{"id":"pi_789"}}}`)
	require.NoError(t, svc.HandleStripe(context.Background(), "sig", raw))

	raw = []byte(`{"id":"evt_4","type":"charge.refunded","data":{"object":{"id":"ch_1"}}}`)
	require.NoError(t, svc.HandleStripe(context.Background(), "sig", raw))
}

func TestHandleStripe_BadPayload(t *testing.T) {
	svc := New(&rentalsMock{}, nil)

	require.Error(t, svc.HandleStripe(context.Background(), "sig", []byte("not json")))
	require.Error(t, svc.HandleStripe(context.Background(), "sig", []byte(`{"id":"","type":""}`)))
}

type dedupMock struct {
	seen   map[string]bool
	marked []string
}

func newDedupMock() *dedupMock { return &dedupMock{seen: map[string]bool{}} }

func (d *dedupMock) Seen(ctx context.Context, eventID string) (bool, error) {
	return d.seen[eventID], nil
}

func (d *dedupMock) Mark(ctx context.Context, eventID string) error {
	d.seen[eventID] = true
	d.marked = append(d.marked, eventID)
	return nil
}

func TestHandleStripe_DuplicateEventShortCircuits(t *testing.T) {
	confirms := 0
	m := &rentalsMock{
		confirmFn: func(ctx context.Context, id int64) (*model.Rental, bool, error) {
			confirms++
			return &model.Rental{ID: id, Status: model.RentalConfirmed}, confirms > 1, nil
		},
	}
	d := newDedupMock()
	svc := New(m, d)

	require.NoError(t, svc.HandleStripe(context.Background(), "sig", succeededEvent(78)))
	require.NoError(t, svc.HandleStripe(context.Background(), "sig", succeededEvent(78)))
	require.Equal(t, 1, confirms, "second delivery must not reach the repo")
	require.Equal(t, []string{"evt_1"}, d.marked)
}

func TestHandleStripe_TransientFailureStaysRetryable(t *testing.T) {
	attempts := 0
	m := &rentalsMock{
		confirmFn: func(ctx context.Context, id int64) (*model.Rental, bool, error) {
			attempts++
			if attempts == 1 {
				return nil, false, errors.New("db connection reset")
			}
			return &model.Rental{ID: id, Status: model.RentalConfirmed}, false, nil
		},
	}
	d := newDedupMock()
	svc := New(m, d)

	// First delivery hits a transient storage failure. The event must stay
	// unmarked so the redelivery can still confirm the paid rental.
	require.Error(t, svc.HandleStripe(context.Background(), "sig", succeededEvent(78)))
	require.Empty(t, d.marked)

	require.NoError(t, svc.HandleStripe(context.Background(), "sig", succeededEvent(78)))
	require.Equal(t, 2, attempts)
	require.Equal(t, []string{"evt_1"}, d.marked)
}

func TestHandleStripe_LateRetryIsMarkedDone(t *testing.T) {
	m := &rentalsMock{
		confirmFn: func(ctx context.Context, id int64) (*model.Rental, bool, error) {
			return nil, false, rentalrepo.ErrConflict
		},
	}
	d := newDedupMock()
	svc := New(m, d)

	require.NoError(t, svc.HandleStripe(context.Background(), "sig", succeededEvent(78)))
	require.Equal(t, []string{"evt_1"}, d.marked)
}
