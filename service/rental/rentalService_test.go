package rental

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rentique/model"
	rrepo "rentique/repository/rental"
	striperepo "rentique/repository/stripe"
)

type repoMock struct {
	getProductFn     func(ctx context.Context, productID int64) (*model.Product, error)
	createReservedFn func(ctx context.Context, r *model.Rental, incrementCount bool) error
	setPaymentRefFn  func(ctx context.Context, rentalID int64, ref string) error
	deleteReleaseFn  func(ctx context.Context, rentalID int64) error
	getFn            func(ctx context.Context, rentalID int64) (*model.Rental, error)
	byPaymentRefFn   func(ctx context.Context, ref string) (*model.Rental, error)
	confirmFn        func(ctx context.Context, rentalID int64) (*model.Rental, bool, error)
	transitionFn     func(ctx context.Context, rentalID int64, from, to model.RentalStatus, refund bool) error
	findActiveFn     func(ctx context.Context, productID int64) (*model.Rental, error)
	setDamageFn      func(ctx context.Context, rentalID int64, rep model.DamageReport) error
	listByUserFn     func(ctx context.Context, userID int64) ([]RentalRow, error)
	listAllFn        func(ctx context.Context) ([]RentalRow, error)
	releaseFn        func(ctx context.Context, now time.Time) (int64, []string, error)
}

var _ Repo = (*repoMock)(nil)

func (m *repoMock) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	return m.getProductFn(ctx, id)
}
func (m *repoMock) CreateReserved(ctx context.Context, r *model.Rental, inc bool) error {
	return m.createReservedFn(ctx, r, inc)
}
func (m *repoMock) SetPaymentRef(ctx context.Context, id int64, ref string) error {
	if m.setPaymentRefFn == nil {
		return nil
	}
	return m.setPaymentRefFn(ctx, id, ref)
}
func (m *repoMock) DeleteAndRelease(ctx context.Context, id int64) error {
	return m.deleteReleaseFn(ctx, id)
}
func (m *repoMock) Get(ctx context.Context, id int64) (*model.Rental, error) {
	return m.getFn(ctx, id)
}
func (m *repoMock) ByPaymentRef(ctx context.Context, ref string) (*model.Rental, error) {
	return m.byPaymentRefFn(ctx, ref)
}
func (m *repoMock) Confirm(ctx context.Context, id int64) (*model.Rental, bool, error) {
	return m.confirmFn(ctx, id)
}
func (m *repoMock) Transition(ctx context.Context, id int64, from, to model.RentalStatus, refund bool) error {
	return m.transitionFn(ctx, id, from, to, refund)
}
func (m *repoMock) FindActiveByProduct(ctx context.Context, id int64) (*model.Rental, error) {
	return m.findActiveFn(ctx, id)
}
func (m *repoMock) SetDamageReport(ctx context.Context, id int64, rep model.DamageReport) error {
	return m.setDamageFn(ctx, id, rep)
}
func (m *repoMock) ListByUser(ctx context.Context, userID int64) ([]RentalRow, error) {
	return m.listByUserFn(ctx, userID)
}
func (m *repoMock) ListAll(ctx context.Context) ([]RentalRow, error) { return m.listAllFn(ctx) }
func (m *repoMock) ReleaseExpiredHolds(ctx context.Context, now time.Time) (int64, []string, error) {
	return m.releaseFn(ctx, now)
}

type stripeMock struct {
	createFn func(req striperepo.CreateIntentReq) (*striperepo.Intent, error)
	cancelFn func(intentID string) error
}

func (m *stripeMock) CreateIntent(req striperepo.CreateIntentReq) (*striperepo.Intent, error) {
	return m.createFn(req)
}
func (m *stripeMock) CancelIntent(id string) error {
	if m.cancelFn == nil {
		return nil
	}
	return m.cancelFn(id)
}

func dress(available bool) *model.Product {
	return &model.Product{
		ID:          5,
		Name:        "Silk Evening Gown",
		Brand:       "Valentino",
		Size:        "M",
		RentalPrice: 40,
		Available:   available,
	}
}

func bookingReq(method model.PaymentMethod) model.CreateRentalReq {
	start := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	return model.CreateRentalReq{
		ProductID: 5,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 3),
		DeliveryAddress: model.DeliveryAddress{
			Street: "1 Main St", City: "Springfield", ZipCode: "12345",
		},
		PaymentMethod: method,
	}
}

// --- Create ---

func TestCreate_CashOnDelivery(t *testing.T) {
	var reserved *model.Rental
	var counted bool
	m := &repoMock{
		getProductFn: func(ctx context.Context, id int64) (*model.Product, error) {
			return dress(true), nil
		},
		createReservedFn: func(ctx context.Context, r *model.Rental, inc bool) error {
			r.ID = 77
			reserved, counted = r, inc
			return nil
		},
	}
	x := &stripeMock{createFn: func(req striperepo.CreateIntentReq) (*striperepo.Intent, error) {
		t.Fatal("cod booking must not touch the gateway")
		return nil, nil
	}}
	svc := New(m, x)

	out, err := svc.Create(context.Background(), 9, bookingReq(model.PayOnDelivery))
	require.NoError(t, err)
	require.False(t, out.RequiresPayment)
	require.Empty(t, out.ClientSecret)
	require.NotNil(t, reserved)
	require.True(t, counted, "cod counts the rental at creation")
	require.Equal(t, model.RentalConfirmed, out.Rental.Status)
	require.Equal(t, model.PaymentPending, out.Rental.PaymentStatus)
	require.Nil(t, out.Rental.PaymentDueAt)
	require.Equal(t, float64(3*40), out.Rental.TotalCost)
	require.Equal(t, "M", out.Rental.Size, "size defaults to the product's")
}

func TestCreate_CardOpensIntent(t *testing.T) {
	var gotIntent striperepo.CreateIntentReq
	var savedRef string
	m := &repoMock{
		getProductFn: func(ctx context.Context, id int64) (*model.Product, error) {
			return dress(true), nil
		},
		createReservedFn: func(ctx context.Context, r *model.Rental, inc bool) error {
			require.False(t, inc, "card bookings count at confirmation, not creation")
			r.ID = 78
			return nil
		},
		setPaymentRefFn: func(ctx context.Context, id int64, ref string) error {
			savedRef = ref
			return nil
		},
	}
	x := &stripeMock{createFn: func(req striperepo.CreateIntentReq) (*striperepo.Intent, error) {
		gotIntent = req
		return &striperepo.Intent{ID: "pi_123", ClientSecret: "pi_123_secret", Status: "requires_payment_method"}, nil
	}}
	svc := New(m, x)

	req := bookingReq(model.PayByCard)
	req.DamageProtection = true
	out, err := svc.Create(context.Background(), 9, req)
	require.NoError(t, err)
	require.True(t, out.RequiresPayment)
	require.Equal(t, "pi_123_secret", out.ClientSecret)
	require.Equal(t, model.RentalPending, out.Rental.Status)
	require.NotNil(t, out.Rental.PaymentDueAt)
	require.Equal(t, "pi_123", savedRef)

	// 3 days * 40 + 5 protection = 125.00
	require.Equal(t, int64(12500), gotIntent.AmountCents)
	require.Equal(t, int64(78), gotIntent.RentalID)
	require.NotEmpty(t, gotIntent.IdempotencyKey)
}

func TestCreate_ProductNotFound(t *testing.T) {
	m := &repoMock{
		getProductFn: func(ctx context.Context, id int64) (*model.Product, error) {
			return nil, sql.ErrNoRows
		},
	}
	svc := New(m, &stripeMock{})

	_, err := svc.Create(context.Background(), 9, bookingReq(model.PayOnDelivery))
	require.Equal(t, ErrProductNotFound, Code(err))
}

func TestCreate_ProductUnavailable(t *testing.T) {
	m := &repoMock{
		getProductFn: func(ctx context.Context, id int64) (*model.Product, error) {
			return dress(false), nil
		},
	}
	svc := New(m, &stripeMock{})

	_, err := svc.Create(context.Background(), 9, bookingReq(model.PayOnDelivery))
	require.Equal(t, ErrProductUnavailable, Code(err))
}

func TestCreate_LosesReservationRace(t *testing.T) {
	// The read said available but the guarded update found it taken.
	m := &repoMock{
		getProductFn: func(ctx context.Context, id int64) (*model.Product, error) {
			return dress(true), nil
		},
		createReservedFn: func(ctx context.Context, r *model.Rental, inc bool) error {
			return rrepo.ErrNotAvailable
		},
	}
	svc := New(m, &stripeMock{})

	_, err := svc.Create(context.Background(), 9, bookingReq(model.PayOnDelivery))
	require.Equal(t, ErrProductUnavailable, Code(err))
}

func TestCreate_MissingDates(t *testing.T) {
	m := &repoMock{
		getProductFn: func(ctx context.Context, id int64) (*model.Product, error) {
			return dress(true), nil
		},
	}
	svc := New(m, &stripeMock{})

	req := bookingReq(model.PayOnDelivery)
	req.StartDate, req.EndDate = time.Time{}, time.Time{}
	_, err := svc.Create(context.Background(), 9, req)
	require.Equal(t, ErrValidation, Code(err))
}

func TestCreate_GatewayFailureReleasesProduct(t *testing.T) {
	released := false
	m := &repoMock{
		getProductFn: func(ctx context.Context, id int64) (*model.Product, error) {
			return dress(true), nil
		},
		createReservedFn: func(ctx context.Context, r *model.Rental, inc bool) error {
			r.ID = 80
			return nil
		},
		deleteReleaseFn: func(ctx context.Context, id int64) error {
			require.Equal(t, int64(80), id)
			released = true
			return nil
		},
	}
	x := &stripeMock{createFn: func(req striperepo.CreateIntentReq) (*striperepo.Intent, error) {
		return nil, errors.New("stripe is down")
	}}
	svc := New(m, x)

	_, err := svc.Create(context.Background(), 9, bookingReq(model.PayByCard))
	require.Equal(t, ErrPaymentSetup, Code(err))
	require.True(t, released, "failed intent must not strand the reservation")
}

// --- ConfirmPayment ---

func TestConfirmPayment_Success(t *testing.T) {
	m := &repoMock{
		getFn: func(ctx context.Context, id int64) (*model.Rental, error) {
			return &model.Rental{ID: id, UserID: 9, Status: model.RentalPending}, nil
		},
		confirmFn: func(ctx context.Context, id int64) (*model.Rental, bool, error) {
			return &model.Rental{ID: id, UserID: 9, Status: model.RentalConfirmed, PaymentStatus: model.PaymentCompleted}, false, nil
		},
	}
	svc := New(m, &stripeMock{})

	r, err := svc.ConfirmPayment(context.Background(), 78, 9, false)
	require.NoError(t, err)
	require.Equal(t, model.RentalConfirmed, r.Status)
	require.Equal(t, model.PaymentCompleted, r.PaymentStatus)
}

func TestConfirmPayment_Idempotent(t *testing.T) {
	calls := 0
	m := &repoMock{
		getFn: func(ctx context.Context, id int64) (*model.Rental, error) {
			return &model.Rental{ID: id, UserID: 9, Status: model.RentalConfirmed}, nil
		},
		confirmFn: func(ctx context.Context, id int64) (*model.Rental, bool, error) {
			calls++
			return &model.Rental{ID: id, UserID: 9, Status: model.RentalConfirmed, PaymentStatus: model.PaymentCompleted}, true, nil
		},
	}
	svc := New(m, &stripeMock{})

	for i := 0; i < 3; i++ {
		r, err := svc.ConfirmPayment(context.Background(), 78, 9, false)
		require.NoError(t, err)
		require.Equal(t, model.RentalConfirmed, r.Status)
	}
	require.Equal(t, 3, calls)
}

func TestConfirmPayment_Forbidden(t *testing.T) {
	m := &repoMock{
		getFn: func(ctx context.Context, id int64) (*model.Rental, error) {
			return &model.Rental{ID: id, UserID: 9}, nil
		},
	}
	svc := New(m, &stripeMock{})

	_, err := svc.ConfirmPayment(context.Background(), 78, 1000, false)
	require.Equal(t, ErrForbidden, Code(err))

	// admin may confirm anyone's rental
	m.confirmFn = func(ctx context.Context, id int64) (*model.Rental, bool, error) {
		return &model.Rental{ID: id, Status: model.RentalConfirmed}, false, nil
	}
	_, err = svc.ConfirmPayment(context.Background(), 78, 1000, true)
	require.NoError(t, err)
}

func TestConfirmPayment_TerminalState(t *testing.T) {
	m := &repoMock{
		getFn: func(ctx context.Context, id int64) (*model.Rental, error) {
			return &model.Rental{ID: id, UserID: 9, Status: model.RentalCancelled}, nil
		},
		confirmFn: func(ctx context.Context, id int64) (*model.Rental, bool, error) {
			return nil, false, rrepo.ErrConflict
		},
	}
	svc := New(m, &stripeMock{})

	_, err := svc.ConfirmPayment(context.Background(), 78, 9, false)
	require.Equal(t, ErrInvalidTransition, Code(err))
}

// --- UpdateStatus ---

func TestUpdateStatus_AdminForwardPath(t *testing.T) {
	cur := model.RentalConfirmed
	m := &repoMock{
		getFn: func(ctx context.Context, id int64) (*model.Rental, error) {
			return &model.Rental{ID: id, UserID: 9, Status: cur}, nil
		},
		transitionFn: func(ctx context.Context, id int64, from, to model.RentalStatus, refund bool) error {
			require.Equal(t, cur, from)
			require.False(t, refund)
			cur = to
			return nil
		},
	}
	svc := New(m, &stripeMock{})

	for _, to := range []model.RentalStatus{model.RentalShipped, model.RentalDelivered, model.RentalReturnRequested, model.RentalReturned} {
		r, err := svc.UpdateStatus(context.Background(), 1, to, 1, true)
		require.NoError(t, err)
		require.Equal(t, to, r.Status)
	}
}

func TestUpdateStatus_SkipRejected(t *testing.T) {
	m := &repoMock{
		getFn: func(ctx context.Context, id int64) (*model.Rental, error) {
			return &model.Rental{ID: id, UserID: 9, Status: model.RentalPending}, nil
		},
	}
	svc := New(m, &stripeMock{})

	_, err := svc.UpdateStatus(context.Background(), 1, model.RentalShipped, 1, true)
	require.Equal(t, ErrInvalidTransition, Code(err))
}

func TestUpdateStatus_TerminalRejected(t *testing.T) {
	m := &repoMock{
		getFn: func(ctx context.Context, id int64) (*model.Rental, error) {
			return &model.Rental{ID: id, UserID: 9, Status: model.RentalReturned}, nil
		},
	}
	svc := New(m, &stripeMock{})

	_, err := svc.UpdateStatus(context.Background(), 1, model.RentalConfirmed, 1, true)
	require.Equal(t, ErrInvalidTransition, Code(err))
}

func TestUpdateStatus_OwnerMayOnlyCancel(t *testing.T) {
	m := &repoMock{
		getFn: func(ctx context.Context, id int64) (*model.Rental, error) {
			return &model.Rental{ID: id, UserID: 9, Status: model.RentalConfirmed}, nil
		},
		transitionFn: func(ctx context.Context, id int64, from, to model.RentalStatus, refund bool) error {
			return nil
		},
	}
	svc := New(m, &stripeMock{})

	_, err := svc.UpdateStatus(context.Background(), 1, model.RentalShipped, 9, false)
	require.Equal(t, ErrForbidden, Code(err))

	r, err := svc.UpdateStatus(context.Background(), 1, model.RentalCancelled, 9, false)
	require.NoError(t, err)
	require.Equal(t, model.RentalCancelled, r.Status)
}

func TestUpdateStatus_StrangerForbidden(t *testing.T) {
	m := &repoMock{
		getFn: func(ctx context.Context, id int64) (*model.Rental, error) {
			return &model.Rental{ID: id, UserID: 9, Status: model.RentalConfirmed}, nil
		},
	}
	svc := New(m, &stripeMock{})

	_, err := svc.UpdateStatus(context.Background(), 1, model.RentalCancelled, 55, false)
	require.Equal(t, ErrForbidden, Code(err))
}

func TestUpdateStatus_CancelPaidCardRefunds(t *testing.T) {
	var gotRefund bool
	m := &repoMock{
		getFn: func(ctx context.Context, id int64) (*model.Rental, error) {
			return &model.Rental{
				ID: id, UserID: 9, Status: model.RentalConfirmed,
				PaymentMethod: model.PayByCard, PaymentStatus: model.PaymentCompleted,
			}, nil
		},
		transitionFn: func(ctx context.Context, id int64, from, to model.RentalStatus, refund bool) error {
			gotRefund = refund
			return nil
		},
	}
	svc := New(m, &stripeMock{})

	r, err := svc.UpdateStatus(context.Background(), 1, model.RentalCancelled, 9, false)
	require.NoError(t, err)
	require.True(t, gotRefund)
	require.Equal(t, model.PaymentRefunded, r.PaymentStatus)
}

func TestUpdateStatus_CancelUnpaidCardVoidsIntent(t *testing.T) {
	ref := "pi_123"
	var cancelled string
	m := &repoMock{
		getFn: func(ctx context.Context, id int64) (*model.Rental, error) {
			return &model.Rental{
				ID: id, UserID: 9, Status: model.RentalPending,
				PaymentMethod: model.PayByCard, PaymentStatus: model.PaymentPending,
				PaymentRef: &ref,
			}, nil
		},
		transitionFn: func(ctx context.Context, id int64, from, to model.RentalStatus, refund bool) error {
			require.False(t, refund)
			return nil
		},
	}
	x := &stripeMock{cancelFn: func(intentID string) error {
		cancelled = intentID
		return nil
	}}
	svc := New(m, x)

	r, err := svc.UpdateStatus(context.Background(), 1, model.RentalCancelled, 9, false)
	require.NoError(t, err)
	require.Equal(t, model.RentalCancelled, r.Status)
	require.Equal(t, "pi_123", cancelled, "open intent must be voided with the booking")
}

func TestUpdateStatus_CancelPaidCardKeepsIntent(t *testing.T) {
	ref := "pi_123"
	m := &repoMock{
		getFn: func(ctx context.Context, id int64) (*model.Rental, error) {
			return &model.Rental{
				ID: id, UserID: 9, Status: model.RentalConfirmed,
				PaymentMethod: model.PayByCard, PaymentStatus: model.PaymentCompleted,
				PaymentRef: &ref,
			}, nil
		},
		transitionFn: func(ctx context.Context, id int64, from, to model.RentalStatus, refund bool) error {
			return nil
		},
	}
	x := &stripeMock{cancelFn: func(intentID string) error {
		t.Fatal("a captured intent cannot be cancelled, only refunded")
		return nil
	}}
	svc := New(m, x)

	r, err := svc.UpdateStatus(context.Background(), 1, model.RentalCancelled, 9, false)
	require.NoError(t, err)
	require.Equal(t, model.PaymentRefunded, r.PaymentStatus)
}

func TestUpdateStatus_CancelCodNoRefund(t *testing.T) {
	m := &repoMock{
		getFn: func(ctx context.Context, id int64) (*model.Rental, error) {
			return &model.Rental{
				ID: id, UserID: 9, Status: model.RentalConfirmed,
				PaymentMethod: model.PayOnDelivery, PaymentStatus: model.PaymentPending,
			}, nil
		},
		transitionFn: func(ctx context.Context, id int64, from, to model.RentalStatus, refund bool) error {
			require.False(t, refund)
			return nil
		},
	}
	svc := New(m, &stripeMock{})

	r, err := svc.UpdateStatus(context.Background(), 1, model.RentalCancelled, 9, false)
	require.NoError(t, err)
	require.Equal(t, model.PaymentPending, r.PaymentStatus)
}

func TestUpdateStatus_ConfirmGoesThroughCountingPath(t *testing.T) {
	confirmed := false
	m := &repoMock{
		getFn: func(ctx context.Context, id int64) (*model.Rental, error) {
			return &model.Rental{ID: id, UserID: 9, Status: model.RentalPending}, nil
		},
		confirmFn: func(ctx context.Context, id int64) (*model.Rental, bool, error) {
			confirmed = true
			return &model.Rental{ID: id, UserID: 9, Status: model.RentalConfirmed}, false, nil
		},
		transitionFn: func(ctx context.Context, id int64, from, to model.RentalStatus, refund bool) error {
			t.Fatal("pending->confirmed must use Confirm, not Transition")
			return nil
		},
	}
	svc := New(m, &stripeMock{})

	_, err := svc.UpdateStatus(context.Background(), 1, model.RentalConfirmed, 1, true)
	require.NoError(t, err)
	require.True(t, confirmed)
}

// --- Return / ForceReturn ---

func TestReturn_OwnerRequestsReturn(t *testing.T) {
	m := &repoMock{
		getFn: func(ctx context.Context, id int64) (*model.Rental, error) {
			return &model.Rental{ID: id, UserID: 9, Status: model.RentalDelivered}, nil
		},
		transitionFn: func(ctx context.Context, id int64, from, to model.RentalStatus, refund bool) error {
			require.Equal(t, model.RentalDelivered, from)
			require.Equal(t, model.RentalReturnRequested, to)
			return nil
		},
	}
	svc := New(m, &stripeMock{})

	r, err := svc.Return(context.Background(), 1, 9, false)
	require.NoError(t, err)
	require.Equal(t, model.RentalReturnRequested, r.Status)
}

func TestReturn_AdminCompletesDirectly(t *testing.T) {
	m := &repoMock{
		getFn: func(ctx context.Context, id int64) (*model.Rental, error) {
			return &model.Rental{ID: id, UserID: 9, Status: model.RentalDelivered}, nil
		},
		transitionFn: func(ctx context.Context, id int64, from, to model.RentalStatus, refund bool) error {
			require.Equal(t, model.RentalDelivered, from)
			require.Equal(t, model.RentalReturned, to)
			return nil
		},
	}
	svc := New(m, &stripeMock{})

	r, err := svc.Return(context.Background(), 1, 55, true)
	require.NoError(t, err)
	require.Equal(t, model.RentalReturned, r.Status)
}

func TestReturn_AdminCompletesRequestedReturn(t *testing.T) {
	m := &repoMock{
		getFn: func(ctx context.Context, id int64) (*model.Rental, error) {
			return &model.Rental{ID: id, UserID: 9, Status: model.RentalReturnRequested}, nil
		},
		transitionFn: func(ctx context.Context, id int64, from, to model.RentalStatus, refund bool) error {
			require.Equal(t, model.RentalReturnRequested, from)
			require.Equal(t, model.RentalReturned, to)
			return nil
		},
	}
	svc := New(m, &stripeMock{})

	r, err := svc.Return(context.Background(), 1, 55, true)
	require.NoError(t, err)
	require.Equal(t, model.RentalReturned, r.Status)
}

func TestReturn_AlreadyReturned(t *testing.T) {
	m := &repoMock{
		getFn: func(ctx context.Context, id int64) (*model.Rental, error) {
			return &model.Rental{ID: id, UserID: 9, Status: model.RentalReturned}, nil
		},
	}
	svc := New(m, &stripeMock{})

	_, err := svc.Return(context.Background(), 1, 9, false)
	require.Equal(t, ErrInvalidTransition, Code(err))
}

func TestForceReturn_Success(t *testing.T) {
	m := &repoMock{
		findActiveFn: func(ctx context.Context, productID int64) (*model.Rental, error) {
			require.Equal(t, int64(5), productID)
			return &model.Rental{ID: 33, ProductID: 5, Status: model.RentalShipped}, nil
		},
		transitionFn: func(ctx context.Context, id int64, from, to model.RentalStatus, refund bool) error {
			require.Equal(t, int64(33), id)
			require.Equal(t, model.RentalReturned, to)
			return nil
		},
	}
	svc := New(m, &stripeMock{})

	r, err := svc.ForceReturn(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, model.RentalReturned, r.Status)
}

func TestForceReturn_NoActiveRental(t *testing.T) {
	m := &repoMock{
		findActiveFn: func(ctx context.Context, productID int64) (*model.Rental, error) {
			return nil, sql.ErrNoRows
		},
	}
	svc := New(m, &stripeMock{})

	_, err := svc.ForceReturn(context.Background(), 5)
	require.Equal(t, ErrNoActiveRental, Code(err))
}

func TestForceReturn_LosesRaceWithNormalReturn(t *testing.T) {
	m := &repoMock{
		findActiveFn: func(ctx context.Context, productID int64) (*model.Rental, error) {
			return &model.Rental{ID: 33, ProductID: 5, Status: model.RentalDelivered}, nil
		},
		transitionFn: func(ctx context.Context, id int64, from, to model.RentalStatus, refund bool) error {
			return rrepo.ErrConflict
		},
	}
	svc := New(m, &stripeMock{})

	_, err := svc.ForceReturn(context.Background(), 5)
	require.Equal(t, ErrNoActiveRental, Code(err))
}

// --- Get ---

func TestGet_AuthZ(t *testing.T) {
	m := &repoMock{
		getFn: func(ctx context.Context, id int64) (*model.Rental, error) {
			return &model.Rental{ID: id, UserID: 9}, nil
		},
	}
	svc := New(m, &stripeMock{})

	_, err := svc.Get(context.Background(), 1, 55, false)
	require.Equal(t, ErrForbidden, Code(err))

	_, err = svc.Get(context.Background(), 1, 9, false)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), 1, 55, true)
	require.NoError(t, err)
}
