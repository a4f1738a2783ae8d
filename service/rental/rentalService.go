package rental

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"rentique/model"
	rrepo "rentique/repository/rental"
	striperepo "rentique/repository/stripe"
)

// errors used by controllers

type ErrCode string

const (
	ErrValidation         ErrCode = "VALIDATION"
	ErrProductNotFound    ErrCode = "PRODUCT_NOT_FOUND"
	ErrProductUnavailable ErrCode = "PRODUCT_UNAVAILABLE"
	ErrRentalNotFound     ErrCode = "RENTAL_NOT_FOUND"
	ErrForbidden          ErrCode = "FORBIDDEN"
	ErrInvalidTransition  ErrCode = "INVALID_TRANSITION"
	ErrNoActiveRental     ErrCode = "NO_ACTIVE_RENTAL"
	ErrPaymentSetup       ErrCode = "PAYMENT_SETUP_FAILED"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// dto

type Created struct {
	Rental          *model.Rental
	RequiresPayment bool
	ClientSecret    string
}

// RentalRow = repository shape
type RentalRow = rrepo.RentalRow

type Repo interface {
	GetProduct(ctx context.Context, productID int64) (*model.Product, error)
	CreateReserved(ctx context.Context, r *model.Rental, incrementCount bool) error
	SetPaymentRef(ctx context.Context, rentalID int64, ref string) error
	DeleteAndRelease(ctx context.Context, rentalID int64) error
	Get(ctx context.Context, rentalID int64) (*model.Rental, error)
	ByPaymentRef(ctx context.Context, ref string) (*model.Rental, error)
	Confirm(ctx context.Context, rentalID int64) (r *model.Rental, already bool, err error)
	Transition(ctx context.Context, rentalID int64, from, to model.RentalStatus, refund bool) error
	FindActiveByProduct(ctx context.Context, productID int64) (*model.Rental, error)
	SetDamageReport(ctx context.Context, rentalID int64, rep model.DamageReport) error
	ListByUser(ctx context.Context, userID int64) ([]RentalRow, error)
	ListAll(ctx context.Context) ([]RentalRow, error)
	ReleaseExpiredHolds(ctx context.Context, now time.Time) (int64, []string, error)
}

type Service interface {
	// Create: reserve the product, persist the rental and, for card payment,
	// open a gateway intent whose client secret the caller collects against.
	Create(ctx context.Context, userID int64, req model.CreateRentalReq) (*Created, error)

	// ConfirmPayment finalizes a card rental after the gateway reports
	// success. Safe to call repeatedly.
	ConfirmPayment(ctx context.Context, rentalID, actingUserID int64, isAdmin bool) (*model.Rental, error)

	UpdateStatus(ctx context.Context, rentalID int64, to model.RentalStatus, actingUserID int64, isAdmin bool) (*model.Rental, error)

	// Return marks the rental returned and frees the product.
	Return(ctx context.Context, rentalID, actingUserID int64, isAdmin bool) (*model.Rental, error)

	// ForceReturn is the admin escape hatch keyed by product rather than
	// rental, for when the normal return flow is stuck.
	ForceReturn(ctx context.Context, productID int64) (*model.Rental, error)

	ReportDamage(ctx context.Context, rentalID int64, req model.DamageReportReq) (*model.Rental, error)

	Get(ctx context.Context, rentalID, actingUserID int64, isAdmin bool) (*model.Rental, error)
	MyRentals(ctx context.Context, userID int64) ([]RentalRow, error)
	AllRentals(ctx context.Context) ([]RentalRow, error)
}

// ----- Service implementation -----

type service struct {
	r Repo
	x striperepo.Repo
}

func New(r Repo, x striperepo.Repo) Service { return &service{r: r, x: x} }

func (s *service) Create(ctx context.Context, userID int64, req model.CreateRentalReq) (*Created, error) {
	p, err := s.r.GetProduct(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrProductNotFound)
		}
		return nil, err
	}
	if !p.Available {
		return nil, makeErr(ErrProductUnavailable)
	}

	cost, err := Cost(p.RentalPrice, req.StartDate, req.EndDate, req.DamageProtection)
	if err != nil {
		return nil, err
	}

	size := req.Size
	if size == "" {
		size = p.Size
	}

	rental := &model.Rental{
		UserID:           userID,
		ProductID:        req.ProductID,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		TotalCost:        cost,
		Size:             size,
		DamageProtection: req.DamageProtection,
		DeliveryAddress:  req.DeliveryAddress,
		PaymentMethod:    req.PaymentMethod,
		PaymentStatus:    model.PaymentPending,
	}

	cod := req.PaymentMethod == model.PayOnDelivery
	if cod {
		rental.Status = model.RentalConfirmed
	} else {
		rental.Status = model.RentalPending
		due := time.Now().UTC().Add(paymentHoldWindow)
		rental.PaymentDueAt = &due
	}

	// Reservation happens at creation for both methods; the guarded update
	// inside CreateReserved is what loses the double-booking race cleanly.
	if err := s.r.CreateReserved(ctx, rental, cod); err != nil {
		if errors.Is(err, rrepo.ErrNotAvailable) {
			return nil, makeErr(ErrProductUnavailable)
		}
		return nil, err
	}

	if cod {
		return &Created{Rental: rental}, nil
	}

	intent, err := s.x.CreateIntent(striperepo.CreateIntentReq{
		AmountCents:    int64(math.Round(cost * 100)),
		Currency:       "usd",
		RentalID:       rental.ID,
		UserID:         userID,
		ProductID:      req.ProductID,
		IdempotencyKey: uuid.NewString(),
	})
	if err != nil {
		// Never leave a dangling pending rental behind a failed intent.
		if derr := s.r.DeleteAndRelease(ctx, rental.ID); derr != nil {
			return nil, derr
		}
		return nil, makeErr(ErrPaymentSetup)
	}

	if err := s.r.SetPaymentRef(ctx, rental.ID, intent.ID); err != nil {
		return nil, err
	}
	rental.PaymentRef = &intent.ID

	return &Created{Rental: rental, RequiresPayment: true, ClientSecret: intent.ClientSecret}, nil
}

func (s *service) ConfirmPayment(ctx context.Context, rentalID, actingUserID int64, isAdmin bool) (*model.Rental, error) {
	rental, err := s.r.Get(ctx, rentalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrRentalNotFound)
		}
		return nil, err
	}
	if !isAdmin && rental.UserID != actingUserID {
		return nil, makeErr(ErrForbidden)
	}

	confirmed, _, err := s.r.Confirm(ctx, rentalID)
	if err != nil {
		if errors.Is(err, rrepo.ErrConflict) {
			return nil, makeErr(ErrInvalidTransition)
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrRentalNotFound)
		}
		return nil, err
	}
	return confirmed, nil
}

func (s *service) UpdateStatus(ctx context.Context, rentalID int64, to model.RentalStatus, actingUserID int64, isAdmin bool) (*model.Rental, error) {
	rental, err := s.r.Get(ctx, rentalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrRentalNotFound)
		}
		return nil, err
	}

	isOwner := rental.UserID == actingUserID
	if !isAdmin && !isOwner {
		return nil, makeErr(ErrForbidden)
	}
	// Owners may only cancel; everything else is back-office.
	if !isAdmin && to != model.RentalCancelled {
		return nil, makeErr(ErrForbidden)
	}

	if !model.CanTransition(rental.Status, to) {
		return nil, makeErr(ErrInvalidTransition)
	}

	// Confirming a pending rental goes through the counting path so the
	// rental_count increment stays exactly-once.
	if to == model.RentalConfirmed && rental.Status == model.RentalPending {
		return s.ConfirmPayment(ctx, rentalID, actingUserID, isAdmin)
	}

	refund := to == model.RentalCancelled &&
		rental.PaymentMethod == model.PayByCard &&
		rental.PaymentStatus == model.PaymentCompleted

	if err := s.r.Transition(ctx, rentalID, rental.Status, to, refund); err != nil {
		if errors.Is(err, rrepo.ErrConflict) {
			return nil, makeErr(ErrInvalidTransition)
		}
		return nil, err
	}

	// Cancelling an unpaid card rental voids its open intent so the customer
	// can no longer be charged for a booking that is gone. Best effort: an
	// uncancelled intent just expires at the gateway.
	if to == model.RentalCancelled &&
		rental.PaymentMethod == model.PayByCard &&
		rental.PaymentStatus == model.PaymentPending &&
		rental.PaymentRef != nil {
		_ = s.x.CancelIntent(*rental.PaymentRef)
	}

	rental.Status = to
	if refund {
		rental.PaymentStatus = model.PaymentRefunded
	}
	return rental, nil
}

func (s *service) Return(ctx context.Context, rentalID, actingUserID int64, isAdmin bool) (*model.Rental, error) {
	rental, err := s.r.Get(ctx, rentalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrRentalNotFound)
		}
		return nil, err
	}
	if !isAdmin && rental.UserID != actingUserID {
		return nil, makeErr(ErrForbidden)
	}

	// A renter holding the item asks for a return; back-office receives the
	// item and completes it. Admins complete directly from any active state.
	to := model.RentalReturned
	if !isAdmin && rental.Status == model.RentalDelivered {
		to = model.RentalReturnRequested
	}
	if !model.CanTransition(rental.Status, to) {
		return nil, makeErr(ErrInvalidTransition)
	}

	if err := s.r.Transition(ctx, rentalID, rental.Status, to, false); err != nil {
		if errors.Is(err, rrepo.ErrConflict) {
			return nil, makeErr(ErrInvalidTransition)
		}
		return nil, err
	}
	rental.Status = to
	return rental, nil
}

func (s *service) ForceReturn(ctx context.Context, productID int64) (*model.Rental, error) {
	rental, err := s.r.FindActiveByProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNoActiveRental)
		}
		return nil, err
	}

	if err := s.r.Transition(ctx, rental.ID, rental.Status, model.RentalReturned, false); err != nil {
		if errors.Is(err, rrepo.ErrConflict) {
			// Lost a race with a normal return; the product is free either way.
			return nil, makeErr(ErrNoActiveRental)
		}
		return nil, err
	}
	rental.Status = model.RentalReturned
	return rental, nil
}

func (s *service) ReportDamage(ctx context.Context, rentalID int64, req model.DamageReportReq) (*model.Rental, error) {
	rep := model.DamageReport{
		Reported:    true,
		Description: req.Description,
		Images:      req.Images,
		Charge:      req.Charge,
	}
	if err := s.r.SetDamageReport(ctx, rentalID, rep); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrRentalNotFound)
		}
		return nil, err
	}
	return s.r.Get(ctx, rentalID)
}

func (s *service) Get(ctx context.Context, rentalID, actingUserID int64, isAdmin bool) (*model.Rental, error) {
	rental, err := s.r.Get(ctx, rentalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrRentalNotFound)
		}
		return nil, err
	}
	if !isAdmin && rental.UserID != actingUserID {
		return nil, makeErr(ErrForbidden)
	}
	return rental, nil
}

func (s *service) MyRentals(ctx context.Context, userID int64) ([]RentalRow, error) {
	return s.r.ListByUser(ctx, userID)
}

func (s *service) AllRentals(ctx context.Context) ([]RentalRow, error) {
	return s.r.ListAll(ctx)
}
