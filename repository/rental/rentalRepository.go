package rentalrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"rentique/model"
)

var (
	// ErrNotAvailable: the availability compare-and-set matched no row, i.e.
	// another rental holds the product.
	ErrNotAvailable = errors.New("product not available")
	// ErrConflict: a guarded status update matched no row because the rental
	// left the expected status concurrently.
	ErrConflict = errors.New("rental status changed concurrently")
)

// RentalRow is a rental joined with the product fields the listings show.
type RentalRow struct {
	model.Rental
	ProductName   string   `json:"product_name"`
	ProductBrand  string   `json:"product_brand"`
	Category      string   `json:"category"`
	ProductImages []string `json:"product_images"`
}

type Repo interface {
	GetProduct(ctx context.Context, productID int64) (*model.Product, error)

	// CreateReserved atomically flips the product unavailable (guarded on
	// available=true) and inserts the rental. incrementCount bumps
	// rental_count in the same statement (cod bookings, which confirm at
	// creation).
	CreateReserved(ctx context.Context, r *model.Rental, incrementCount bool) error

	SetPaymentRef(ctx context.Context, rentalID int64, ref string) error

	// DeleteAndRelease removes a just-created rental and frees its product.
	// Compensating action for failed payment-intent creation.
	DeleteAndRelease(ctx context.Context, rentalID int64) error

	Get(ctx context.Context, rentalID int64) (*model.Rental, error)
	ByPaymentRef(ctx context.Context, ref string) (*model.Rental, error)

	// Confirm moves a pending rental to confirmed/completed and increments
	// the product's rental_count, all guarded on status='pending'. When the
	// rental is already confirmed it reports already=true and changes
	// nothing. Any other status is ErrConflict.
	Confirm(ctx context.Context, rentalID int64) (r *model.Rental, already bool, err error)

	// Transition applies from->to guarded on the current status. Entering a
	// terminal status frees the product in the same transaction.
	Transition(ctx context.Context, rentalID int64, from, to model.RentalStatus, refund bool) error

	FindActiveByProduct(ctx context.Context, productID int64) (*model.Rental, error)

	SetDamageReport(ctx context.Context, rentalID int64, rep model.DamageReport) error

	ListByUser(ctx context.Context, userID int64) ([]RentalRow, error)
	ListAll(ctx context.Context) ([]RentalRow, error)

	// ReleaseExpiredHolds cancels pending card rentals whose payment window
	// has closed and frees their products. Returns how many were released and
	// the gateway refs of their still-open payment intents.
	ReleaseExpiredHolds(ctx context.Context, now time.Time) (int64, []string, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

const rentalCols = `id, user_id, product_id, start_date, end_date, total_cost,
	status, COALESCE(size,''), damage_protection, delivery_address,
	payment_method, payment_status, payment_ref, payment_due_at,
	damage_reported, COALESCE(damage_description,''), damage_images,
	damage_charge, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRental(row rowScanner) (*model.Rental, error) {
	r := &model.Rental{}
	var addr, dmgImages []byte
	err := row.Scan(&r.ID, &r.UserID, &r.ProductID, &r.StartDate, &r.EndDate, &r.TotalCost,
		&r.Status, &r.Size, &r.DamageProtection, &addr,
		&r.PaymentMethod, &r.PaymentStatus, &r.PaymentRef, &r.PaymentDueAt,
		&r.DamageReport.Reported, &r.DamageReport.Description, &dmgImages,
		&r.DamageReport.Charge, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(addr) > 0 {
		if err := json.Unmarshal(addr, &r.DeliveryAddress); err != nil {
			return nil, err
		}
	}
	if len(dmgImages) > 0 {
		if err := json.Unmarshal(dmgImages, &r.DamageReport.Images); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *repo) GetProduct(ctx context.Context, productID int64) (*model.Product, error) {
	p := &model.Product{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, brand, size, rental_price, available
		FROM products
		WHERE id = $1`, productID,
	).Scan(&p.ID, &p.Name, &p.Brand, &p.Size, &p.RentalPrice, &p.Available)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repo) CreateReserved(ctx context.Context, rental *model.Rental, incrementCount bool) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	inc := 0
	if incrementCount {
		inc = 1
	}
	res, err := tx.ExecContext(ctx, `
		UPDATE products
		SET available = false,
		    rented_by = $2,
		    rental_end_date = $3,
		    rental_count = rental_count + $4,
		    updated_at = now()
		WHERE id = $1
		  AND available = true`,
		rental.ProductID, rental.UserID, rental.EndDate, inc)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return ErrNotAvailable
	}

	addr, err := json.Marshal(rental.DeliveryAddress)
	if err != nil {
		return err
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO rentals
			(user_id, product_id, start_date, end_date, total_cost, status, size,
			 damage_protection, delivery_address, payment_method, payment_status, payment_due_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING id, created_at, updated_at`,
		rental.UserID, rental.ProductID, rental.StartDate, rental.EndDate, rental.TotalCost,
		rental.Status, rental.Size, rental.DamageProtection, addr,
		rental.PaymentMethod, rental.PaymentStatus, rental.PaymentDueAt,
	).Scan(&rental.ID, &rental.CreatedAt, &rental.UpdatedAt)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repo) SetPaymentRef(ctx context.Context, rentalID int64, ref string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE rentals
		SET payment_ref = $2, updated_at = now()
		WHERE id = $1`, rentalID, ref)
	return err
}

func (r *repo) DeleteAndRelease(ctx context.Context, rentalID int64) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var productID int64
	if err = tx.QueryRowContext(ctx,
		`DELETE FROM rentals WHERE id = $1 RETURNING product_id`, rentalID).Scan(&productID); err != nil {
		return err
	}
	if err = freeProduct(ctx, tx, productID); err != nil {
		return err
	}
	return tx.Commit()
}

func freeProduct(ctx context.Context, tx *sql.Tx, productID int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE products
		SET available = true,
		    rented_by = NULL,
		    rental_end_date = NULL,
		    updated_at = now()
		WHERE id = $1`, productID)
	return err
}

func (r *repo) Get(ctx context.Context, rentalID int64) (*model.Rental, error) {
	return scanRental(r.db.QueryRowContext(ctx, `
		SELECT `+rentalCols+`
		FROM rentals
		WHERE id = $1`, rentalID))
}

func (r *repo) ByPaymentRef(ctx context.Context, ref string) (*model.Rental, error) {
	return scanRental(r.db.QueryRowContext(ctx, `
		SELECT `+rentalCols+`
		FROM rentals
		WHERE payment_ref = $1`, ref))
}

func (r *repo) Confirm(ctx context.Context, rentalID int64) (_ *model.Rental, already bool, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	rental, err := scanRental(tx.QueryRowContext(ctx, `
		SELECT `+rentalCols+`
		FROM rentals
		WHERE id = $1
		FOR UPDATE`, rentalID))
	if err != nil {
		return nil, false, err
	}

	if rental.Status == model.RentalConfirmed {
		// Idempotent re-invocation: nothing to apply.
		err = tx.Commit()
		return rental, true, err
	}
	if rental.Status != model.RentalPending {
		err = ErrConflict
		return nil, false, err
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE rentals
		SET status = 'confirmed',
		    payment_status = 'completed',
		    payment_due_at = NULL,
		    updated_at = now()
		WHERE id = $1`, rentalID); err != nil {
		return nil, false, err
	}

	// The product was reserved at creation; confirmation only counts the rental.
	if _, err = tx.ExecContext(ctx, `
		UPDATE products
		SET rental_count = rental_count + 1, updated_at = now()
		WHERE id = $1`, rental.ProductID); err != nil {
		return nil, false, err
	}

	if err = tx.Commit(); err != nil {
		return nil, false, err
	}
	rental.Status = model.RentalConfirmed
	rental.PaymentStatus = model.PaymentCompleted
	rental.PaymentDueAt = nil
	return rental, false, nil
}

func (r *repo) Transition(ctx context.Context, rentalID int64, from, to model.RentalStatus, refund bool) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	q := `
		UPDATE rentals
		SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
		RETURNING product_id`
	if refund {
		q = `
		UPDATE rentals
		SET status = $3, payment_status = 'refunded', updated_at = now()
		WHERE id = $1 AND status = $2
		RETURNING product_id`
	}
	var productID int64
	if err = tx.QueryRowContext(ctx, q, rentalID, from, to).Scan(&productID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrConflict
		}
		return err
	}

	if to.Terminal() {
		if err = freeProduct(ctx, tx, productID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *repo) FindActiveByProduct(ctx context.Context, productID int64) (*model.Rental, error) {
	return scanRental(r.db.QueryRowContext(ctx, `
		SELECT `+rentalCols+`
		FROM rentals
		WHERE product_id = $1
		  AND status NOT IN ('returned','cancelled')
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, productID))
}

func (r *repo) SetDamageReport(ctx context.Context, rentalID int64, rep model.DamageReport) error {
	images, err := json.Marshal(rep.Images)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE rentals
		SET damage_reported = true,
		    damage_description = $2,
		    damage_images = $3,
		    damage_charge = $4,
		    updated_at = now()
		WHERE id = $1`, rentalID, rep.Description, images, rep.Charge)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

const listCols = `r.id, r.user_id, r.product_id, r.start_date, r.end_date, r.total_cost,
	r.status, COALESCE(r.size,''), r.damage_protection, r.delivery_address,
	r.payment_method, r.payment_status, r.payment_ref, r.payment_due_at,
	r.damage_reported, COALESCE(r.damage_description,''), r.damage_images,
	r.damage_charge, r.created_at, r.updated_at,
	p.name, p.brand, p.category, p.images`

func (r *repo) listRows(ctx context.Context, q string, args ...any) ([]RentalRow, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []RentalRow{}
	for rows.Next() {
		var h RentalRow
		var addr, dmgImages, prodImages []byte
		if err := rows.Scan(&h.ID, &h.UserID, &h.ProductID, &h.StartDate, &h.EndDate, &h.TotalCost,
			&h.Status, &h.Size, &h.DamageProtection, &addr,
			&h.PaymentMethod, &h.PaymentStatus, &h.PaymentRef, &h.PaymentDueAt,
			&h.DamageReport.Reported, &h.DamageReport.Description, &dmgImages,
			&h.DamageReport.Charge, &h.CreatedAt, &h.UpdatedAt,
			&h.ProductName, &h.ProductBrand, &h.Category, &prodImages); err != nil {
			return nil, err
		}
		if len(addr) > 0 {
			if err := json.Unmarshal(addr, &h.DeliveryAddress); err != nil {
				return nil, err
			}
		}
		if len(dmgImages) > 0 {
			if err := json.Unmarshal(dmgImages, &h.DamageReport.Images); err != nil {
				return nil, err
			}
		}
		if len(prodImages) > 0 {
			if err := json.Unmarshal(prodImages, &h.ProductImages); err != nil {
				return nil, err
			}
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *repo) ListByUser(ctx context.Context, userID int64) ([]RentalRow, error) {
	return r.listRows(ctx, `
		SELECT `+listCols+`
		FROM rentals r
		JOIN products p ON p.id = r.product_id
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC, r.id DESC`, userID)
}

func (r *repo) ListAll(ctx context.Context) ([]RentalRow, error) {
	return r.listRows(ctx, `
		SELECT `+listCols+`
		FROM rentals r
		JOIN products p ON p.id = r.product_id
		ORDER BY r.created_at DESC, r.id DESC`)
}

func (r *repo) ReleaseExpiredHolds(ctx context.Context, now time.Time) (_ int64, _ []string, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	rows, err := tx.QueryContext(ctx, `
		UPDATE rentals
		SET status = 'cancelled',
		    payment_status = 'failed',
		    updated_at = now()
		WHERE status = 'pending'
		  AND payment_method = 'card'
		  AND payment_due_at IS NOT NULL
		  AND payment_due_at < $1
		RETURNING product_id, payment_ref`, now)
	if err != nil {
		return 0, nil, err
	}
	var productIDs []int64
	var refs []string
	for rows.Next() {
		var id int64
		var ref *string
		if err = rows.Scan(&id, &ref); err != nil {
			rows.Close()
			return 0, nil, err
		}
		productIDs = append(productIDs, id)
		if ref != nil && *ref != "" {
			refs = append(refs, *ref)
		}
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return 0, nil, err
	}

	for _, pid := range productIDs {
		if err = freeProduct(ctx, tx, pid); err != nil {
			return 0, nil, err
		}
	}
	if err = tx.Commit(); err != nil {
		return 0, nil, err
	}
	return int64(len(productIDs)), refs, nil
}
