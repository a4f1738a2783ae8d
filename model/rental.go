// model/rental.go
package model

import "time"

type RentalStatus string

const (
	RentalPending         RentalStatus = "pending"
	RentalConfirmed       RentalStatus = "confirmed"
	RentalShipped         RentalStatus = "shipped"
	RentalDelivered       RentalStatus = "delivered"
	RentalReturnRequested RentalStatus = "return_requested"
	RentalReturned        RentalStatus = "returned"
	RentalCancelled       RentalStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	PayByCard PaymentMethod = "card"
	PayOnDelivery PaymentMethod = "cod"
)

// validNext is the single source of truth for rental status transitions.
// Every non-terminal state may be forced into returned by an admin.
var validNext = map[RentalStatus]map[RentalStatus]bool{
	RentalPending:         {RentalConfirmed: true, RentalCancelled: true, RentalReturned: true},
	RentalConfirmed:       {RentalShipped: true, RentalCancelled: true, RentalReturned: true},
	RentalShipped:         {RentalDelivered: true, RentalReturned: true},
	RentalDelivered:       {RentalReturnRequested: true, RentalReturned: true},
	RentalReturnRequested: {RentalReturned: true},
	RentalReturned:        {},
	RentalCancelled:       {},
}

func CanTransition(from, to RentalStatus) bool {
	return validNext[from][to]
}

func (s RentalStatus) Terminal() bool {
	return s == RentalReturned || s == RentalCancelled
}

type DeliveryAddress struct {
	Street  string `json:"street" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code" validate:"required"`
}

type DamageReport struct {
	Reported    bool     `json:"reported"`
	Description string   `json:"description,omitempty"`
	Images      []string `json:"images,omitempty"`
	Charge      float64  `json:"charge"`
}

type Rental struct {
	ID               int64           `json:"id"`
	UserID           int64           `json:"user_id"`
	ProductID        int64           `json:"product_id"`
	StartDate        time.Time       `json:"start_date"`
	EndDate          time.Time       `json:"end_date"`
	TotalCost        float64         `json:"total_cost"`
	Status           RentalStatus    `json:"status"`
	Size             string          `json:"size"`
	DamageProtection bool            `json:"damage_protection"`
	DeliveryAddress  DeliveryAddress `json:"delivery_address"`
	PaymentMethod    PaymentMethod   `json:"payment_method"`
	PaymentStatus    PaymentStatus   `json:"payment_status"`
	PaymentRef       *string         `json:"payment_ref,omitempty"`
	PaymentDueAt     *time.Time      `json:"payment_due_at,omitempty"`
	DamageReport     DamageReport    `json:"damage_report"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Duration is the chargeable rental length in whole days, never below one.
func (r *Rental) Duration() int {
	d := int(r.EndDate.Sub(r.StartDate).Hours() / 24)
	if r.EndDate.Sub(r.StartDate)%(24*time.Hour) != 0 {
		d++
	}
	if d < 1 {
		d = 1
	}
	return d
}

// CreateRentalReq is the booking payload.
// swagger:model CreateRentalReq
type CreateRentalReq struct {
	ProductID        int64           `json:"product_id" validate:"required,gt=0"`
	StartDate        time.Time       `json:"start_date" validate:"required"`
	EndDate          time.Time       `json:"end_date" validate:"required"`
	DeliveryAddress  DeliveryAddress `json:"delivery_address" validate:"required"`
	PaymentMethod    PaymentMethod   `json:"payment_method" validate:"required,oneof=card cod"`
	Size             string          `json:"size" validate:"omitempty,oneof=XS S M L XL XXL 'One Size'"`
	DamageProtection bool            `json:"damage_protection"`
}

type UpdateRentalStatusReq struct {
	Status RentalStatus `json:"status" validate:"required,oneof=pending confirmed shipped delivered return_requested returned cancelled"`
}

type DamageReportReq struct {
	Description string   `json:"description" validate:"required"`
	Images      []string `json:"images"`
	Charge      float64  `json:"charge" validate:"gte=0"`
}
