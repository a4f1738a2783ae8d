package rental

import (
	"math"
	"time"
)

// DamageProtectionFee is the flat add-on charged when the renter opts into
// damage protection.
const DamageProtectionFee = 5.0

// paymentHoldWindow is how long a card booking may hold a product before the
// cleaner releases it.
const paymentHoldWindow = 30 * time.Minute

// Cost prices a rental: whole days (rounded up, minimum one chargeable day)
// times the daily rate, plus the protection fee when selected. Zero or
// inverted dates are a validation error rather than a zero price.
func Cost(dailyRate float64, start, end time.Time, damageProtection bool) (float64, error) {
	if dailyRate < 0 {
		return 0, makeErr(ErrValidation)
	}
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return 0, makeErr(ErrValidation)
	}

	days := int(math.Ceil(end.Sub(start).Hours() / 24))
	if days < 1 {
		days = 1
	}

	total := float64(days) * dailyRate
	if damageProtection {
		total += DamageProtectionFee
	}
	return total, nil
}
