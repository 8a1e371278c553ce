package booking

import (
	"math"

	"solobuddy/models"
	"solobuddy/services/availability"
	"solobuddy/utils"
)

// ComputeTotal returns tourPrice*quantity + dailyRate*days, days counted
// inclusively. Inputs are already in minor units, so no rounding happens here.
func ComputeTotal(tourPrice models.Money, quantity int, dailyRate models.Money, from, to models.Date) (models.Money, error) {
	if quantity < 1 {
		return 0, utils.Validation("quantity must be at least 1")
	}
	if tourPrice < 0 || dailyRate < 0 {
		return 0, utils.Validation("prices must not be negative")
	}
	days := availability.InclusiveDayCount(from, to)
	if days < 1 {
		return 0, utils.Validation("toDate must not be before fromDate", string(from), string(to))
	}

	tourPart, ok := mulMoney(tourPrice, int64(quantity))
	if !ok {
		return 0, utils.Validation("total price is too large")
	}
	dayPart, ok := mulMoney(dailyRate, int64(days))
	if !ok {
		return 0, utils.Validation("total price is too large")
	}
	if tourPart > math.MaxInt64-dayPart {
		return 0, utils.Validation("total price is too large")
	}
	return tourPart + dayPart, nil
}

// mulMoney multiplies two non-negative values, reporting overflow.
func mulMoney(m models.Money, n int64) (models.Money, bool) {
	if m == 0 || n == 0 {
		return 0, true
	}
	if int64(m) > math.MaxInt64/n {
		return 0, false
	}
	return models.Money(int64(m) * n), true
}
