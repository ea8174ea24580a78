package booking

import (
	"fmt"
	"time"
)

// BillingBlock is the unit of time a parking stay is billed in.
const BillingBlock = 30 * time.Minute

// PricingStrategy defines the interface for calculating the amount owed for a stay.
type PricingStrategy interface {
	// Calculate returns the amount owed for a stay between start and finish.
	Calculate(start, finish time.Time) (int64, error)
}

// HalfHourPricingStrategy bills every started half hour at a flat rate.
type HalfHourPricingStrategy struct {
	ratePerBlock int64
}

// NewHalfHourPricingStrategy creates a strategy charging ratePerBlock per half hour.
func NewHalfHourPricingStrategy(ratePerBlock int64) *HalfHourPricingStrategy {
	return &HalfHourPricingStrategy{ratePerBlock: ratePerBlock}
}

// Calculate computes the amount owed.
//
// Pricing formula:
//   - elapsed whole minutes between start and finish (partial minutes dropped)
//   - billable blocks = ceil(minutes / 30)
//   - amount = blocks * rate
func (s *HalfHourPricingStrategy) Calculate(start, finish time.Time) (int64, error) {
	if finish.Before(start) {
		return 0, fmt.Errorf("finish %s is before start %s", finish, start)
	}
	return BillableBlocks(start, finish) * s.ratePerBlock, nil
}

// BillableBlocks returns the number of started half-hour blocks between start
// and finish. A stay shorter than a minute still bills one block.
func BillableBlocks(start, finish time.Time) int64 {
	if !finish.After(start) {
		return 0
	}
	minutes := int64(finish.Sub(start) / time.Minute)
	if minutes == 0 {
		return 1
	}
	blockMinutes := int64(BillingBlock / time.Minute)
	return (minutes + blockMinutes - 1) / blockMinutes
}
