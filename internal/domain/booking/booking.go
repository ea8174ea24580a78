package booking

import (
	"strconv"
	"strings"
	"time"

	"github.com/parkspot/service-booking/internal/apperr"
)

// Caller-facing messages for rejected lifecycle operations.
const (
	MsgBookingNotFound    = "Booking not found"
	MsgAlreadyFinished    = "Booking already finished"
	MsgNotCheckedOut      = "Booking not checked-out yet"
	MsgFinishBeforeStart  = "finish time must not be before start time"
	MsgFailedToReduceZone = "Failed to reduce parking spots"
	MsgConcurrentUpdate   = "Booking was modified concurrently"
)

// Booking is the aggregate root for a parking-space reservation.
type Booking struct {
	id         uint
	startTime  time.Time
	finishTime *time.Time
	status     BookingStatus
	plate      string
	zoneID     uint
	userID     uint
	amount     int64

	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a new Booking aggregate with status=active and amount=0.
// The identifier is assigned by the store when the booking is persisted.
func NewBooking(startTime time.Time, plate string, zoneID, userID uint) (*Booking, error) {
	plate = strings.TrimSpace(plate)
	if startTime.IsZero() {
		return nil, apperr.NewValidationError("start time is required")
	}
	if plate == "" {
		return nil, apperr.NewValidationError("plate is required")
	}
	if zoneID == 0 {
		return nil, apperr.NewValidationError("zone ID is required")
	}
	if userID == 0 {
		return nil, apperr.NewValidationError("user ID is required")
	}

	now := time.Now().UTC()
	return &Booking{
		startTime: startTime.UTC(),
		status:    StatusActive,
		plate:     plate,
		zoneID:    zoneID,
		userID:    userID,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uint,
	startTime time.Time,
	finishTime *time.Time,
	status BookingStatus,
	plate string,
	zoneID uint,
	userID uint,
	amount int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:         id,
		startTime:  startTime,
		finishTime: finishTime,
		status:     status,
		plate:      plate,
		zoneID:     zoneID,
		userID:     userID,
		amount:     amount,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// --- Getters ---

// ID returns the store-assigned identifier, zero until persisted.
func (b *Booking) ID() uint { return b.id }

// IDString returns the identifier formatted for logs and messages.
func (b *Booking) IDString() string { return strconv.FormatUint(uint64(b.id), 10) }

// StartTime returns the normalized start instant.
func (b *Booking) StartTime() time.Time { return b.startTime }

// FinishTime returns the checkout instant, or nil while active.
func (b *Booking) FinishTime() *time.Time { return b.finishTime }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// Plate returns the vehicle plate.
func (b *Booking) Plate() string { return b.plate }

// ZoneID returns the inventory zone reference.
func (b *Booking) ZoneID() uint { return b.zoneID }

// UserID returns the directory user reference.
func (b *Booking) UserID() uint { return b.userID }

// Amount returns the amount owed, zero until checkout.
func (b *Booking) Amount() int64 { return b.amount }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// AssignID records the identifier the store generated on insert.
func (b *Booking) AssignID(id uint) {
	b.id = id
}

// CheckOutAllowed rejects a checkout on a finished booking.
func (b *Booking) CheckOutAllowed() error {
	if b.status.IsTerminal() || !b.status.CanTransitionTo(StatusCheckedOut) {
		return apperr.NewInvalidTransitionError(MsgAlreadyFinished, b.status.String(), StatusCheckedOut.String())
	}
	return nil
}

// CheckOut records the finish time and bills the elapsed time. Finished
// bookings are rejected; checked-out bookings are re-billed.
func (b *Booking) CheckOut(finishTime time.Time, pricing PricingStrategy) error {
	if err := b.CheckOutAllowed(); err != nil {
		return err
	}
	finish := finishTime.UTC()
	if finish.Before(b.startTime) {
		return apperr.NewValidationError(MsgFinishBeforeStart)
	}

	amount, err := pricing.Calculate(b.startTime, finish)
	if err != nil {
		return err
	}

	b.finishTime = &finish
	b.amount = amount
	b.status = StatusCheckedOut
	b.updatedAt = time.Now().UTC()
	return nil
}

// Confirm moves a checked-out booking to finished. Any other status is rejected
// with the same error, including an already finished booking.
func (b *Booking) Confirm() error {
	if b.status != StatusCheckedOut {
		return apperr.NewInvalidTransitionError(MsgNotCheckedOut, b.status.String(), StatusFinished.String())
	}
	b.status = StatusFinished
	b.updatedAt = time.Now().UTC()
	return nil
}
