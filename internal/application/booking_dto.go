package application

import (
	"time"

	bookingDomain "github.com/parkspot/service-booking/internal/domain/booking"
)

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	StartTime string `json:"start_time" binding:"required"`
	Plate     string `json:"plate" binding:"required"`
	ZoneID    uint   `json:"zone_id" binding:"required"`
	UserID    uint   `json:"user_id" binding:"required"`
}

// CheckOutRequest holds the finish time of a stay.
type CheckOutRequest struct {
	FinishTime string `json:"finish_time" binding:"required"`
}

// CreateResult is the outcome of a Create saga.
type CreateResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`

	Err error `json:"-"`
}

// BookingResult is the outcome of a CheckOut or Confirm saga.
type BookingResult struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Booking *BookingDTO `json:"booking,omitempty"`

	// Err carries the classified failure for callers that map it to a transport status.
	Err error `json:"-"`
}

// BookingDTO is the response representation of a booking. Zone is attached at
// read time and is absent when the inventory service could not resolve it.
type BookingDTO struct {
	ID         uint                `json:"id"`
	StartTime  time.Time           `json:"start_time"`
	FinishTime *time.Time          `json:"finish_time,omitempty"`
	Status     string              `json:"status"`
	Plate      string              `json:"plate"`
	ZoneID     uint                `json:"zone_id"`
	UserID     uint                `json:"user_id"`
	Amount     int64               `json:"amount"`
	Zone       *bookingDomain.Zone `json:"zone,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:         bk.ID(),
		StartTime:  bk.StartTime(),
		FinishTime: bk.FinishTime(),
		Status:     string(bk.Status()),
		Plate:      bk.Plate(),
		ZoneID:     bk.ZoneID(),
		UserID:     bk.UserID(),
		Amount:     bk.Amount(),
		CreatedAt:  bk.CreatedAt(),
		UpdatedAt:  bk.UpdatedAt(),
	}
}
