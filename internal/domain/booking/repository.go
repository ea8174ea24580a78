package booking

import "context"

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its identifier.
	FindByID(ctx context.Context, id uint) (*Booking, error)

	// FindAll retrieves every booking.
	FindAll(ctx context.Context) ([]*Booking, error)

	// FindByUserID retrieves the bookings of one user.
	FindByUserID(ctx context.Context, userID uint) ([]*Booking, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// WithinTransaction runs fn inside a store transaction. The transaction
	// commits when fn returns nil and rolls back on error or panic; either way
	// it is released before WithinTransaction returns.
	WithinTransaction(ctx context.Context, fn func(tx BookingTx) error) error
}

// BookingTx is the set of writes available inside a store transaction.
type BookingTx interface {
	// FindByID retrieves a booking through the transaction and holds a row
	// lock on it until the transaction ends.
	FindByID(ctx context.Context, id uint) (*Booking, error)

	// Save inserts a new booking and assigns its identifier.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking whose stored status is
	// still from. Any other stored status yields a conflict error.
	Update(ctx context.Context, booking *Booking, from BookingStatus) error
}
