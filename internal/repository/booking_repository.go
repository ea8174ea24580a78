package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/parkspot/service-booking/internal/apperr"
	bookingDomain "github.com/parkspot/service-booking/internal/domain/booking"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID         uint       `gorm:"primaryKey;autoIncrement"`
	StartTime  time.Time  `gorm:"not null"`
	FinishTime *time.Time `gorm:""`
	Status     string     `gorm:"not null;size:20;index;default:'active'"`
	Plate      string     `gorm:"not null;size:20"`
	ZoneID     uint       `gorm:"not null;index"`
	UserID     uint       `gorm:"not null;index"`
	Amount     int64      `gorm:"not null;default:0"`
	CreatedAt  time.Time  `gorm:"not null"`
	UpdatedAt  time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uint) (*bookingDomain.Booking, error) {
	return findByID(r.db.WithContext(ctx), id)
}

// FindAll retrieves every booking, oldest first.
func (r *GormBookingRepository) FindAll(ctx context.Context) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return toDomainBookings(models)
}

// FindByUserID retrieves the bookings of one user, oldest first.
func (r *GormBookingRepository) FindByUserID(ctx context.Context, userID uint) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find user bookings: %w", err)
	}
	return toDomainBookings(models)
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// WithinTransaction runs fn in a database transaction. gorm commits when fn
// returns nil and rolls back when it returns an error or panics.
func (r *GormBookingRepository) WithinTransaction(ctx context.Context, fn func(tx bookingDomain.BookingTx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormBookingTx{db: tx})
	})
}

// gormBookingTx binds the transactional writes to one *gorm.DB transaction handle.
type gormBookingTx struct {
	db *gorm.DB
}

// FindByID locks the row until the transaction ends, so concurrent sagas on
// one booking run one after the other.
func (t *gormBookingTx) FindByID(ctx context.Context, id uint) (*bookingDomain.Booking, error) {
	return findByID(t.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (t *gormBookingTx) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	if err := t.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	bk.AssignID(model.ID)
	return nil
}

// Update writes bk only while the stored row still has status from.
func (t *gormBookingTx) Update(ctx context.Context, bk *bookingDomain.Booking, from bookingDomain.BookingStatus) error {
	model := toBookingModel(bk)
	result := t.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND status = ?", model.ID, string(from)).
		Updates(map[string]interface{}{
			"finish_time": model.FinishTime,
			"status":      model.Status,
			"amount":      model.Amount,
			"updated_at":  model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NewConflictError(bookingDomain.MsgConcurrentUpdate)
	}
	return nil
}

// --- Conversion Helpers ---

func findByID(db *gorm.DB, id uint) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := db.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFoundError("Booking", strconv.FormatUint(uint64(id), 10))
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
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

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	var finish *time.Time
	if m.FinishTime != nil {
		f := m.FinishTime.UTC()
		finish = &f
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.StartTime.UTC(),
		finish,
		status,
		m.Plate,
		m.ZoneID,
		m.UserID,
		m.Amount,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bk, err := toDomainBooking(&models[i])
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}
