package application

import (
	"context"

	"github.com/parkspot/service-booking/internal/apperr"
	bookingDomain "github.com/parkspot/service-booking/internal/domain/booking"
	"go.uber.org/zap"
)

// GetOne retrieves a single booking with its zone attached.
func (s *BookingService) GetOne(ctx context.Context, id uint) (*BookingDTO, error) {
	ctx, span := tracer.Start(ctx, "booking.GetOne")
	defer span.End()

	bk, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(err, MsgLoadFailed)
	}
	dto := s.withZone(ctx, bk)
	return &dto, nil
}

// GetAll retrieves every booking with zones attached.
func (s *BookingService) GetAll(ctx context.Context) ([]BookingDTO, error) {
	ctx, span := tracer.Start(ctx, "booking.GetAll")
	defer span.End()

	bookings, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperr.Wrap(err, MsgListFailed)
	}
	return s.withZones(ctx, bookings), nil
}

// GetAllForUser retrieves the bookings of one user with zones attached.
func (s *BookingService) GetAllForUser(ctx context.Context, userID uint) ([]BookingDTO, error) {
	ctx, span := tracer.Start(ctx, "booking.GetAllForUser")
	defer span.End()

	bookings, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(err, MsgListFailed)
	}
	return s.withZones(ctx, bookings), nil
}

// --- Admin methods ---

// ListAllBookings returns every booking (admin).
func (s *BookingService) ListAllBookings(ctx context.Context) ([]BookingDTO, error) {
	return s.GetAll(ctx)
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, apperr.Wrap(err, MsgStatsFailed)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      counts,
	}, nil
}

// --- Enrichment ---

// withZone attaches the booking's zone. A failed lookup leaves Zone empty.
func (s *BookingService) withZone(ctx context.Context, bk *bookingDomain.Booking) BookingDTO {
	dto := toBookingDTO(bk)
	zone, err := s.inventory.GetZone(ctx, bk.ZoneID())
	if err != nil {
		s.logger.Warn("zone enrichment unavailable",
			zap.Uint("booking_id", bk.ID()),
			zap.Uint("zone_id", bk.ZoneID()),
			zap.Error(err),
		)
		return dto
	}
	dto.Zone = zone
	return dto
}

// withZones attaches zones to a set of bookings using a single batch lookup
// over the distinct zone ids.
func (s *BookingService) withZones(ctx context.Context, bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	if len(bookings) == 0 {
		return dtos
	}

	ids := distinctZoneIDs(bookings)
	lookup := make(map[uint]bookingDomain.Zone, len(ids))
	zones, err := s.inventory.GetZones(ctx, ids)
	if err != nil {
		s.logger.Warn("zone enrichment unavailable",
			zap.Int("zone_count", len(ids)),
			zap.Error(err),
		)
	}
	for _, z := range zones {
		lookup[z.ID] = z
	}

	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
		if z, ok := lookup[bk.ZoneID()]; ok {
			dtos[i].Zone = &z
		}
	}
	return dtos
}

func distinctZoneIDs(bookings []*bookingDomain.Booking) []uint {
	seen := make(map[uint]struct{}, len(bookings))
	ids := make([]uint, 0, len(bookings))
	for _, bk := range bookings {
		if _, ok := seen[bk.ZoneID()]; ok {
			continue
		}
		seen[bk.ZoneID()] = struct{}{}
		ids = append(ids, bk.ZoneID())
	}
	return ids
}
