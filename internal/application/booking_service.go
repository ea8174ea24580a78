package application

import (
	"context"
	"fmt"
	"time"

	"github.com/parkspot/service-booking/internal/apperr"
	bookingDomain "github.com/parkspot/service-booking/internal/domain/booking"
	"github.com/parkspot/service-booking/internal/platform/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Caller-facing messages for failed remote steps.
const (
	MsgNoAvailableSpots   = "No available parking spots"
	MsgNotificationFailed = "Failed to send notification"
	MsgTokenIssueFailed   = "Failed to issue access token"
	MsgCodeEncodeFailed   = "Failed to encode checkout code"
	MsgCreateFailed       = "Failed to create booking"
	MsgCheckOutFailed     = "Failed to check out booking"
	MsgConfirmFailed      = "Failed to confirm booking"
	MsgLoadFailed         = "Failed to load booking"
	MsgListFailed         = "Failed to list bookings"
	MsgStatsFailed        = "Failed to get booking stats"
)

const (
	// es-CL rendering used in confirmation emails.
	notificationTimeLayout = "02-01-2006, 15:04:05"

	compensationOutcomeOK    = "success"
	compensationOutcomeError = "failure"
)

var tracer = otel.Tracer("github.com/parkspot/service-booking/internal/application")

// Collaborators groups the remote capabilities the lifecycle engine depends on.
type Collaborators struct {
	Inventory bookingDomain.InventoryService
	Directory bookingDomain.DirectoryService
	Notifier  bookingDomain.Notifier
	Tokens    bookingDomain.TokenIssuer
	Codes     bookingDomain.CodeEncoder
}

// Options holds the business settings of the lifecycle engine.
type Options struct {
	// CheckoutURL is the base of the link embedded in the confirmation.
	CheckoutURL string
	// Location is the zone the confirmation renders the start time in. Defaults to UTC.
	Location *time.Location
	Metrics  *metrics.SagaMetrics
}

// BookingService is the application service orchestrating the booking sagas
// and the enriched read paths.
type BookingService struct {
	repo      bookingDomain.BookingRepository
	pricing   bookingDomain.PricingStrategy
	inventory bookingDomain.InventoryService
	directory bookingDomain.DirectoryService
	notifier  bookingDomain.Notifier
	tokens    bookingDomain.TokenIssuer
	codes     bookingDomain.CodeEncoder
	publisher EventPublisher
	metrics   *metrics.SagaMetrics
	logger    *zap.Logger

	checkoutURL string
	location    *time.Location
}

// NewBookingService creates a new BookingService. publisher may be nil, in
// which case no booking events are emitted.
func NewBookingService(
	repo bookingDomain.BookingRepository,
	pricing bookingDomain.PricingStrategy,
	collaborators Collaborators,
	publisher EventPublisher,
	opts Options,
	logger *zap.Logger,
) *BookingService {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	return &BookingService{
		repo:        repo,
		pricing:     pricing,
		inventory:   collaborators.Inventory,
		directory:   collaborators.Directory,
		notifier:    collaborators.Notifier,
		tokens:      collaborators.Tokens,
		codes:       collaborators.Codes,
		publisher:   publisher,
		metrics:     opts.Metrics,
		logger:      logger,
		checkoutURL: opts.CheckoutURL,
		location:    loc,
	}
}

// createStep names the Create saga step that was running when it failed.
type createStep int

const (
	stepReserve createStep = iota
	stepPersist
	stepLookupZone
	stepLookupUser
	stepIssueToken
	stepEncodeCode
	stepNotify
)

func (st createStep) String() string {
	switch st {
	case stepReserve:
		return "reserve"
	case stepPersist:
		return "persist"
	case stepLookupZone:
		return "lookup_zone"
	case stepLookupUser:
		return "lookup_user"
	case stepIssueToken:
		return "issue_token"
	case stepEncodeCode:
		return "encode_code"
	case stepNotify:
		return "notify"
	}
	return fmt.Sprintf("step(%d)", int(st))
}

// compensates reports whether a failure at this step must return the reserved
// spot. Nothing was reserved when the reservation itself failed, and a zone or
// user that does not exist skips the release as well.
func (st createStep) compensates(err error) bool {
	switch st {
	case stepReserve:
		return false
	case stepLookupZone, stepLookupUser:
		return !apperr.Is(err, apperr.KindNotFound)
	case stepPersist, stepIssueToken, stepEncodeCode, stepNotify:
		return true
	}
	return true
}

// Create reserves a spot, records the booking and notifies the driver. The
// booking becomes visible only if every step succeeds.
func (s *BookingService) Create(ctx context.Context, req CreateBookingRequest) CreateResult {
	ctx, span := tracer.Start(ctx, "booking.Create", trace.WithAttributes(
		attribute.Int64("booking.zone_id", int64(req.ZoneID)),
		attribute.Int64("booking.user_id", int64(req.UserID)),
	))
	defer span.End()
	started := time.Now()

	startTime, err := bookingDomain.NormalizeTimestamp(req.StartTime)
	if err != nil {
		return s.createFailed(span, started, err)
	}
	bk, err := bookingDomain.NewBooking(startTime, req.Plate, req.ZoneID, req.UserID)
	if err != nil {
		return s.createFailed(span, started, err)
	}

	var step createStep
	err = s.inTransaction(ctx, func(tx bookingDomain.BookingTx) error {
		return s.runCreate(ctx, tx, bk, &step)
	})
	if err != nil {
		err = apperr.Wrap(err, MsgCreateFailed)
		s.logger.Warn("create booking failed",
			zap.String("step", step.String()),
			zap.Uint("zone_id", bk.ZoneID()),
			zap.Error(err),
		)
		if step.compensates(err) {
			s.releaseReservation(ctx, bk.ZoneID(), step)
		}
		return s.createFailed(span, started, err)
	}

	s.logger.Info("booking created",
		zap.Uint("booking_id", bk.ID()),
		zap.Uint("zone_id", bk.ZoneID()),
		zap.Uint("user_id", bk.UserID()),
	)
	s.publishEvent(ctx, TopicBookingEvents, EventBookingCreated, bk.IDString(), BookingCreatedEvent{
		BookingID:  bk.ID(),
		ZoneID:     bk.ZoneID(),
		UserID:     bk.UserID(),
		Plate:      bk.Plate(),
		StartTime:  bk.StartTime(),
		OccurredAt: time.Now().UTC(),
	})
	span.SetAttributes(attribute.Int64("booking.id", int64(bk.ID())))
	s.metrics.ObserveSaga("create", "success", time.Since(started))
	return CreateResult{Success: true}
}

// runCreate performs the ordered steps of the Create saga inside tx, recording
// the current step so the caller can decide on compensation.
func (s *BookingService) runCreate(ctx context.Context, tx bookingDomain.BookingTx, bk *bookingDomain.Booking, step *createStep) error {
	*step = stepReserve
	reserved, err := s.inventory.Reserve(ctx, bk.ZoneID())
	if err != nil {
		return err
	}
	if !reserved.Success {
		return apperr.NewRemoteRejectionError(orDefault(reserved.Message, MsgNoAvailableSpots))
	}

	*step = stepPersist
	if err := tx.Save(ctx, bk); err != nil {
		return err
	}

	*step = stepLookupZone
	zone, err := s.inventory.GetZone(ctx, bk.ZoneID())
	if err != nil {
		return err
	}

	*step = stepLookupUser
	user, err := s.directory.GetUser(ctx, bk.UserID())
	if err != nil {
		return err
	}

	*step = stepIssueToken
	token, err := s.tokens.Issue(bookingDomain.AccessClaims{
		BookingID: bk.ID(),
		StartTime: bookingDomain.FormatTimestamp(bk.StartTime()),
		ZoneName:  zone.Name,
		UserID:    bk.UserID(),
		Plate:     bk.Plate(),
		UserName:  user.Name,
	})
	if err != nil {
		return apperr.Wrap(err, MsgTokenIssueFailed)
	}
	checkoutURL := s.checkoutURL + "?token=" + token

	*step = stepEncodeCode
	code, err := s.codes.Encode(checkoutURL)
	if err != nil {
		return apperr.Wrap(err, MsgCodeEncodeFailed)
	}

	*step = stepNotify
	sent, err := s.notifier.Send(ctx, bookingDomain.Notification{
		Name:        user.Name,
		Email:       user.Email,
		QRCode:      code,
		CheckoutURL: checkoutURL,
		StartTime:   bk.StartTime().In(s.location).Format(notificationTimeLayout),
		ZoneName:    zone.Name,
		Plate:       bk.Plate(),
	})
	if err != nil {
		return err
	}
	if !sent.Success {
		return apperr.NewRemoteRejectionError(MsgNotificationFailed)
	}
	return nil
}

// releaseReservation returns a reserved spot after a failed Create. Its outcome
// is logged and counted but never changes the saga result.
func (s *BookingService) releaseReservation(ctx context.Context, zoneID uint, failedAt createStep) {
	res, err := s.inventory.Release(context.WithoutCancel(ctx), zoneID)
	switch {
	case err != nil:
		s.metrics.ObserveCompensation(compensationOutcomeError)
		s.logger.Error("compensating release failed",
			zap.Uint("zone_id", zoneID),
			zap.String("failed_step", failedAt.String()),
			zap.Error(err),
		)
	case !res.Success:
		s.metrics.ObserveCompensation(compensationOutcomeError)
		s.logger.Error("compensating release rejected",
			zap.Uint("zone_id", zoneID),
			zap.String("failed_step", failedAt.String()),
			zap.String("reason", res.Message),
		)
	default:
		s.metrics.ObserveCompensation(compensationOutcomeOK)
		s.logger.Info("reservation released",
			zap.Uint("zone_id", zoneID),
			zap.String("failed_step", failedAt.String()),
		)
	}
}

func (s *BookingService) createFailed(span trace.Span, started time.Time, err error) CreateResult {
	s.recordFailure(span, "create", started, err)
	return CreateResult{Success: false, Message: apperr.MessageOf(err), Err: err}
}

// CheckOut records the finish time of a stay and bills it.
func (s *BookingService) CheckOut(ctx context.Context, id uint, finishTime string) BookingResult {
	ctx, span := tracer.Start(ctx, "booking.CheckOut", trace.WithAttributes(attribute.Int64("booking.id", int64(id))))
	defer span.End()
	started := time.Now()

	var updated *bookingDomain.Booking
	err := s.inTransaction(ctx, func(tx bookingDomain.BookingTx) error {
		bk, err := tx.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := bk.CheckOutAllowed(); err != nil {
			return err
		}
		finish, err := bookingDomain.NormalizeTimestamp(finishTime)
		if err != nil {
			return err
		}

		from := bk.Status()
		if err := bk.CheckOut(finish, s.pricing); err != nil {
			return err
		}
		if err := tx.Update(ctx, bk, from); err != nil {
			return err
		}
		updated = bk
		return nil
	})
	if err != nil {
		return s.bookingFailed(span, "checkout", started, apperr.Wrap(err, MsgCheckOutFailed))
	}

	s.logger.Info("booking checked out",
		zap.Uint("booking_id", updated.ID()),
		zap.Int64("amount", updated.Amount()),
	)
	s.publishEvent(ctx, TopicBookingEvents, EventBookingCheckedOut, updated.IDString(), BookingCheckedOutEvent{
		BookingID:  updated.ID(),
		ZoneID:     updated.ZoneID(),
		UserID:     updated.UserID(),
		FinishTime: *updated.FinishTime(),
		Amount:     updated.Amount(),
		OccurredAt: time.Now().UTC(),
	})
	s.metrics.ObserveSaga("checkout", "success", time.Since(started))
	dto := s.withZone(ctx, updated)
	return BookingResult{Success: true, Booking: &dto}
}

// Confirm finalizes the zone's capacity for a checked-out booking and marks it finished.
func (s *BookingService) Confirm(ctx context.Context, id uint) BookingResult {
	ctx, span := tracer.Start(ctx, "booking.Confirm", trace.WithAttributes(attribute.Int64("booking.id", int64(id))))
	defer span.End()
	started := time.Now()

	var updated *bookingDomain.Booking
	err := s.inTransaction(ctx, func(tx bookingDomain.BookingTx) error {
		bk, err := tx.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := bk.Confirm(); err != nil {
			return err
		}

		res, err := s.inventory.Finalize(ctx, bk.ZoneID())
		if err != nil {
			return err
		}
		if !res.Success {
			return apperr.NewRemoteRejectionError(bookingDomain.MsgFailedToReduceZone)
		}

		if err := tx.Update(ctx, bk, bookingDomain.StatusCheckedOut); err != nil {
			return err
		}
		updated = bk
		return nil
	})
	if err != nil {
		return s.bookingFailed(span, "confirm", started, apperr.Wrap(err, MsgConfirmFailed))
	}

	s.logger.Info("booking finished", zap.Uint("booking_id", updated.ID()))
	s.publishEvent(ctx, TopicBookingEvents, EventBookingFinished, updated.IDString(), BookingFinishedEvent{
		BookingID:  updated.ID(),
		ZoneID:     updated.ZoneID(),
		Amount:     updated.Amount(),
		OccurredAt: time.Now().UTC(),
	})
	s.metrics.ObserveSaga("confirm", "success", time.Since(started))
	dto := s.withZone(ctx, updated)
	return BookingResult{Success: true, Booking: &dto}
}

func (s *BookingService) bookingFailed(span trace.Span, operation string, started time.Time, err error) BookingResult {
	s.recordFailure(span, operation, started, err)
	return BookingResult{Success: false, Message: apperr.MessageOf(err), Err: err}
}

func (s *BookingService) recordFailure(span trace.Span, operation string, started time.Time, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, apperr.MessageOf(err))
	s.metrics.ObserveSaga(operation, apperr.KindOf(err).String(), time.Since(started))
}

// inTransaction runs fn in a store transaction and turns a panic inside it
// into an unexpected error. The store has already rolled back by then.
func (s *BookingService) inTransaction(ctx context.Context, fn func(tx bookingDomain.BookingTx) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic inside booking transaction", zap.Any("panic", r))
			err = apperr.Wrap(fmt.Errorf("panic: %v", r), "Unexpected error")
		}
	}()
	return s.repo.WithinTransaction(ctx, fn)
}

func orDefault(message, fallback string) string {
	if message == "" {
		return fallback
	}
	return message
}
