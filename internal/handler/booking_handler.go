package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/parkspot/service-booking/internal/application"
	"github.com/parkspot/service-booking/internal/apperr"
	"github.com/parkspot/service-booking/internal/platform/response"
)

// BookingUseCases is the application surface the HTTP layer drives.
type BookingUseCases interface {
	Create(ctx context.Context, req application.CreateBookingRequest) application.CreateResult
	CheckOut(ctx context.Context, id uint, finishTime string) application.BookingResult
	Confirm(ctx context.Context, id uint) application.BookingResult
	GetOne(ctx context.Context, id uint) (*application.BookingDTO, error)
	GetAll(ctx context.Context) ([]application.BookingDTO, error)
	GetAllForUser(ctx context.Context, userID uint) ([]application.BookingDTO, error)
}

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service BookingUseCases
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service BookingUseCases) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r gin.IRouter) {
	bookings := r.Group("/api/v1/bookings")
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.POST("/:id/checkout", h.CheckOut)
		bookings.POST("/:id/confirm", h.Confirm)
	}
	r.GET("/api/v1/users/:userId/bookings", h.ListUserBookings)
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result := h.service.Create(c.Request.Context(), req)
	if !result.Success {
		c.JSON(response.StatusFor(apperr.KindOf(result.Err)), result)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ListBookings handles GET /api/v1/bookings.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	bookings, err := h.service.GetAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, bookings, len(bookings))
}

// ListUserBookings handles GET /api/v1/users/:userId/bookings.
func (h *BookingHandler) ListUserBookings(c *gin.Context) {
	userID, ok := parseID(c, "userId", "invalid user ID")
	if !ok {
		return
	}

	bookings, err := h.service.GetAllForUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, bookings, len(bookings))
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, ok := parseID(c, "id", "invalid booking ID")
	if !ok {
		return
	}

	result, err := h.service.GetOne(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CheckOut handles POST /api/v1/bookings/:id/checkout.
func (h *BookingHandler) CheckOut(c *gin.Context) {
	bookingID, ok := parseID(c, "id", "invalid booking ID")
	if !ok {
		return
	}

	var req application.CheckOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	writeBookingResult(c, h.service.CheckOut(c.Request.Context(), bookingID, req.FinishTime))
}

// Confirm handles POST /api/v1/bookings/:id/confirm.
func (h *BookingHandler) Confirm(c *gin.Context) {
	bookingID, ok := parseID(c, "id", "invalid booking ID")
	if !ok {
		return
	}

	writeBookingResult(c, h.service.Confirm(c.Request.Context(), bookingID))
}

// --- Helpers ---

func writeBookingResult(c *gin.Context, result application.BookingResult) {
	if !result.Success {
		c.JSON(response.StatusFor(apperr.KindOf(result.Err)), result)
		return
	}
	c.JSON(http.StatusOK, result)
}

func parseID(c *gin.Context, param, message string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, message)
		return 0, false
	}
	return uint(id), true
}
