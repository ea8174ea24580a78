package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/parkspot/service-booking/internal/application"
	"github.com/parkspot/service-booking/internal/platform/response"
)

// AdminUseCases is the admin surface of the booking service.
type AdminUseCases interface {
	ListAllBookings(ctx context.Context) ([]application.BookingDTO, error)
	GetBookingStats(ctx context.Context) (*application.BookingStatsDTO, error)
}

// AdminBookingHandler handles admin HTTP requests for booking management.
type AdminBookingHandler struct {
	service AdminUseCases
}

// NewAdminBookingHandler creates a new AdminBookingHandler.
func NewAdminBookingHandler(service AdminUseCases) *AdminBookingHandler {
	return &AdminBookingHandler{service: service}
}

// RegisterRoutes registers admin booking routes.
func (h *AdminBookingHandler) RegisterRoutes(r gin.IRouter) {
	admin := r.Group("/api/v1/admin")
	{
		admin.GET("/bookings", h.ListBookings)
		admin.GET("/stats/bookings", h.BookingStats)
	}
}

// ListBookings handles GET /api/v1/admin/bookings.
func (h *AdminBookingHandler) ListBookings(c *gin.Context) {
	bookings, err := h.service.ListAllBookings(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, bookings, len(bookings))
}

// BookingStats handles GET /api/v1/admin/stats/bookings.
func (h *AdminBookingHandler) BookingStats(c *gin.Context) {
	stats, err := h.service.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}
