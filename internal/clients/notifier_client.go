package clients

import (
	"context"
	"time"

	"github.com/parkspot/service-booking/internal/domain/booking"
	"google.golang.org/grpc"
)

const methodSendEmail = "/notifications.EmailsService/sendEmailInformation"

// NotifierClient talks to the notifications service.
type NotifierClient struct {
	rpc rpc
}

// NewNotifierClient creates a notifier client over conn.
func NewNotifierClient(conn grpc.ClientConnInterface, timeout time.Duration) *NotifierClient {
	return &NotifierClient{rpc: rpc{conn: conn, service: "notifications", timeout: timeout}}
}

// Send dispatches a booking confirmation.
func (c *NotifierClient) Send(ctx context.Context, n booking.Notification) (booking.NotificationResult, error) {
	var resp spotResponse
	if err := c.rpc.invoke(ctx, methodSendEmail, &n, &resp); err != nil {
		return booking.NotificationResult{}, c.rpc.classify(err, "Recipient", n.Email)
	}
	return booking.NotificationResult{Success: resp.Success, Message: resp.Message}, nil
}
