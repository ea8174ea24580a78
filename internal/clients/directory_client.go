package clients

import (
	"context"
	"strconv"
	"time"

	"github.com/parkspot/service-booking/internal/domain/booking"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const methodGetUser = "/user.UserService/GetUser"

var notFound = status.Error(codes.NotFound, "not found")

type getUserRequest struct {
	ID uint `json:"id"`
}

type userMessage struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type getUserResponse struct {
	Users []userMessage `json:"users"`
}

// DirectoryClient talks to the users service.
type DirectoryClient struct {
	rpc rpc
}

// NewDirectoryClient creates a directory client over conn.
func NewDirectoryClient(conn grpc.ClientConnInterface, timeout time.Duration) *DirectoryClient {
	return &DirectoryClient{rpc: rpc{conn: conn, service: "directory", timeout: timeout}}
}

// GetUser fetches one user. An empty result is reported as not found.
func (c *DirectoryClient) GetUser(ctx context.Context, userID uint) (*booking.User, error) {
	id := strconv.FormatUint(uint64(userID), 10)
	var resp getUserResponse
	if err := c.rpc.invoke(ctx, methodGetUser, &getUserRequest{ID: userID}, &resp); err != nil {
		return nil, c.rpc.classify(err, "User", id)
	}
	if len(resp.Users) == 0 {
		return nil, c.rpc.classify(notFound, "User", id)
	}
	u := resp.Users[0]
	return &booking.User{ID: u.ID, Name: u.Name, Email: u.Email}, nil
}
