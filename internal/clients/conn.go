package clients

import (
	"context"
	"fmt"
	"time"

	"github.com/parkspot/service-booking/internal/apperr"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// Dial opens a lazily connecting client for addr. Extra options are appended
// after the defaults.
func Dial(addr string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	defaults := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
	}
	conn, err := grpc.NewClient(addr, append(defaults, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create grpc client for %s: %w", addr, err)
	}
	return conn, nil
}

// rpc is the shared call path: one method invocation bounded by timeout.
type rpc struct {
	conn    grpc.ClientConnInterface
	service string
	timeout time.Duration
}

func (r rpc) invoke(ctx context.Context, method string, req, resp interface{}) error {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	return r.conn.Invoke(ctx, method, req, resp, grpc.CallContentSubtype(CodecName))
}

// classify turns a transport error into the service's error taxonomy. A
// NotFound status becomes a not-found error for entity; everything else means
// the collaborator was unavailable.
func (r rpc) classify(err error, entity, id string) error {
	if status.Code(err) == codes.NotFound {
		return apperr.NewNotFoundError(entity, id)
	}
	return apperr.NewRemoteUnavailableError(r.service, err)
}
