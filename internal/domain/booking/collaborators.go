package booking

import "context"

// Zone is the inventory service's view of a parking zone.
type Zone struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	TotalSpots    int    `json:"totalSpots"`
	OccupiedSpots int    `json:"occupiedSpots"`
}

// User is the directory service's view of a user.
type User struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SpotResult is the answer to a capacity-changing inventory call.
type SpotResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// InventoryService reserves and releases capacity in parking zones.
// A nil error with Success=false is an explicit rejection.
type InventoryService interface {
	// Reserve takes one spot in the zone.
	Reserve(ctx context.Context, zoneID uint) (SpotResult, error)

	// Release returns a spot taken by Reserve that was never used.
	Release(ctx context.Context, zoneID uint) (SpotResult, error)

	// Finalize reduces the zone's reserved count once a stay is complete.
	Finalize(ctx context.Context, zoneID uint) (SpotResult, error)

	// GetZone fetches one zone. A missing zone is reported as a not-found error.
	GetZone(ctx context.Context, zoneID uint) (*Zone, error)

	// GetZones fetches several zones in one call. Unknown ids are omitted.
	GetZones(ctx context.Context, zoneIDs []uint) ([]Zone, error)
}

// DirectoryService looks users up.
type DirectoryService interface {
	// GetUser fetches one user. A missing user is reported as a not-found error.
	GetUser(ctx context.Context, userID uint) (*User, error)
}

// Notification is the booking confirmation sent to the driver.
type Notification struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	QRCode      string `json:"qrCode"`
	CheckoutURL string `json:"checkoutUrl"`
	StartTime   string `json:"dateHourStart"`
	ZoneName    string `json:"zoneName"`
	Plate       string `json:"patente"`
}

// NotificationResult is the notifier's answer.
type NotificationResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Notifier dispatches booking confirmations.
type Notifier interface {
	Send(ctx context.Context, n Notification) (NotificationResult, error)
}

// AccessClaims are embedded in the token of a booking's checkout link.
type AccessClaims struct {
	BookingID uint   `json:"bookingId"`
	StartTime string `json:"dateHourStart"`
	ZoneName  string `json:"nameZone"`
	UserID    uint   `json:"idUser"`
	Plate     string `json:"patente"`
	UserName  string `json:"userName"`
}

// TokenIssuer signs access claims.
type TokenIssuer interface {
	Issue(claims AccessClaims) (string, error)
}

// CodeEncoder turns a URL into a scannable visual code.
type CodeEncoder interface {
	Encode(url string) (string, error)
}
