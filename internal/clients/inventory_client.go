package clients

import (
	"context"
	"strconv"
	"time"

	"github.com/parkspot/service-booking/internal/domain/booking"
	"google.golang.org/grpc"
)

const (
	methodReserveSpot  = "/zones.ZonesService/updateAvailableSpots"
	methodReleaseSpot  = "/zones.ZonesService/releaseReservedSpots"
	methodFinalizeSpot = "/zones.ZonesService/reduceReservedSpots"
	methodFindZone     = "/zones.ZonesService/findOne"
	methodFindZones    = "/zones.ZonesService/findMultiple"
)

type spotRequest struct {
	ZoneID uint `json:"zoneId"`
}

type spotResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type findZoneRequest struct {
	ID uint `json:"id"`
}

type findZonesRequest struct {
	IDs []uint `json:"ids"`
}

type zoneMessage struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	TotalSpots    int    `json:"cantEstacionamientosTotales"`
	OccupiedSpots int    `json:"cantEstacionamientosOcupados"`
}

type zonesResponse struct {
	Zones []zoneMessage `json:"zones"`
}

func (z zoneMessage) toDomain() booking.Zone {
	return booking.Zone{
		ID:            z.ID,
		Name:          z.Name,
		TotalSpots:    z.TotalSpots,
		OccupiedSpots: z.OccupiedSpots,
	}
}

// InventoryClient talks to the zones service.
type InventoryClient struct {
	rpc rpc
}

// NewInventoryClient creates an inventory client over conn.
func NewInventoryClient(conn grpc.ClientConnInterface, timeout time.Duration) *InventoryClient {
	return &InventoryClient{rpc: rpc{conn: conn, service: "inventory", timeout: timeout}}
}

// Reserve takes one spot in the zone.
func (c *InventoryClient) Reserve(ctx context.Context, zoneID uint) (booking.SpotResult, error) {
	return c.spotCall(ctx, methodReserveSpot, zoneID)
}

// Release gives back a spot taken by Reserve.
func (c *InventoryClient) Release(ctx context.Context, zoneID uint) (booking.SpotResult, error) {
	return c.spotCall(ctx, methodReleaseSpot, zoneID)
}

// Finalize reduces the zone's reserved count.
func (c *InventoryClient) Finalize(ctx context.Context, zoneID uint) (booking.SpotResult, error) {
	return c.spotCall(ctx, methodFinalizeSpot, zoneID)
}

func (c *InventoryClient) spotCall(ctx context.Context, method string, zoneID uint) (booking.SpotResult, error) {
	var resp spotResponse
	if err := c.rpc.invoke(ctx, method, &spotRequest{ZoneID: zoneID}, &resp); err != nil {
		return booking.SpotResult{}, c.rpc.classify(err, "Zone", strconv.FormatUint(uint64(zoneID), 10))
	}
	return booking.SpotResult{Success: resp.Success, Message: resp.Message}, nil
}

// GetZone fetches one zone. The zones service answers an unknown id with an
// empty zone, which is reported as not found.
func (c *InventoryClient) GetZone(ctx context.Context, zoneID uint) (*booking.Zone, error) {
	id := strconv.FormatUint(uint64(zoneID), 10)
	var resp zoneMessage
	if err := c.rpc.invoke(ctx, methodFindZone, &findZoneRequest{ID: zoneID}, &resp); err != nil {
		return nil, c.rpc.classify(err, "Zone", id)
	}
	if resp.ID == 0 {
		return nil, c.rpc.classify(notFound, "Zone", id)
	}
	zone := resp.toDomain()
	return &zone, nil
}

// GetZones fetches several zones in one call.
func (c *InventoryClient) GetZones(ctx context.Context, zoneIDs []uint) ([]booking.Zone, error) {
	var resp zonesResponse
	if err := c.rpc.invoke(ctx, methodFindZones, &findZonesRequest{IDs: zoneIDs}, &resp); err != nil {
		return nil, c.rpc.classify(err, "Zone", "batch")
	}
	zones := make([]booking.Zone, 0, len(resp.Zones))
	for _, z := range resp.Zones {
		zones = append(zones, z.toDomain())
	}
	return zones, nil
}
