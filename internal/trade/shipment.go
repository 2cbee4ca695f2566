// Package trade simulates autonomous inter-city arbitrage: NPC merchants
// move goods from where they are cheap to where they are scarce, creating
// supply dynamics the player has to compete with.
package trade

import "github.com/google/uuid"

// Shipment is cargo in transit between two city markets. The quantity is
// already deducted from the source when the shipment is created; it either
// arrives (possibly reduced by losses) or disappears at sea.
type Shipment struct {
	ID         string
	SrcCityID  string
	DstCityID  string
	GoodID     string
	Qty        float64 // tons, > 0
	ETADays    int     // decremented daily; 0 = arrival
	CreatedDay int
}

// NewShipment allocates a shipment with a fresh identity.
func NewShipment(src, dst, goodID string, qty float64, etaDays, createdDay int) *Shipment {
	return &Shipment{
		ID:         uuid.NewString(),
		SrcCityID:  src,
		DstCityID:  dst,
		GoodID:     goodID,
		Qty:        qty,
		ETADays:    etaDays,
		CreatedDay: createdDay,
	}
}
