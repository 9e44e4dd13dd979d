package generator

import (
	"github.com/google/uuid"
)

// IDGenerator mints identifiers for listings, bids and orders.
type IDGenerator struct{}

func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

func (g *IDGenerator) NewListingID() string {
	return uuid.NewString()
}

func (g *IDGenerator) NewBidID() string {
	return uuid.NewString()
}

func (g *IDGenerator) NewOrderID() string {
	return uuid.NewString()
}
