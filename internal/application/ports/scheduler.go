package ports

import (
	"time"
)

// SettlementScheduler arranges the deferred settlement call for a listing.
// Arm is an upsert keyed by listing id: arming twice for the same target time
// never produces two settlements.
type SettlementScheduler interface {
	Arm(listingID string, endTime time.Time)
	Disarm(listingID string)
}
