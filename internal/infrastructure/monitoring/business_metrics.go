package monitoring

// BidMetrics groups the counters recorded along one bid request.
type BidMetrics struct {
	listingID string
}

func NewBidMetrics(listingID string) *BidMetrics {
	return &BidMetrics{
		listingID: listingID,
	}
}

func (m *BidMetrics) RecordAttempt() {
	RecordBidAttempt()
}

func (m *BidMetrics) RecordAccepted() {
	RecordBidAccepted()
}

func (m *BidMetrics) RecordRejected(reason string) {
	RecordBidRejected(reason)
}

type SettlementMetrics struct {
	listingID string
}

func NewSettlementMetrics(listingID string) *SettlementMetrics {
	return &SettlementMetrics{
		listingID: listingID,
	}
}

func (m *SettlementMetrics) RecordOutcome(outcome string) {
	RecordSettlement(outcome)
}
