package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gallerio/auction-service/internal/application/commands"
	"github.com/gallerio/auction-service/internal/application/ports"
	"github.com/gallerio/auction-service/internal/domain/auction"
	domainErrors "github.com/gallerio/auction-service/internal/domain/errors"
	"github.com/gallerio/auction-service/internal/infrastructure/http/response"
	"github.com/gallerio/auction-service/internal/infrastructure/monitoring"
	"github.com/gallerio/auction-service/internal/pkg/logger"
)

type BidHandler struct {
	placeBid *commands.PlaceBidHandler
	repo     ports.AuctionRepository
	log      *logger.Logger
}

func NewBidHandler(placeBid *commands.PlaceBidHandler, repo ports.AuctionRepository, log *logger.Logger) *BidHandler {
	return &BidHandler{
		placeBid: placeBid,
		repo:     repo,
		log:      log,
	}
}

type PlaceBidRequest struct {
	ListingID string          `json:"listing_id"`
	Amount    decimal.Decimal `json:"amount"`
}

type BidResponse struct {
	ID        string `json:"id"`
	ListingID string `json:"listing_id"`
	BidderID  string `json:"bidder_id"`
	Amount    string `json:"amount"`
	IsWinning bool   `json:"is_winning"`
	CreatedAt string `json:"created_at"`
}

func toBidResponse(bid *auction.Bid) BidResponse {
	return BidResponse{
		ID:        bid.ID,
		ListingID: bid.ListingID,
		BidderID:  bid.BidderID,
		Amount:    bid.Amount.String(),
		IsWinning: bid.IsWinning,
		CreatedAt: bid.CreatedAt.Format(time.RFC3339),
	}
}

type BidHistoryEntry struct {
	BidResponse
	ListingTitle  string `json:"listing_title,omitempty"`
	ListingStatus string `json:"listing_status,omitempty"`
}

func (h *BidHandler) HandlePlaceBid() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		bidderID := r.Header.Get("X-User-ID")
		if bidderID == "" {
			response.WriteDomainError(w, domainErrors.ErrNotAuthenticated)
			return
		}

		var req PlaceBidRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.WriteValidationError(w, "Validation failed", map[string]string{
				"body": "invalid JSON body",
			})
			return
		}

		if req.ListingID == "" {
			response.WriteValidationError(w, "Validation failed", map[string]string{
				"listing_id": "listing_id is required",
			})
			return
		}

		metrics := monitoring.NewBidMetrics(req.ListingID)
		metrics.RecordAttempt()

		cmd := commands.PlaceBidCommand{
			BidderID:  bidderID,
			ListingID: req.ListingID,
			Amount:    req.Amount,
		}

		resp, err := h.placeBid.Handle(r.Context(), cmd)
		if err != nil {
			h.log.Warn("Bid rejected",
				"listing_id", req.ListingID,
				"bidder_id", bidderID,
				"error", err.Error(),
			)
			metrics.RecordRejected(rejectionReason(err))
			response.WriteDomainError(w, err)
			return
		}

		metrics.RecordAccepted()
		response.WriteSuccess(w, resp)
	}
}

func (h *BidHandler) HandleGetListingBids(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	listingID := pathSegment(r.URL.Path, "/listings/", 0)

	if listingID == "" {
		response.WriteValidationError(w, "Validation failed", map[string]string{
			"listing_id": "Listing ID is required",
		})
		return
	}

	if _, err := h.repo.GetListingByID(ctx, listingID); err != nil {
		if err != domainErrors.ErrListingNotFound {
			h.log.Error("Failed to get listing", "error", err.Error(), "listing_id", listingID)
		}
		response.WriteDomainError(w, err)
		return
	}

	bids, err := h.repo.GetBidsByListingID(ctx, listingID)
	if err != nil {
		h.log.Error("Failed to get bids", "error", err.Error(), "listing_id", listingID)
		response.WriteDomainError(w, err)
		return
	}

	responses := make([]BidResponse, 0, len(bids))
	for _, bid := range bids {
		responses = append(responses, toBidResponse(bid))
	}

	response.WriteSuccess(w, responses)
}

func (h *BidHandler) HandleGetUserBids(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bidderID := pathSegment(r.URL.Path, "/users/", 0)

	if bidderID == "" {
		response.WriteValidationError(w, "Validation failed", map[string]string{
			"user_id": "User ID is required",
		})
		return
	}

	bids, err := h.repo.GetBidsByBidderID(ctx, bidderID)
	if err != nil {
		h.log.Error("Failed to get user bids", "error", err.Error(), "bidder_id", bidderID)
		response.WriteDomainError(w, err)
		return
	}

	responses := make([]BidHistoryEntry, 0, len(bids))
	for _, entry := range bids {
		item := BidHistoryEntry{BidResponse: toBidResponse(&entry.Bid)}
		if entry.Listing != nil {
			item.ListingTitle = entry.Listing.Title
			item.ListingStatus = string(entry.Listing.Status)
		}
		responses = append(responses, item)
	}

	response.WriteSuccess(w, responses)
}

func rejectionReason(err error) string {
	switch err {
	case domainErrors.ErrListingNotFound:
		return "listing_not_found"
	case domainErrors.ErrNotInAuction:
		return "not_in_auction"
	case domainErrors.ErrAuctionEnded:
		return "auction_ended"
	case domainErrors.ErrBidTooLow:
		return "bid_too_low"
	case domainErrors.ErrSelfBid:
		return "self_bid"
	case domainErrors.ErrInvalidAmount:
		return "invalid_amount"
	case domainErrors.ErrNotAuthenticated:
		return "not_authenticated"
	default:
		return "transaction_failed"
	}
}

// pathSegment extracts the n-th segment after the given prefix, e.g. n=0 on
// "/listings/abc/bids" with prefix "/listings/" yields "abc".
func pathSegment(path, prefix string, n int) string {
	trimmed := strings.TrimPrefix(path, prefix)
	parts := strings.Split(trimmed, "/")
	if n >= len(parts) {
		return ""
	}
	return parts[n]
}
