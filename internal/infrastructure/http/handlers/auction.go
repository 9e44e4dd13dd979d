package handlers

import (
	"net/http"
	"strconv"

	"github.com/gallerio/auction-service/internal/application/use_cases"
	"github.com/gallerio/auction-service/internal/infrastructure/http/response"
	"github.com/gallerio/auction-service/internal/infrastructure/monitoring"
	"github.com/gallerio/auction-service/internal/pkg/clock"
	"github.com/gallerio/auction-service/internal/pkg/logger"
)

type AuctionHandler struct {
	feed *use_cases.AuctionFeedUseCase
	clk  clock.Clock
	log  *logger.Logger
}

func NewAuctionHandler(feed *use_cases.AuctionFeedUseCase, clk clock.Clock, log *logger.Logger) *AuctionHandler {
	return &AuctionHandler{
		feed: feed,
		clk:  clk,
		log:  log,
	}
}

type ActiveAuctionResponse struct {
	ListingResponse
	// TimeRemaining is milliseconds until the auction ends, computed at
	// response time so cached entries stay accurate.
	TimeRemaining int64 `json:"time_remaining"`
}

func (h *AuctionHandler) HandleGetActiveAuctions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
		parsed, err := strconv.Atoi(rawLimit)
		if err != nil || parsed <= 0 {
			response.WriteValidationError(w, "Validation failed", map[string]string{
				"limit": "limit must be a positive integer",
			})
			return
		}
		limit = parsed
	}

	listings, err := h.feed.GetActiveAuctions(r.Context(), limit)
	if err != nil {
		h.log.Error("Failed to get active auctions", "error", err.Error())
		response.WriteDomainError(w, err)
		return
	}

	monitoring.UpdateActiveAuctions(len(listings))

	now := h.clk.Now()
	responses := make([]ActiveAuctionResponse, 0, len(listings))
	for _, listing := range listings {
		remaining := int64(0)
		if listing.AuctionEndTime != nil {
			remaining = listing.AuctionEndTime.Sub(now).Milliseconds()
		}
		if remaining < 0 {
			continue
		}
		responses = append(responses, ActiveAuctionResponse{
			ListingResponse: toListingResponse(listing),
			TimeRemaining:   remaining,
		})
	}

	response.WriteSuccess(w, responses)
}
