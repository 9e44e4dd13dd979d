package handlers

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gallerio/auction-service/internal/application/commands"
	"github.com/gallerio/auction-service/internal/application/ports"
	"github.com/gallerio/auction-service/internal/domain/auction"
	domainErrors "github.com/gallerio/auction-service/internal/domain/errors"
	"github.com/gallerio/auction-service/internal/infrastructure/http/response"
	"github.com/gallerio/auction-service/internal/pkg/clock"
	"github.com/gallerio/auction-service/internal/pkg/generator"
	"github.com/gallerio/auction-service/internal/pkg/logger"
)

type ListingHandler struct {
	repo         ports.AuctionRepository
	cache        ports.Cache
	startAuction *commands.StartAuctionHandler
	idGen        *generator.IDGenerator
	clk          clock.Clock
	log          *logger.Logger
}

func NewListingHandler(
	repo ports.AuctionRepository,
	cache ports.Cache,
	startAuction *commands.StartAuctionHandler,
	clk clock.Clock,
	log *logger.Logger,
) *ListingHandler {
	return &ListingHandler{
		repo:         repo,
		cache:        cache,
		startAuction: startAuction,
		idGen:        generator.NewIDGenerator(),
		clk:          clk,
		log:          log,
	}
}

type CreateListingRequest struct {
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Medium       string              `json:"medium"`
	Year         int                 `json:"year"`
	Category     string              `json:"category"`
	Price        decimal.Decimal     `json:"price"`
	ReservePrice decimal.NullDecimal `json:"reserve_price"`
	IsAuction    bool                `json:"is_auction"`
	// AuctionDurationHours sets the end time relative to creation when
	// IsAuction is set.
	AuctionDurationHours int `json:"auction_duration_hours"`
}

type StartAuctionRequest struct {
	AuctionEndTime int64               `json:"auction_end_time"`
	ReservePrice   decimal.NullDecimal `json:"reserve_price"`
}

type ListingResponse struct {
	ID             string `json:"id"`
	ArtistID       string `json:"artist_id"`
	Title          string `json:"title"`
	Description    string `json:"description,omitempty"`
	Medium         string `json:"medium,omitempty"`
	Year           int    `json:"year,omitempty"`
	Category       string `json:"category,omitempty"`
	Price          string `json:"price"`
	Status         string `json:"status"`
	IsAuction      bool   `json:"is_auction"`
	ReservePrice   string `json:"reserve_price,omitempty"`
	CurrentBid     string `json:"current_bid,omitempty"`
	BidCount       int    `json:"bid_count"`
	AuctionEndTime int64  `json:"auction_end_time,omitempty"`
	Views          int    `json:"views"`
	CreatedAt      string `json:"created_at"`
}

// ListingDetailResponse is the single-listing view. RecentBids is populated
// only while the listing is in auction, newest first.
type ListingDetailResponse struct {
	ListingResponse
	RecentBids []BidResponse `json:"recent_bids,omitempty"`
}

const recentBidsLimit = 10

func toListingResponse(l *auction.Listing) ListingResponse {
	resp := ListingResponse{
		ID:          l.ID,
		ArtistID:    l.ArtistID,
		Title:       l.Title,
		Description: l.Description,
		Medium:      l.Medium,
		Year:        l.Year,
		Category:    l.Category,
		Price:       l.Price.String(),
		Status:      string(l.Status),
		IsAuction:   l.IsAuction,
		BidCount:    l.BidCount,
		Views:       l.Views,
		CreatedAt:   l.CreatedAt.Format(time.RFC3339),
	}
	if l.ReservePrice.Valid {
		resp.ReservePrice = l.ReservePrice.Decimal.String()
	}
	if l.CurrentBid.Valid {
		resp.CurrentBid = l.CurrentBid.Decimal.String()
	}
	if l.AuctionEndTime != nil {
		resp.AuctionEndTime = l.AuctionEndTime.UnixMilli()
	}
	return resp
}

func (h *ListingHandler) HandleCreateListing(w http.ResponseWriter, r *http.Request) {
	artistID := r.Header.Get("X-User-ID")
	if artistID == "" {
		response.WriteDomainError(w, domainErrors.ErrNotAuthenticated)
		return
	}

	var req CreateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteValidationError(w, "Validation failed", map[string]string{
			"body": "invalid JSON body",
		})
		return
	}

	listing, err := auction.NewListing(h.idGen.NewListingID(), artistID, req.Title, req.Price, h.clk.Now())
	if err != nil {
		response.WriteValidationError(w, "Validation failed", map[string]string{
			"listing": err.Error(),
		})
		return
	}

	listing.Description = req.Description
	listing.Medium = req.Medium
	listing.Year = req.Year
	listing.Category = req.Category
	if req.ReservePrice.Valid {
		// A reserve set at creation is the bid floor once an auction starts.
		listing.ReservePrice = req.ReservePrice
	}

	if req.IsAuction {
		if req.AuctionDurationHours <= 0 {
			response.WriteValidationError(w, "Validation failed", map[string]string{
				"auction_duration_hours": "auction duration must be a positive number of hours",
			})
			return
		}
		now := h.clk.Now()
		endTime := now.Add(time.Duration(req.AuctionDurationHours) * time.Hour)
		if err := listing.StartAuction(endTime, req.ReservePrice, now); err != nil {
			response.WriteValidationError(w, "Validation failed", map[string]string{
				"auction": err.Error(),
			})
			return
		}
	}

	if err := h.repo.CreateListing(r.Context(), listing); err != nil {
		h.log.Error("Failed to create listing", "error", err.Error(), "artist_id", artistID)
		response.WriteDomainError(w, err)
		return
	}

	if listing.IsAuction {
		if err := h.cache.InvalidateActiveAuctions(r.Context()); err != nil {
			h.log.Warn("Failed to invalidate auctions feed", "error", err)
		}
	}

	h.log.Info("Listing created",
		"listing_id", listing.ID,
		"artist_id", artistID,
		"is_auction", listing.IsAuction,
	)
	response.WriteJSON(w, http.StatusCreated, response.Success(toListingResponse(listing)))
}

func (h *ListingHandler) HandleGetListing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	listingID := pathSegment(r.URL.Path, "/listings/", 0)

	if listingID == "" {
		response.WriteValidationError(w, "Validation failed", map[string]string{
			"listing_id": "Listing ID is required",
		})
		return
	}

	listing, err := h.repo.GetListingByID(ctx, listingID)
	if err != nil {
		if err != domainErrors.ErrListingNotFound {
			h.log.Error("Failed to get listing", "error", err.Error(), "listing_id", listingID)
		}
		response.WriteDomainError(w, err)
		return
	}

	if err := h.repo.IncrementViews(ctx, listingID); err != nil {
		h.log.Warn("Failed to increment views", "error", err.Error(), "listing_id", listingID)
	}

	detail := ListingDetailResponse{ListingResponse: toListingResponse(listing)}
	if listing.Status == auction.StatusAuction {
		bids, err := h.repo.GetBidsByListingID(ctx, listingID)
		if err != nil {
			h.log.Warn("Failed to load recent bids", "error", err.Error(), "listing_id", listingID)
		} else {
			sort.Slice(bids, func(i, j int) bool {
				return bids[i].CreatedAt.After(bids[j].CreatedAt)
			})
			if len(bids) > recentBidsLimit {
				bids = bids[:recentBidsLimit]
			}
			detail.RecentBids = make([]BidResponse, 0, len(bids))
			for _, bid := range bids {
				detail.RecentBids = append(detail.RecentBids, toBidResponse(bid))
			}
		}
	}

	response.WriteSuccess(w, detail)
}

func (h *ListingHandler) HandleListListings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	filter := ports.ListingFilter{
		Status:   auction.ListingStatus(query.Get("status")),
		ArtistID: query.Get("artist_id"),
		Category: query.Get("category"),
		Limit:    100,
	}

	if filter.Status != "" && !filter.Status.Valid() {
		response.WriteValidationError(w, "Validation failed", map[string]string{
			"status": "unknown status",
		})
		return
	}

	if rawLimit := query.Get("limit"); rawLimit != "" {
		limit, err := strconv.Atoi(rawLimit)
		if err != nil || limit <= 0 {
			response.WriteValidationError(w, "Validation failed", map[string]string{
				"limit": "limit must be a positive integer",
			})
			return
		}
		filter.Limit = limit
	}

	listings, err := h.repo.GetListings(ctx, filter)
	if err != nil {
		h.log.Error("Failed to list listings", "error", err.Error())
		response.WriteDomainError(w, err)
		return
	}

	responses := make([]ListingResponse, 0, len(listings))
	for _, listing := range listings {
		responses = append(responses, toListingResponse(listing))
	}

	response.WriteSuccess(w, responses)
}

// HandleDeleteListing removes a listing together with its entire bid ledger.
func (h *ListingHandler) HandleDeleteListing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	artistID := r.Header.Get("X-User-ID")
	if artistID == "" {
		response.WriteDomainError(w, domainErrors.ErrNotAuthenticated)
		return
	}

	listingID := pathSegment(r.URL.Path, "/listings/", 0)
	if listingID == "" {
		response.WriteValidationError(w, "Validation failed", map[string]string{
			"listing_id": "Listing ID is required",
		})
		return
	}

	listing, err := h.repo.GetListingByID(ctx, listingID)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	if listing.ArtistID != artistID {
		response.WriteDomainError(w, domainErrors.ErrNotListingOwner)
		return
	}

	if err := h.repo.DeleteListing(ctx, listingID); err != nil {
		h.log.Error("Failed to delete listing", "error", err.Error(), "listing_id", listingID)
		response.WriteDomainError(w, err)
		return
	}

	if err := h.cache.InvalidateActiveAuctions(ctx); err != nil {
		h.log.Warn("Failed to invalidate auctions feed", "error", err)
	}

	h.log.Info("Listing deleted", "listing_id", listingID, "artist_id", artistID)
	response.WriteSuccess(w, map[string]string{"id": listingID})
}

func (h *ListingHandler) HandleStartAuction(w http.ResponseWriter, r *http.Request) {
	ownerID := r.Header.Get("X-User-ID")

	listingID := pathSegment(r.URL.Path, "/listings/", 0)
	if listingID == "" {
		response.WriteValidationError(w, "Validation failed", map[string]string{
			"listing_id": "Listing ID is required",
		})
		return
	}

	var req StartAuctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteValidationError(w, "Validation failed", map[string]string{
			"body": "invalid JSON body",
		})
		return
	}

	cmd := commands.StartAuctionCommand{
		ListingID:    listingID,
		OwnerID:      ownerID,
		EndTime:      time.UnixMilli(req.AuctionEndTime),
		ReservePrice: req.ReservePrice,
	}

	resp, err := h.startAuction.Handle(r.Context(), cmd)
	if err != nil {
		h.log.Warn("Start auction rejected",
			"listing_id", listingID,
			"owner_id", ownerID,
			"error", err.Error(),
		)
		response.WriteDomainError(w, err)
		return
	}

	response.WriteSuccess(w, resp)
}
