package commands

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/gallerio/auction-service/internal/application/use_cases"
	"github.com/gallerio/auction-service/internal/pkg/logger"
)

type PlaceBidCommand struct {
	BidderID  string
	ListingID string
	Amount    decimal.Decimal
}

type PlaceBidResponse struct {
	BidID string `json:"bid_id"`
}

type PlaceBidHandler struct {
	placeBidUseCase *use_cases.PlaceBidUseCase
	log             *logger.Logger
}

func NewPlaceBidHandler(
	placeBidUseCase *use_cases.PlaceBidUseCase,
	log *logger.Logger,
) *PlaceBidHandler {
	return &PlaceBidHandler{
		placeBidUseCase: placeBidUseCase,
		log:             log,
	}
}

func (h *PlaceBidHandler) Handle(ctx context.Context, cmd PlaceBidCommand) (*PlaceBidResponse, error) {
	bidID, err := h.placeBidUseCase.PlaceBid(ctx, cmd.BidderID, cmd.ListingID, cmd.Amount)
	if err != nil {
		return nil, err
	}

	return &PlaceBidResponse{BidID: bidID}, nil
}
