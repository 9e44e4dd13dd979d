package response

import (
	"errors"
	"net/http"

	domainErrors "github.com/gallerio/auction-service/internal/domain/errors"
)

type ErrorMapping struct {
	HTTPStatus int
	Status     Status
	Message    string
}

var errorMappings = map[error]ErrorMapping{
	domainErrors.ErrListingNotFound: {
		HTTPStatus: http.StatusNotFound,
		Status:     StatusNotFound,
		Message:    "Listing not found",
	},
	domainErrors.ErrBidNotFound: {
		HTTPStatus: http.StatusNotFound,
		Status:     StatusNotFound,
		Message:    "Bid not found",
	},
	domainErrors.ErrOrderNotFound: {
		HTTPStatus: http.StatusNotFound,
		Status:     StatusNotFound,
		Message:    "Order not found",
	},
	domainErrors.ErrNotInAuction: {
		HTTPStatus: http.StatusConflict,
		Status:     StatusConflict,
		Message:    "This listing is not available for auction",
	},
	domainErrors.ErrAuctionEnded: {
		HTTPStatus: http.StatusConflict,
		Status:     StatusConflict,
		Message:    "Auction has ended",
	},
	domainErrors.ErrBidTooLow: {
		HTTPStatus: http.StatusBadRequest,
		Status:     StatusValidationError,
		Message:    "Bid must be higher than the current bid",
	},
	domainErrors.ErrSelfBid: {
		HTTPStatus: http.StatusBadRequest,
		Status:     StatusValidationError,
		Message:    "Artists cannot bid on their own artworks",
	},
	domainErrors.ErrInvalidAmount: {
		HTTPStatus: http.StatusBadRequest,
		Status:     StatusValidationError,
		Message:    "Bid amount must be positive",
	},
	domainErrors.ErrNotAuthenticated: {
		HTTPStatus: http.StatusUnauthorized,
		Status:     StatusUnauthorized,
		Message:    "Not authenticated",
	},
	domainErrors.ErrNotListingOwner: {
		HTTPStatus: http.StatusForbidden,
		Status:     StatusError,
		Message:    "Listing belongs to another artist",
	},
	domainErrors.ErrAlreadyInAuction: {
		HTTPStatus: http.StatusConflict,
		Status:     StatusConflict,
		Message:    "Listing is already in auction",
	},
	domainErrors.ErrInvalidEndTime: {
		HTTPStatus: http.StatusBadRequest,
		Status:     StatusValidationError,
		Message:    "Auction end time must be in the future",
	},
	domainErrors.ErrTransactionFailed: {
		HTTPStatus: http.StatusInternalServerError,
		Status:     StatusInternalError,
		Message:    "Transaction failed",
	},
}

func MapDomainError(err error) (int, *ErrorResponse) {
	for domainErr, mapping := range errorMappings {
		if errors.Is(err, domainErr) {
			return mapping.HTTPStatus, Error(mapping.Status, mapping.Message)
		}
	}

	return http.StatusInternalServerError, Error(StatusInternalError, "Internal server error")
}

func WriteDomainError(w http.ResponseWriter, err error) {
	statusCode, errorResponse := MapDomainError(err)
	WriteJSON(w, statusCode, errorResponse)
}
