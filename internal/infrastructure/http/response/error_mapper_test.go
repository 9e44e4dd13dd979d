package response

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/peterldowns/testy/check"

	domainErrors "github.com/gallerio/auction-service/internal/domain/errors"
)

func TestMapDomainError(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
		wantCode   Status
	}{
		{domainErrors.ErrListingNotFound, http.StatusNotFound, StatusNotFound},
		{domainErrors.ErrBidNotFound, http.StatusNotFound, StatusNotFound},
		{domainErrors.ErrNotInAuction, http.StatusConflict, StatusConflict},
		{domainErrors.ErrAuctionEnded, http.StatusConflict, StatusConflict},
		{domainErrors.ErrAlreadyInAuction, http.StatusConflict, StatusConflict},
		{domainErrors.ErrBidTooLow, http.StatusBadRequest, StatusValidationError},
		{domainErrors.ErrSelfBid, http.StatusBadRequest, StatusValidationError},
		{domainErrors.ErrInvalidAmount, http.StatusBadRequest, StatusValidationError},
		{domainErrors.ErrInvalidEndTime, http.StatusBadRequest, StatusValidationError},
		{domainErrors.ErrNotAuthenticated, http.StatusUnauthorized, StatusUnauthorized},
		{domainErrors.ErrNotListingOwner, http.StatusForbidden, StatusError},
		{domainErrors.ErrTransactionFailed, http.StatusInternalServerError, StatusInternalError},
		{errors.New("unexpected"), http.StatusInternalServerError, StatusInternalError},
	}

	for _, tc := range cases {
		statusCode, resp := MapDomainError(tc.err)
		check.Equal(t, tc.wantStatus, statusCode)
		check.Equal(t, string(tc.wantCode), resp.Error)
	}
}

func TestMapDomainErrorUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("%w: serialization conflict", domainErrors.ErrTransactionFailed)
	statusCode, resp := MapDomainError(wrapped)
	check.Equal(t, http.StatusInternalServerError, statusCode)
	check.Equal(t, string(StatusInternalError), resp.Error)

	wrapped = fmt.Errorf("placing bid: %w", domainErrors.ErrBidTooLow)
	statusCode, _ = MapDomainError(wrapped)
	check.Equal(t, http.StatusBadRequest, statusCode)
}
