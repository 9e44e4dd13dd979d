package errors

import (
	"errors"
)

var (
	ErrListingNotFound = errors.New("listing not found")
	ErrBidNotFound     = errors.New("bid not found")
	ErrOrderNotFound   = errors.New("order not found")

	ErrNotInAuction = errors.New("listing is not available for auction")
	ErrAuctionEnded = errors.New("auction has ended")

	ErrBidTooLow     = errors.New("bid must be higher than the current bid")
	ErrSelfBid       = errors.New("artists cannot bid on their own artworks")
	ErrInvalidAmount = errors.New("bid amount must be positive")

	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotListingOwner  = errors.New("listing belongs to another artist")

	ErrAlreadyInAuction = errors.New("listing is already in auction")
	ErrInvalidEndTime   = errors.New("auction end time must be in the future")

	ErrTransactionFailed = errors.New("transaction failed")
)
