package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gallerio/auction-service/internal/application/ports"
	"github.com/gallerio/auction-service/internal/domain/auction"
	domainErrors "github.com/gallerio/auction-service/internal/domain/errors"
	"github.com/gallerio/auction-service/internal/infrastructure/monitoring"
)

const listingColumns = `
	id, artist_id, title, description, medium, year, category, price,
	status, is_auction, reserve_price, current_bid, bid_count,
	auction_end_time, views, created_at
`

type AuctionRepository struct {
	db   *sql.DB
	tx   *sql.Tx
	isTx bool
}

func NewAuctionRepository(conn *Connection) *AuctionRepository {
	return &AuctionRepository{
		db:   conn.GetDB(),
		isTx: false,
	}
}

func (r *AuctionRepository) scanListing(row interface{ Scan(...interface{}) error }) (*auction.Listing, error) {
	var l auction.Listing
	var status string
	var endTime sql.NullTime

	err := row.Scan(
		&l.ID, &l.ArtistID, &l.Title, &l.Description, &l.Medium, &l.Year,
		&l.Category, &l.Price, &status, &l.IsAuction, &l.ReservePrice,
		&l.CurrentBid, &l.BidCount, &endTime, &l.Views, &l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.Status = auction.ListingStatus(status)
	if endTime.Valid {
		t := endTime.Time
		l.AuctionEndTime = &t
	}

	return &l, nil
}

func (r *AuctionRepository) GetListingByID(ctx context.Context, id string) (*auction.Listing, error) {
	query := `
		SELECT ` + listingColumns + `
		FROM listings
		WHERE id = $1
	`

	var row interface{ Scan(...interface{}) error }
	if r.isTx {
		row = monitoring.InstrumentTxQueryRow(ctx, r.tx, "SELECT", "listings", query, id)
	} else {
		row = monitoring.InstrumentQueryRow(ctx, r.db, "SELECT", "listings", query, id)
	}

	l, err := r.scanListing(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domainErrors.ErrListingNotFound
		}
		return nil, err
	}

	return l, nil
}

func (r *AuctionRepository) GetListingForUpdate(ctx context.Context, id string) (*auction.Listing, error) {
	if !r.isTx {
		return nil, errors.New("GetListingForUpdate requires a transaction")
	}

	query := `
		SELECT ` + listingColumns + `
		FROM listings
		WHERE id = $1
		FOR UPDATE
	`

	l, err := r.scanListing(monitoring.InstrumentTxQueryRow(ctx, r.tx, "SELECT", "listings", query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domainErrors.ErrListingNotFound
		}
		return nil, err
	}

	return l, nil
}

func (r *AuctionRepository) CreateListing(ctx context.Context, l *auction.Listing) error {
	query := `
		INSERT INTO listings (` + listingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	args := []interface{}{
		l.ID, l.ArtistID, l.Title, l.Description, l.Medium, l.Year,
		l.Category, l.Price, string(l.Status), l.IsAuction, l.ReservePrice,
		l.CurrentBid, l.BidCount, nullTime(l.AuctionEndTime), l.Views, l.CreatedAt,
	}

	var err error
	if r.isTx {
		_, err = monitoring.InstrumentTxExec(ctx, r.tx, "INSERT", "listings", query, args...)
	} else {
		_, err = monitoring.InstrumentExec(ctx, r.db, "INSERT", "listings", query, args...)
	}

	return err
}

func (r *AuctionRepository) UpdateListing(ctx context.Context, l *auction.Listing) error {
	query := `
		UPDATE listings
		SET title = $2, description = $3, price = $4, status = $5,
		    is_auction = $6, reserve_price = $7, current_bid = $8,
		    bid_count = $9, auction_end_time = $10, views = $11
		WHERE id = $1
	`

	args := []interface{}{
		l.ID, l.Title, l.Description, l.Price, string(l.Status),
		l.IsAuction, l.ReservePrice, l.CurrentBid, l.BidCount,
		nullTime(l.AuctionEndTime), l.Views,
	}

	var result sql.Result
	var err error
	if r.isTx {
		result, err = monitoring.InstrumentTxExec(ctx, r.tx, "UPDATE", "listings", query, args...)
	} else {
		result, err = monitoring.InstrumentExec(ctx, r.db, "UPDATE", "listings", query, args...)
	}
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domainErrors.ErrListingNotFound
	}

	return nil
}

func (r *AuctionRepository) DeleteListing(ctx context.Context, id string) error {
	// Bids cascade at the schema level; the explicit delete keeps the
	// behavior when the repository backs a store without FK support.
	if err := r.DeleteBidsByListingID(ctx, id); err != nil {
		return err
	}

	query := `DELETE FROM listings WHERE id = $1`

	var result sql.Result
	var err error
	if r.isTx {
		result, err = monitoring.InstrumentTxExec(ctx, r.tx, "DELETE", "listings", query, id)
	} else {
		result, err = monitoring.InstrumentExec(ctx, r.db, "DELETE", "listings", query, id)
	}
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domainErrors.ErrListingNotFound
	}

	return nil
}

func (r *AuctionRepository) GetListings(ctx context.Context, filter ports.ListingFilter) ([]*auction.Listing, error) {
	query := `
		SELECT ` + listingColumns + `
		FROM listings
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR artist_id = $2)
		  AND ($3 = '' OR category = $3)
		ORDER BY created_at DESC
		LIMIT $4
	`

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	return r.queryListings(ctx, query, string(filter.Status), filter.ArtistID, filter.Category, limit)
}

func (r *AuctionRepository) GetActiveAuctions(ctx context.Context, now time.Time, limit int) ([]*auction.Listing, error) {
	query := `
		SELECT ` + listingColumns + `
		FROM listings
		WHERE status = 'auction' AND auction_end_time > $1
		ORDER BY auction_end_time ASC
		LIMIT $2
	`

	return r.queryListings(ctx, query, now, limit)
}

func (r *AuctionRepository) GetExpiredAuctions(ctx context.Context, now time.Time, limit int) ([]*auction.Listing, error) {
	query := `
		SELECT ` + listingColumns + `
		FROM listings
		WHERE status = 'auction' AND is_auction = TRUE AND auction_end_time <= $1
		ORDER BY auction_end_time ASC
		LIMIT $2
	`

	return r.queryListings(ctx, query, now, limit)
}

func (r *AuctionRepository) queryListings(ctx context.Context, query string, args ...interface{}) ([]*auction.Listing, error) {
	var rows *sql.Rows
	var err error

	if r.isTx {
		rows, err = monitoring.InstrumentTxQuery(ctx, r.tx, "SELECT", "listings", query, args...)
	} else {
		rows, err = monitoring.InstrumentQuery(ctx, r.db, "SELECT", "listings", query, args...)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []*auction.Listing
	for rows.Next() {
		l, err := r.scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}

	return listings, rows.Err()
}

func (r *AuctionRepository) IncrementViews(ctx context.Context, id string) error {
	query := `UPDATE listings SET views = views + 1 WHERE id = $1`

	var err error
	if r.isTx {
		_, err = monitoring.InstrumentTxExec(ctx, r.tx, "UPDATE", "listings", query, id)
	} else {
		_, err = monitoring.InstrumentExec(ctx, r.db, "UPDATE", "listings", query, id)
	}

	return err
}

func (r *AuctionRepository) GetBidsByListingID(ctx context.Context, listingID string) ([]*auction.Bid, error) {
	query := `
		SELECT id, listing_id, bidder_id, amount, is_winning, created_at
		FROM bids
		WHERE listing_id = $1
		ORDER BY created_at DESC
	`

	var rows *sql.Rows
	var err error
	if r.isTx {
		rows, err = monitoring.InstrumentTxQuery(ctx, r.tx, "SELECT", "bids", query, listingID)
	} else {
		rows, err = monitoring.InstrumentQuery(ctx, r.db, "SELECT", "bids", query, listingID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []*auction.Bid
	for rows.Next() {
		var b auction.Bid
		if err := rows.Scan(&b.ID, &b.ListingID, &b.BidderID, &b.Amount, &b.IsWinning, &b.CreatedAt); err != nil {
			return nil, err
		}
		bids = append(bids, &b)
	}

	return bids, rows.Err()
}

func (r *AuctionRepository) GetBidsByBidderID(ctx context.Context, bidderID string) ([]*auction.BidWithListing, error) {
	query := `
		SELECT b.id, b.listing_id, b.bidder_id, b.amount, b.is_winning, b.created_at,
		       l.id, l.artist_id, l.title, l.description, l.medium, l.year,
		       l.category, l.price, l.status, l.is_auction, l.reserve_price,
		       l.current_bid, l.bid_count, l.auction_end_time, l.views, l.created_at
		FROM bids b
		LEFT JOIN listings l ON l.id = b.listing_id
		WHERE b.bidder_id = $1
		ORDER BY b.created_at DESC
	`

	var rows *sql.Rows
	var err error
	if r.isTx {
		rows, err = monitoring.InstrumentTxQuery(ctx, r.tx, "SELECT", "bids", query, bidderID)
	} else {
		rows, err = monitoring.InstrumentQuery(ctx, r.db, "SELECT", "bids", query, bidderID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*auction.BidWithListing
	for rows.Next() {
		var b auction.Bid
		var l auction.Listing
		var listingID, artistID, title, description, medium, category, status sql.NullString
		var year, bidCount, views sql.NullInt64
		var isAuction sql.NullBool
		var price sql.NullString
		var endTime, createdAt sql.NullTime

		err := rows.Scan(
			&b.ID, &b.ListingID, &b.BidderID, &b.Amount, &b.IsWinning, &b.CreatedAt,
			&listingID, &artistID, &title, &description, &medium, &year,
			&category, &price, &status, &isAuction, &l.ReservePrice,
			&l.CurrentBid, &bidCount, &endTime, &views, &createdAt,
		)
		if err != nil {
			return nil, err
		}

		item := &auction.BidWithListing{Bid: b}
		if listingID.Valid {
			l.ID = listingID.String
			l.ArtistID = artistID.String
			l.Title = title.String
			l.Description = description.String
			l.Medium = medium.String
			l.Year = int(year.Int64)
			l.Category = category.String
			l.Status = auction.ListingStatus(status.String)
			l.IsAuction = isAuction.Bool
			l.BidCount = int(bidCount.Int64)
			l.Views = int(views.Int64)
			l.CreatedAt = createdAt.Time
			if price.Valid {
				if err := l.Price.Scan(price.String); err != nil {
					return nil, err
				}
			}
			if endTime.Valid {
				t := endTime.Time
				l.AuctionEndTime = &t
			}
			item.Listing = &l
		}

		results = append(results, item)
	}

	return results, rows.Err()
}

func (r *AuctionRepository) GetWinningBid(ctx context.Context, listingID string) (*auction.Bid, error) {
	query := `
		SELECT id, listing_id, bidder_id, amount, is_winning, created_at
		FROM bids
		WHERE listing_id = $1 AND is_winning = TRUE
		ORDER BY created_at DESC
		LIMIT 1
	`

	var row interface{ Scan(...interface{}) error }
	if r.isTx {
		row = monitoring.InstrumentTxQueryRow(ctx, r.tx, "SELECT", "bids", query, listingID)
	} else {
		row = monitoring.InstrumentQueryRow(ctx, r.db, "SELECT", "bids", query, listingID)
	}

	var b auction.Bid
	err := row.Scan(&b.ID, &b.ListingID, &b.BidderID, &b.Amount, &b.IsWinning, &b.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domainErrors.ErrBidNotFound
		}
		return nil, err
	}

	return &b, nil
}

func (r *AuctionRepository) ClearWinningBids(ctx context.Context, listingID string) error {
	query := `UPDATE bids SET is_winning = FALSE WHERE listing_id = $1 AND is_winning = TRUE`

	var err error
	if r.isTx {
		_, err = monitoring.InstrumentTxExec(ctx, r.tx, "UPDATE", "bids", query, listingID)
	} else {
		_, err = monitoring.InstrumentExec(ctx, r.db, "UPDATE", "bids", query, listingID)
	}

	return err
}

func (r *AuctionRepository) CreateBid(ctx context.Context, b *auction.Bid) error {
	query := `
		INSERT INTO bids (id, listing_id, bidder_id, amount, is_winning, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	var err error
	if r.isTx {
		_, err = monitoring.InstrumentTxExec(ctx, r.tx, "INSERT", "bids", query,
			b.ID, b.ListingID, b.BidderID, b.Amount, b.IsWinning, b.CreatedAt)
	} else {
		_, err = monitoring.InstrumentExec(ctx, r.db, "INSERT", "bids", query,
			b.ID, b.ListingID, b.BidderID, b.Amount, b.IsWinning, b.CreatedAt)
	}

	return err
}

func (r *AuctionRepository) DeleteBidsByListingID(ctx context.Context, listingID string) error {
	query := `DELETE FROM bids WHERE listing_id = $1`

	var err error
	if r.isTx {
		_, err = monitoring.InstrumentTxExec(ctx, r.tx, "DELETE", "bids", query, listingID)
	} else {
		_, err = monitoring.InstrumentExec(ctx, r.db, "DELETE", "bids", query, listingID)
	}

	return err
}

func (r *AuctionRepository) CreateOrder(ctx context.Context, o *auction.Order) error {
	query := `
		INSERT INTO orders (
			id, user_id, listing_id, total_amount, status,
			shipping_name, shipping_street, shipping_city, shipping_state,
			shipping_zip_code, shipping_country, payment_method, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	args := []interface{}{
		o.ID, o.UserID, o.ListingID, o.TotalAmount, string(o.Status),
		o.ShippingAddress.Name, o.ShippingAddress.Street, o.ShippingAddress.City,
		o.ShippingAddress.State, o.ShippingAddress.ZipCode, o.ShippingAddress.Country,
		o.PaymentMethod, o.CreatedAt,
	}

	var err error
	if r.isTx {
		_, err = monitoring.InstrumentTxExec(ctx, r.tx, "INSERT", "orders", query, args...)
	} else {
		_, err = monitoring.InstrumentExec(ctx, r.db, "INSERT", "orders", query, args...)
	}

	return err
}

func (r *AuctionRepository) BeginTx(ctx context.Context) (ports.AuctionRepository, error) {
	if r.isTx {
		return nil, errors.New("transaction already started")
	}

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelSerializable,
	})
	if err != nil {
		return nil, err
	}

	return &AuctionRepository{
		db:   r.db,
		tx:   tx,
		isTx: true,
	}, nil
}

func (r *AuctionRepository) CommitTx(ctx context.Context) error {
	if !r.isTx || r.tx == nil {
		return errors.New("no transaction to commit")
	}

	return r.tx.Commit()
}

func (r *AuctionRepository) RollbackTx(ctx context.Context) error {
	if !r.isTx || r.tx == nil {
		return errors.New("no transaction to rollback")
	}

	return r.tx.Rollback()
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
