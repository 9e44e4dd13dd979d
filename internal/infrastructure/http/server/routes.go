package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gallerio/auction-service/internal/infrastructure/http/middleware"
	"github.com/gallerio/auction-service/internal/infrastructure/monitoring"
)

func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/health", s.healthHandler.HandleHealth())

	mux.HandleFunc("/auctions/active", s.auctionHandler.HandleGetActiveAuctions)
	mux.HandleFunc("/bids", s.bidHandler.HandlePlaceBid())
	mux.HandleFunc("/listings", s.handleListingCollection)
	mux.HandleFunc("/listings/", s.handleListingRoutes)
	mux.HandleFunc("/users/", s.handleUserRoutes)

	handler := middleware.NewRecoveryMiddleware(s.logger)(mux)
	handler = middleware.NewLoggingMiddleware(s.logger)(handler)
	handler = monitoring.WrapHandler(handler)
	handler = s.corsMiddleware(handler)
	handler = s.timeoutMiddleware(handler)

	return handler
}

func (s *Server) handleListingCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.listingHandler.HandleCreateListing(w, r)
	case http.MethodGet:
		s.listingHandler.HandleListListings(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleListingRoutes(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/listings/")
	parts := strings.Split(path, "/")

	if len(parts) == 1 && parts[0] != "" {
		switch r.Method {
		case http.MethodGet:
			s.listingHandler.HandleGetListing(w, r)
			return
		case http.MethodDelete:
			s.listingHandler.HandleDeleteListing(w, r)
			return
		}
	} else if len(parts) == 2 && parts[0] != "" {
		switch {
		case parts[1] == "bids" && r.Method == http.MethodGet:
			s.bidHandler.HandleGetListingBids(w, r)
			return
		case parts[1] == "auction" && r.Method == http.MethodPost:
			s.listingHandler.HandleStartAuction(w, r)
			return
		}
	}

	http.NotFound(w, r)
}

func (s *Server) handleUserRoutes(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/users/")
	parts := strings.Split(path, "/")

	if len(parts) == 2 && parts[0] != "" && parts[1] == "bids" && r.Method == http.MethodGet {
		s.bidHandler.HandleGetUserBids(w, r)
		return
	}

	http.NotFound(w, r)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-User-ID")
		w.Header().Set("Access-Control-Max-Age", "300")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) timeoutMiddleware(next http.Handler) http.Handler {
	return http.TimeoutHandler(next, 90*time.Second, "Request timeout")
}
