package router

import (
	"database/sql"
	"net/http"

	"github.com/openballot/openballot/cliparse"
	"github.com/openballot/openballot/handlers"
	"github.com/openballot/openballot/identity"
	"github.com/openballot/openballot/ledger"
	"github.com/openballot/openballot/middleware"
	"github.com/openballot/openballot/store"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize dependencies
	resolver := identity.NewResolver(cfg.JWTSecret, cfg.SessionCookie)
	pollStore := store.New(db)
	voteLedger := ledger.New(db)

	pollHandler := handlers.NewPollHandler(pollStore, resolver)
	optionHandler := handlers.NewOptionHandler(pollStore, resolver)
	voteHandler := handlers.NewVoteHandler(voteLedger, resolver)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Polls
	mux.HandleFunc("GET /polls", middleware.WithLogging(pollHandler.List))
	mux.HandleFunc("POST /polls", middleware.WithLogging(pollHandler.Create))
	mux.HandleFunc("GET /polls/{id}", middleware.WithLogging(pollHandler.Get))
	mux.HandleFunc("PUT /polls/{id}", middleware.WithLogging(pollHandler.Update))
	mux.HandleFunc("DELETE /polls/{id}", middleware.WithLogging(pollHandler.Delete))

	// Options
	mux.HandleFunc("GET /options", middleware.WithLogging(optionHandler.List))
	mux.HandleFunc("POST /options", middleware.WithLogging(optionHandler.Create))
	mux.HandleFunc("GET /options/{id}", middleware.WithLogging(optionHandler.Get))
	mux.HandleFunc("PUT /options/{id}", middleware.WithLogging(optionHandler.Update))
	mux.HandleFunc("DELETE /options/{id}", middleware.WithLogging(optionHandler.Delete))

	// Votes
	mux.HandleFunc("GET /votes", middleware.WithLogging(voteHandler.List))
	mux.HandleFunc("POST /votes", middleware.WithLogging(voteHandler.Create))
	mux.HandleFunc("GET /votes/{id}", middleware.WithLogging(voteHandler.Get))
	mux.HandleFunc("PUT /votes/{id}", middleware.WithLogging(voteHandler.Update))
	mux.HandleFunc("DELETE /votes/{id}", middleware.WithLogging(voteHandler.Delete))

	// API root
	mux.HandleFunc("GET /{$}", middleware.WithLogging(handlers.APIRoot))

	return mux
}
