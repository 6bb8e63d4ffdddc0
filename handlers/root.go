package handlers

import (
	"net/http"

	"github.com/openballot/openballot/middleware"
	"github.com/openballot/openballot/models"
)

// APIRoot handles GET / and lists the resource collections.
func APIRoot(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.APIRoot{
		Polls:   "/polls",
		Options: "/options",
		Votes:   "/votes",
	})
}
