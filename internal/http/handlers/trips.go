package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"zheliyou/internal/domain/models"
)

// GET /api/trips
func (a *API) ListTrips(c *gin.Context) {
	res := a.services(c).Trips.GetAllTrips(c.Request.Context())
	respondResult(c, res, http.StatusBadRequest)
}

// POST /api/trips
func (a *API) CreateTrip(c *gin.Context) {
	var trip models.Trip
	if !BindJSONOrError(c, &trip) {
		return
	}
	res := a.services(c).Trips.CreateTrip(c.Request.Context(), trip)
	respondResult(c, res, http.StatusBadRequest)
}

// GET /api/trips/:id
func (a *API) GetTrip(c *gin.Context) {
	res := a.services(c).Trips.GetTripByID(c.Request.Context(), c.Param("id"))
	respondResult(c, res, http.StatusBadRequest)
}

// PUT /api/trips/:id
func (a *API) UpdateTrip(c *gin.Context) {
	var updates map[string]any
	if !BindJSONOrError(c, &updates) {
		return
	}
	res := a.services(c).Trips.UpdateTrip(c.Request.Context(), c.Param("id"), updates)
	respondResult(c, res, http.StatusBadRequest)
}

// DELETE /api/trips/:id
func (a *API) DeleteTrip(c *gin.Context) {
	res := a.services(c).Trips.DeleteTrip(c.Request.Context(), c.Param("id"))
	respondResult(c, res, http.StatusBadRequest)
}
