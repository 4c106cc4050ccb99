package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"zheliyou/internal/domain/models"
)

// GET /api/profiles?exclude=<id>
func (a *API) ListProfiles(c *gin.Context) {
	res := a.services(c).Users.GetAllUsers(c.Request.Context(), c.Query("exclude"))
	respondResult(c, res, http.StatusBadRequest)
}

// POST /api/profiles
func (a *API) CreateProfile(c *gin.Context) {
	var p models.UserProfile
	if !BindJSONOrError(c, &p) {
		return
	}
	res := a.services(c).Users.CreateUserProfile(c.Request.Context(), p)
	respondResult(c, res, http.StatusBadRequest)
}

// GET /api/profiles/:id
func (a *API) GetProfile(c *gin.Context) {
	res := a.services(c).Users.GetUserProfile(c.Request.Context(), c.Param("id"))
	respondResult(c, res, http.StatusBadRequest)
}

// PUT /api/profiles/:id
func (a *API) UpdateProfile(c *gin.Context) {
	var updates map[string]any
	if !BindJSONOrError(c, &updates) {
		return
	}
	res := a.services(c).Users.UpdateUserProfile(c.Request.Context(), c.Param("id"), updates)
	respondResult(c, res, http.StatusBadRequest)
}

// GET /api/users/:id/trips
func (a *API) ListUserTrips(c *gin.Context) {
	res := a.services(c).Trips.GetUserTrips(c.Request.Context(), c.Param("id"))
	respondResult(c, res, http.StatusBadRequest)
}

// GET /api/users/:id/matches
func (a *API) ListUserMatches(c *gin.Context) {
	res := a.services(c).Matches.GetUserMatches(c.Request.Context(), c.Param("id"))
	respondResult(c, res, http.StatusBadRequest)
}
