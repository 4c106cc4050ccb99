package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"zheliyou/internal/domain/models"
)

type matchStatusRequest struct {
	Status string `json:"status"`
}

// POST /api/matches
func (a *API) CreateMatch(c *gin.Context) {
	var m models.Match
	if !BindJSONOrError(c, &m) {
		return
	}
	res := a.services(c).Matches.CreateMatch(c.Request.Context(), m)
	respondResult(c, res, http.StatusBadRequest)
}

// PUT /api/matches/:id/status
func (a *API) UpdateMatchStatus(c *gin.Context) {
	var req matchStatusRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	res := a.services(c).Matches.UpdateMatchStatus(c.Request.Context(), c.Param("id"), req.Status)
	respondResult(c, res, http.StatusBadRequest)
}
