package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// GET /api/attractions?city=
func (a *API) ListAttractions(c *gin.Context) {
	svc := a.services(c).Attractions
	if city := strings.TrimSpace(c.Query("city")); city != "" {
		respondResult(c, svc.GetAttractionsByCity(c.Request.Context(), city), http.StatusBadRequest)
		return
	}
	respondResult(c, svc.GetAllAttractions(c.Request.Context()), http.StatusBadRequest)
}
