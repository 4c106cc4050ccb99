package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetTripItineraryPDF returns the trip itinerary (inline).
func (a *API) GetTripItineraryPDF(c *gin.Context) {
	res := a.services(c).Docs.TripItinerary(c.Request.Context(), c.Param("id"))
	doc, ok := res.Value()
	if !ok {
		respondResult(c, res, http.StatusBadRequest)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+doc.Filename+`"`)
	c.Data(http.StatusOK, doc.ContentType, doc.Content)
}
