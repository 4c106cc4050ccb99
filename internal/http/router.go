package api

import (
	"log"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"

	"zheliyou/internal/app"
	h "zheliyou/internal/http/handlers"
	"zheliyou/internal/http/middleware"
)

func NewRouter(w *app.Wire) *gin.Engine {
	info := h.DefaultAppInfo
	info.Backend = w.Env.Backend
	a := &h.API{Services: w.Services, App: info}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(),
		gin.Recovery(),
		middleware.CORS(w.Env.CORSAllowedOrigins),
		middleware.BearerToken(),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"success": false,
			"error":   "route not found",
			"path":    c.Request.URL.Path,
			"method":  c.Request.Method,
		})
	})

	api := r.Group("/api")
	{
		api.GET("/health", a.Health)
		api.GET("/config", a.Config)
		api.GET("/routes", h.Routes)

		// Auth
		auth := api.Group("/auth", middleware.RateLimit(middleware.NewIPRateLimiter(w.Env.AuthRateLimit)))
		auth.POST("/signup", a.SignUp)
		auth.POST("/login", a.Login)
		auth.POST("/logout", a.Logout)
		auth.GET("/me", a.Me)

		// Profiles
		profiles := api.Group("/profiles")
		profiles.GET("", a.ListProfiles)
		profiles.POST("", a.CreateProfile)
		profiles.GET("/:id", a.GetProfile)
		profiles.PUT("/:id", a.UpdateProfile)

		users := api.Group("/users")
		users.GET("/:id/trips", a.ListUserTrips)
		users.GET("/:id/matches", a.ListUserMatches)

		// Trips
		trips := api.Group("/trips")
		trips.GET("", a.ListTrips)
		trips.POST("", a.CreateTrip)
		trips.GET("/:id", a.GetTrip)
		trips.PUT("/:id", a.UpdateTrip)
		trips.DELETE("/:id", a.DeleteTrip)
		trips.GET("/:id/itinerary.pdf", a.GetTripItineraryPDF)

		// Matches
		matches := api.Group("/matches")
		matches.POST("", a.CreateMatch)
		matches.PUT("/:id/status", a.UpdateMatchStatus)

		api.GET("/attractions", a.ListAttractions)

		// Realtime (SSE)
		rt := api.Group("/realtime")
		rt.GET("/trips", a.StreamTrips)
		rt.GET("/matches/:userId", a.StreamMatches)
	}

	h.SetRouter(r)
	return r
}
