package handlers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"zheliyou/internal/domain/models"
	"zheliyou/internal/http/middleware"
	"zheliyou/internal/realtime"
	"zheliyou/internal/remote"
	"zheliyou/internal/utils"
)

// KeepAlive is the interval between SSE comment pings on idle streams.
var KeepAlive = 25 * time.Second

const streamBuffer = 32

// GET /api/realtime/trips
func (a *API) StreamTrips(c *gin.Context) {
	a.stream(c, "trips", func(listener realtime.Listener) remote.Result[*realtime.Subscription] {
		return a.services(c).Realtime.SubscribeToTrips(c.Request.Context(), listener)
	})
}

// GET /api/realtime/matches/:userId
func (a *API) StreamMatches(c *gin.Context) {
	userID := c.Param("userId")
	a.stream(c, "matches", func(listener realtime.Listener) remote.Result[*realtime.Subscription] {
		return a.services(c).Realtime.SubscribeToMatches(c.Request.Context(), userID, listener)
	})
}

// stream relays change events as Server-Sent Events until the client goes
// away. A slow client loses events rather than blocking the subscription.
func (a *API) stream(c *gin.Context, table string, subscribe func(realtime.Listener) remote.Result[*realtime.Subscription]) {
	events := make(chan models.ChangeEvent, streamBuffer)
	listener := func(e models.ChangeEvent) {
		select {
		case events <- e:
		default:
			utils.LogEvent(middleware.GetRequestID(c), "realtime", "stream", "client too slow, event dropped table="+table)
		}
	}

	res := subscribe(listener)
	sub, ok := res.Value()
	if !ok {
		respondResult(c, res, http.StatusBadRequest)
		return
	}
	defer sub.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("ready", gin.H{"table": table})
	c.Writer.Flush()

	ping := time.NewTicker(KeepAlive)
	defer ping.Stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case e := <-events:
			c.SSEvent(string(e.Type), e)
			return true
		case <-ping.C:
			_, err := fmt.Fprint(w, ": ping\n\n")
			return err == nil
		}
	})
}
