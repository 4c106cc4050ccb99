package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"zheliyou/internal/http/middleware"
	"zheliyou/internal/remote"
	"zheliyou/internal/services"
)

// API holds what the handlers need: the service set bound to the anonymous
// backend client and the public app info.
type API struct {
	Services services.Set
	App      AppInfo
}

// services returns the set scoped to the caller's bearer token, if any.
func (a *API) services(c *gin.Context) services.Set {
	return a.Services.WithToken(middleware.GetAccessToken(c))
}

// RespondError sends standard error payload with request_id included.
// The envelope keeps "success":false so clients can treat it like a Failure.
func RespondError(c *gin.Context, status int, message string, err error) {
	payload := gin.H{
		"success":    false,
		"error":      message,
		"request_id": middleware.GetRequestID(c),
	}
	if err != nil {
		payload["details"] = err.Error()
	}
	c.JSON(status, payload)
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		RespondError(c, http.StatusBadRequest, "request body is empty", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid payload", err)
		return false
	}
	return true
}

// respondResult renders r as the success/failure envelope: 200 on success,
// failStatus otherwise.
func respondResult[T any](c *gin.Context, r remote.Result[T], failStatus int) {
	if r.OK() {
		c.JSON(http.StatusOK, r)
		return
	}
	c.JSON(failStatus, r)
}
