package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type signUpRequest struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     map[string]any `json:"data"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/auth/signup
func (a *API) SignUp(c *gin.Context) {
	var req signUpRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	res := a.Services.Auth.SignUp(c.Request.Context(), req.Email, req.Password, req.Data)
	respondResult(c, res, http.StatusBadRequest)
}

// POST /api/auth/login
func (a *API) Login(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	res := a.Services.Auth.SignIn(c.Request.Context(), req.Email, req.Password)
	respondResult(c, res, http.StatusUnauthorized)
}

// POST /api/auth/logout
func (a *API) Logout(c *gin.Context) {
	res := a.services(c).Auth.SignOut(c.Request.Context())
	respondResult(c, res, http.StatusUnauthorized)
}

// GET /api/auth/me
// The signed-in user is returned under "user" rather than "data".
func (a *API) Me(c *gin.Context) {
	res := a.services(c).Auth.GetCurrentUser(c.Request.Context())
	if user, ok := res.Value(); ok {
		c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
		return
	}
	respondResult(c, res, http.StatusUnauthorized)
}
