package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/inkwell/inkwell/internal/api/objects"
	"github.com/inkwell/inkwell/internal/blog"
)

type credentialsForm struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

func bindCredentials(c *gin.Context) (credentialsForm, error) {
	var form credentialsForm
	if err := c.ShouldBind(&form); err != nil {
		return form, fmt.Errorf("%w: %v", blog.ErrValidation, err)
	}
	return form, nil
}

func (r *Router) registerForm(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{"fields": []string{"username", "password"}})
}

func (r *Router) register(c *gin.Context) {
	form, err := bindCredentials(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	user, err := r.service.Register(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respondMessage(c, http.StatusCreated, "account created, please log in", objects.BuildUser(user))
}

func (r *Router) loginForm(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{
		"fields":    []string{"username", "password"},
		"signed_in": principal(c) != nil,
	})
}

// login verifies credentials and issues a session token, both as a cookie
// and in the body for clients that send it as a bearer token
func (r *Router) login(c *gin.Context) {
	form, err := bindCredentials(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	user, err := r.service.Authenticate(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}

	token, expires, err := r.sessions.Issue(user.ID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	r.sessions.SetCookie(c.Writer, token, expires)
	respondMessage(c, http.StatusOK, "signed in", gin.H{
		"user":       objects.BuildUser(user),
		"token":      token,
		"expires_at": expires.UTC().Format(time.RFC3339),
	})
}

// logout clears the cookie and revokes the token so a copied token stops
// working too. Anonymous callers just get the cookie cleared.
func (r *Router) logout(c *gin.Context) {
	if session := currentSession(c); session != nil {
		if err := r.sessions.Revoke(c.Request.Context(), session); err != nil {
			requestLogger(c).Warn("Failed to revoke session", zap.Error(err))
		}
	}
	r.sessions.ClearCookie(c.Writer)
	respondMessage(c, http.StatusOK, "signed out", nil)
}
