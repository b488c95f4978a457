package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inkwell/inkwell/internal/api/objects"
)

func (r *Router) dashboard(c *gin.Context) {
	dash, err := r.service.AdminDashboard(c.Request.Context(), principal(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, objects.BuildDashboard(dash))
}

func (r *Router) promote(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}
	user, err := r.service.Promote(c.Request.Context(), principal(c), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "user promoted", objects.BuildUser(user))
}
