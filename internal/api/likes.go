package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inkwell/inkwell/internal/blog"
)

// like adds the caller's like. Repeating it reports already_liked with a
// 200 and changes nothing.
func (r *Router) like(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}
	ctx := c.Request.Context()
	result, err := r.service.Like(ctx, principal(c), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if result == blog.Liked {
		r.invalidateListings(ctx)
	}

	likes, err := r.service.LikeCount(ctx, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"post_id": id,
		"status":  result.String(),
		"likes":   likes,
	})
}

func (r *Router) unlike(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}
	ctx := c.Request.Context()
	removed, err := r.service.Unlike(ctx, principal(c), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	status := "not_liked"
	if removed {
		status = "unliked"
		r.invalidateListings(ctx)
	}

	likes, err := r.service.LikeCount(ctx, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"post_id": id,
		"status":  status,
		"likes":   likes,
	})
}
