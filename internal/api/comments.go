package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inkwell/inkwell/internal/api/objects"
	"github.com/inkwell/inkwell/internal/blog"
)

type commentForm struct {
	Content string `form:"content" json:"content"`
}

func bindComment(c *gin.Context) (string, error) {
	var form commentForm
	if err := c.ShouldBind(&form); err != nil {
		return "", fmt.Errorf("%w: %v", blog.ErrValidation, err)
	}
	return form.Content, nil
}

func (r *Router) addComment(c *gin.Context) {
	postID, err := idParam(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}
	content, err := bindComment(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	comment, err := r.service.AddComment(c.Request.Context(), principal(c), postID, content)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respondMessage(c, http.StatusCreated, "comment added", objects.BuildComment(comment))
}

func (r *Router) editComment(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}
	content, err := bindComment(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	comment, err := r.service.EditComment(c.Request.Context(), principal(c), id, content)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "comment updated", objects.BuildComment(comment))
}

func (r *Router) deleteComment(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}
	comment, err := r.service.DeleteComment(c.Request.Context(), principal(c), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "comment deleted", gin.H{"id": id, "post_id": comment.PostID})
}
