package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inkwell/inkwell/internal/api/objects"
	"github.com/inkwell/inkwell/internal/blog"
)

// profileForm leaves absent fields untouched. Bio and profile image are
// pointers so an explicit empty value clears them.
type profileForm struct {
	Username        string  `form:"username" json:"username"`
	Password        string  `form:"password" json:"password"`
	ConfirmPassword string  `form:"confirm_password" json:"confirm_password"`
	Bio             *string `form:"bio" json:"bio"`
	ProfileImage    *string `form:"profile_image" json:"profile_image"`
}

func (r *Router) showProfile(c *gin.Context) {
	profile, err := r.service.GetProfile(c.Request.Context(), c.Param("username"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, objects.BuildProfile(profile))
}

func (r *Router) ownProfile(c *gin.Context) {
	profile, err := r.service.GetOwnProfile(c.Request.Context(), principal(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, objects.BuildProfile(profile))
}

func (r *Router) profileForm(c *gin.Context) {
	profile, err := r.service.GetOwnProfile(c.Request.Context(), principal(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"user":   objects.BuildUser(profile.User),
		"fields": []string{"username", "password", "confirm_password", "bio", "profile_image"},
	})
}

func (r *Router) editProfile(c *gin.Context) {
	var form profileForm
	if err := c.ShouldBind(&form); err != nil {
		abortWithError(c, fmt.Errorf("%w: %v", blog.ErrValidation, err))
		return
	}
	user, err := r.service.UpdateProfile(c.Request.Context(), principal(c), blog.ProfileInput{
		Username:        form.Username,
		Password:        form.Password,
		ConfirmPassword: form.ConfirmPassword,
		Bio:             form.Bio,
		ProfileImage:    form.ProfileImage,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	// author names are embedded in cached listings
	r.invalidateListings(c.Request.Context())
	respondMessage(c, http.StatusOK, "profile updated", objects.BuildUser(user))
}
