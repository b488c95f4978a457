package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/inkwell/inkwell/internal/api/objects"
	"github.com/inkwell/inkwell/internal/blog"
	"github.com/inkwell/inkwell/internal/cache"
)

// postsGeneration is the cache generation counter bumped by every change
// that shows up in a listing
const postsGeneration = "posts"

type postForm struct {
	Title   string `form:"title" json:"title"`
	Content string `form:"content" json:"content"`
	Image   string `form:"image" json:"image"`
	Tags    string `form:"tags" json:"tags"`
}

func (f postForm) input() blog.PostInput {
	return blog.PostInput{Title: f.Title, Content: f.Content, Image: f.Image, Tags: f.Tags}
}

// idParam parses a positive numeric path parameter. Anything else names a
// resource that cannot exist.
func idParam(c *gin.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", blog.ErrNotFound, raw)
	}
	return id, nil
}

// pageRequest reads ?page= and ?page_size=. Unparseable values fall back to
// the defaults; range clamping happens in the service.
func pageRequest(c *gin.Context) blog.PageRequest {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("page_size"))
	return blog.PageRequest{Page: page, PageSize: size}
}

func (r *Router) index(c *gin.Context) {
	r.respondListing(c, "", blog.PageRequest{PageSize: pageRequest(c).PageSize})
}

func (r *Router) category(c *gin.Context) {
	r.respondListing(c, c.Param("tag"), blog.PageRequest{PageSize: pageRequest(c).PageSize})
}

func (r *Router) loadPosts(c *gin.Context) {
	r.respondListing(c, "", pageRequest(c))
}

func (r *Router) loadCategoryPosts(c *gin.Context) {
	r.respondListing(c, c.Param("tag"), pageRequest(c))
}

func (r *Router) respondListing(c *gin.Context, category string, req blog.PageRequest) {
	page, err := r.listing(c.Request.Context(), category, req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, page)
}

// listing loads a listing page through the Redis cache when one is
// configured. Cache failures degrade to a direct database read.
func (r *Router) listing(ctx context.Context, category string, req blog.PageRequest) (*objects.Page, error) {
	load := func() (*objects.Page, error) {
		var (
			page *blog.Page
			err  error
		)
		if category == "" {
			page, err = r.service.ListPosts(ctx, req)
		} else {
			page, err = r.service.ListByCategory(ctx, category, req)
		}
		if err != nil {
			return nil, err
		}
		return objects.BuildPage(page, category), nil
	}

	if r.cache == nil {
		return load()
	}

	gen, err := r.cache.Generation(ctx, postsGeneration)
	if err != nil {
		r.logger.Warn("Failed to read listing generation", zap.Error(err))
		return load()
	}
	key := listingKey(gen, category, r.service.NormalizePage(req))

	var cached objects.Page
	switch err := r.cache.GetJSON(ctx, key, &cached); {
	case err == nil:
		return &cached, nil
	case !errors.Is(err, cache.ErrMiss):
		r.logger.Warn("Failed to read cached listing", zap.Error(err))
	}

	page, err := load()
	if err != nil {
		return nil, err
	}
	if err := r.cache.SetJSON(ctx, key, page, r.listingTTL); err != nil {
		r.logger.Warn("Failed to cache listing", zap.Error(err))
	}
	return page, nil
}

// listingKey names a cached listing page. req must already be normalized so
// every spelling of the same page shares one entry.
func listingKey(gen int64, category string, req blog.PageRequest) string {
	return "listing:" + cache.HashKey(
		postsGeneration,
		strconv.FormatInt(gen, 10),
		category,
		strconv.Itoa(req.Page),
		strconv.Itoa(req.PageSize),
	)
}

// invalidateListings drops every cached listing page
func (r *Router) invalidateListings(ctx context.Context) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Bump(ctx, postsGeneration); err != nil {
		r.logger.Warn("Failed to invalidate listings", zap.Error(err))
	}
}

func (r *Router) showPost(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}
	detail, err := r.service.GetPost(c.Request.Context(), principal(c), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, objects.BuildPostDetail(detail))
}

func (r *Router) writeForm(c *gin.Context) {
	category := c.Param("category")
	respond(c, http.StatusOK, gin.H{
		"category": category,
		"tags":     category,
		"fields":   []string{"title", "content", "image", "tags"},
	})
}

func (r *Router) write(c *gin.Context) {
	var form postForm
	if err := c.ShouldBind(&form); err != nil {
		abortWithError(c, fmt.Errorf("%w: %v", blog.ErrValidation, err))
		return
	}
	in := form.input()
	in.Tags = blog.TagsWithCategory(c.Param("category"), form.Tags)

	ctx := c.Request.Context()
	post, err := r.service.CreatePost(ctx, principal(c), in)
	if err != nil {
		abortWithError(c, err)
		return
	}
	r.invalidateListings(ctx)
	respondMessage(c, http.StatusCreated, "post published", objects.BuildPost(post, 0, 0))
}

func (r *Router) editPost(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}
	var form postForm
	if err := c.ShouldBind(&form); err != nil {
		abortWithError(c, fmt.Errorf("%w: %v", blog.ErrValidation, err))
		return
	}

	ctx := c.Request.Context()
	post, err := r.service.EditPost(ctx, principal(c), id, form.input())
	if err != nil {
		abortWithError(c, err)
		return
	}
	r.invalidateListings(ctx)
	likes, err := r.service.LikeCount(ctx, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "post updated", objects.BuildPost(post, likes, 0))
}

// deletePost serves both /delete/{id} and /admin/delete_post/{id}; the
// service applies the author-or-admin rule either way.
func (r *Router) deletePost(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}
	ctx := c.Request.Context()
	if err := r.service.DeletePost(ctx, principal(c), id); err != nil {
		abortWithError(c, err)
		return
	}
	r.invalidateListings(ctx)
	respondMessage(c, http.StatusOK, "post deleted", gin.H{"id": id})
}
