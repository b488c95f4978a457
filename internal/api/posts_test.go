package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"github.com/inkwell/inkwell/internal/auth"
	"github.com/inkwell/inkwell/internal/blog"
	"github.com/inkwell/inkwell/internal/db"
	"github.com/inkwell/inkwell/internal/db/dbtest"
)

func TestListingKeySharesClampedPages(t *testing.T) {
	database := dbtest.New(t)
	service := blog.NewService(db.NewRepository(database.DB), auth.NewPasswords(bcrypt.MinCost), blog.Options{})

	key := func(req blog.PageRequest) string {
		return listingKey(3, "music", service.NormalizePage(req))
	}

	first := key(blog.PageRequest{Page: 1, PageSize: 10})
	assert.Equal(t, first, key(blog.PageRequest{Page: 0}))
	assert.Equal(t, first, key(blog.PageRequest{Page: -3, PageSize: -1}))
	assert.NotEqual(t, first, key(blog.PageRequest{Page: 2, PageSize: 10}))
	assert.NotEqual(t, first, listingKey(4, "music", service.NormalizePage(blog.PageRequest{Page: 1})))
}
