package db

import (
	"strings"

	"gorm.io/gorm"
)

// CategoryMatcher restricts a post query to posts in a category. It is the
// single place that knows how category membership is stored.
type CategoryMatcher interface {
	Apply(query *gorm.DB, category string) *gorm.DB
}

// SubstringMatcher treats a post as belonging to a category when its tags
// contain the category name, ignoring case. Wildcards in the category are
// matched literally.
type SubstringMatcher struct{}

// Apply implements CategoryMatcher
func (SubstringMatcher) Apply(query *gorm.DB, category string) *gorm.DB {
	pattern := "%" + escapeLike(strings.ToLower(category)) + "%"
	return query.Where("LOWER(tags) LIKE ? ESCAPE '\\'", pattern)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
