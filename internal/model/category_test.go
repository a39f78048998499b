package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCategoryContext(t *testing.T) {
	ctx := ParseCategoryContext(" Electronics , Books", "", "Phones,, ,Tablets")

	assert.Equal(t, []string{"Electronics", "Books"}, ctx.Category)
	assert.Empty(t, ctx.SubCategory)
	assert.Equal(t, []string{"Phones", "Tablets"}, ctx.ProductCategory)
}
