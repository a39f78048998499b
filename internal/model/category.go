package model

import (
	"strings"

	"github.com/google/uuid"
)

// Category is the root of the three-level catalog tree:
// category → subCategory → productCategory.
type Category struct {
	ID            uuid.UUID     `json:"id"`
	Name          string        `json:"name"`
	SubCategories []SubCategory `json:"subCategories"`
}

// SubCategory is the second level of the catalog tree.
type SubCategory struct {
	ID               uuid.UUID         `json:"id"`
	Name             string            `json:"name"`
	SubSubCategories []ProductCategory `json:"subSubCategories"`
}

// ProductCategory is a leaf of the catalog tree.
type ProductCategory struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// CategoryContext scopes a purchase. Each list holds category names or ids
// for one level of the tree.
type CategoryContext struct {
	Category        []string
	SubCategory     []string
	ProductCategory []string
}

// ParseCategoryContext builds a CategoryContext from comma-separated lists.
func ParseCategoryContext(category, subCategory, productCategory string) CategoryContext {
	return CategoryContext{
		Category:        splitList(category),
		SubCategory:     splitList(subCategory),
		ProductCategory: splitList(productCategory),
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
