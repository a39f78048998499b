package service

import (
	"slices"

	"github.com/fairyhunter13/coupon-validation-engine/internal/model"
)

// MatchCategoryContext reports whether any node matches the purchase context
// at any level: the node itself against ctx.Category, one of its children
// against ctx.SubCategory, or one of its grandchildren against
// ctx.ProductCategory. Nodes and children match by id or name.
func MatchCategoryContext(nodes []model.Category, ctx model.CategoryContext) bool {
	for _, node := range nodes {
		if containsRef(ctx.Category, node.ID.String(), node.Name) {
			return true
		}
		for _, sub := range node.SubCategories {
			if containsRef(ctx.SubCategory, sub.ID.String(), sub.Name) {
				return true
			}
		}
		for _, sub := range node.SubCategories {
			for _, leaf := range sub.SubSubCategories {
				if containsRef(ctx.ProductCategory, leaf.ID.String(), leaf.Name) {
					return true
				}
			}
		}
	}
	return false
}

func containsRef(refs []string, id, name string) bool {
	return slices.Contains(refs, id) || slices.Contains(refs, name)
}
