package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/coupon-validation-engine/internal/model"
)

// QueryPoolInterface defines the read operations needed by CategoryRepository.
type QueryPoolInterface interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// CategoryRepository reads the category hierarchy.
type CategoryRepository struct {
	pool QueryPoolInterface
}

// NewCategoryRepository creates a new CategoryRepository with the given pool.
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// NewCategoryRepositoryWithPool creates a new CategoryRepository with a custom pool interface.
// This is primarily used for testing.
func NewCategoryRepositoryWithPool(pool QueryPoolInterface) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// FindActiveByNames loads the active categories whose name is in names,
// each with its subcategories and their product categories.
// Returns an empty slice (not nil) when nothing matches.
func (r *CategoryRepository) FindActiveByNames(ctx context.Context, names []string) ([]model.Category, error) {
	if len(names) == 0 {
		return []model.Category{}, nil
	}

	query := `SELECT c.id, c.name, s.id, s.name, p.id, p.name
		FROM categories c
		LEFT JOIN sub_categories s ON s.category_id = c.id
		LEFT JOIN product_categories p ON p.sub_category_id = s.id
		WHERE c.is_active AND c.name = ANY($1)
		ORDER BY c.name, s.name, p.name`

	rows, err := r.pool.Query(ctx, query, names)
	if err != nil {
		return nil, fmt.Errorf("find categories: %w", err)
	}
	defer rows.Close()

	b := newTreeBuilder()
	for rows.Next() {
		var (
			catID    uuid.UUID
			catName  string
			subID    pgtype.UUID
			subName  pgtype.Text
			prodID   pgtype.UUID
			prodName pgtype.Text
		)
		if err := rows.Scan(&catID, &catName, &subID, &subName, &prodID, &prodName); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		b.add(catID, catName, subID, subName, prodID, prodName)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}

	return b.tree(), nil
}

// treeBuilder folds flattened join rows back into the hierarchy, keeping
// first-seen order at every level.
type treeBuilder struct {
	categories []model.Category
	catIndex   map[uuid.UUID]int
	subIndex   map[uuid.UUID][2]int
}

func newTreeBuilder() *treeBuilder {
	return &treeBuilder{
		catIndex: make(map[uuid.UUID]int),
		subIndex: make(map[uuid.UUID][2]int),
	}
}

func (b *treeBuilder) add(catID uuid.UUID, catName string, subID pgtype.UUID, subName pgtype.Text, prodID pgtype.UUID, prodName pgtype.Text) {
	ci, ok := b.catIndex[catID]
	if !ok {
		ci = len(b.categories)
		b.catIndex[catID] = ci
		b.categories = append(b.categories, model.Category{ID: catID, Name: catName, SubCategories: []model.SubCategory{}})
	}
	if !subID.Valid {
		return
	}

	sid := uuid.UUID(subID.Bytes)
	pos, ok := b.subIndex[sid]
	if !ok {
		cat := &b.categories[ci]
		pos = [2]int{ci, len(cat.SubCategories)}
		b.subIndex[sid] = pos
		cat.SubCategories = append(cat.SubCategories, model.SubCategory{
			ID:               sid,
			Name:             subName.String,
			SubSubCategories: []model.ProductCategory{},
		})
	}
	if !prodID.Valid {
		return
	}

	sub := &b.categories[pos[0]].SubCategories[pos[1]]
	sub.SubSubCategories = append(sub.SubSubCategories, model.ProductCategory{
		ID:   uuid.UUID(prodID.Bytes),
		Name: prodName.String,
	})
}

func (b *treeBuilder) tree() []model.Category {
	if b.categories == nil {
		return []model.Category{}
	}
	return b.categories
}
