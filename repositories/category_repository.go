package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iabigrejinha/iab_finance_backend/config"
	"github.com/iabigrejinha/iab_finance_backend/models"
	"github.com/iabigrejinha/iab_finance_backend/utils"
)

type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Seed inserts the built-in system categories that are missing. Safe to run
// on every startup.
func (r *CategoryRepository) Seed() error {
	for _, c := range models.SystemCategories {
		_, err := r.db.Exec(`
			INSERT OR IGNORE INTO categories (id, name, icon, color, slug, is_system, is_public)
			VALUES (?, ?, ?, ?, ?, 1, ?)`,
			c.ID, c.Name, c.Icon, c.Color, c.Slug, c.IsPublic)
		if err != nil {
			return err
		}
	}
	return nil
}

const categoryColumns = "id, name, icon, color, slug, is_system, is_public, created_at, updated_at"

func scanCategory(row interface{ Scan(...interface{}) error }) (*models.Category, error) {
	var c models.Category
	err := row.Scan(&c.ID, &c.Name, &c.Icon, &c.Color, &c.Slug,
		&c.IsSystem, &c.IsPublic, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories ordered by name.
func (r *CategoryRepository) List() ([]models.Category, error) {
	rows, err := r.db.Query("SELECT " + categoryColumns + " FROM categories ORDER BY name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

// GetByID returns one category, or ErrNotFound.
func (r *CategoryRepository) GetByID(id string) (*models.Category, error) {
	return scanCategory(r.db.QueryRow("SELECT "+categoryColumns+" FROM categories WHERE id = ?", id))
}

// GetBySlug returns one category by slug, or ErrNotFound.
func (r *CategoryRepository) GetBySlug(slug string) (*models.Category, error) {
	return scanCategory(r.db.QueryRow("SELECT "+categoryColumns+" FROM categories WHERE slug = ?", slug))
}

// Create inserts a new non-system category. The slug is derived from the
// name; on collision a numeric suffix is appended (cantinas, cantinas-2,
// cantinas-3, ...) until a free one is found.
func (r *CategoryRepository) Create(category *models.Category) error {
	base := utils.Slugify(category.Name)
	if base == "" {
		base = "categoria"
	}

	slug := base
	for n := 2; ; n++ {
		var exists int
		err := r.db.QueryRow("SELECT COUNT(*) FROM categories WHERE slug = ?", slug).Scan(&exists)
		if err != nil {
			return err
		}
		if exists == 0 {
			break
		}
		slug = fmt.Sprintf("%s-%d", base, n)
	}
	category.Slug = slug

	now := time.Now()
	category.CreatedAt = now
	category.UpdatedAt = now
	_, err := r.db.Exec(`
		INSERT INTO categories (id, name, icon, color, slug, is_system, is_public, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 0, ?, ?, ?)`,
		category.ID, category.Name, category.Icon, category.Color, category.Slug,
		category.IsPublic, config.FormatTime(category.CreatedAt), config.FormatTime(category.UpdatedAt))
	return err
}

// Update rewrites the mutable fields of a category. The slug never changes
// after creation so stored links stay valid.
func (r *CategoryRepository) Update(category *models.Category) error {
	category.UpdatedAt = time.Now()
	result, err := r.db.Exec(`
		UPDATE categories SET name = ?, icon = ?, color = ?, is_public = ?, updated_at = ?
		WHERE id = ?`,
		category.Name, category.Icon, category.Color, category.IsPublic,
		config.FormatTime(category.UpdatedAt), category.ID)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCascade removes the category and every movement under it in one
// transaction, so a failure midway leaves both intact. Returns the number
// of movements removed.
func (r *CategoryRepository) DeleteCascade(id string) (int64, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	result, err := tx.Exec("DELETE FROM movements WHERE category_id = ?", id)
	if err != nil {
		return 0, err
	}
	removed, _ := result.RowsAffected()

	if _, err := tx.Exec("DELETE FROM user_categories WHERE category_id = ?", id); err != nil {
		return 0, err
	}

	result, err = tx.Exec("DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return 0, err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return 0, ErrNotFound
	}
	return removed, tx.Commit()
}

// IDs returns every category id.
func (r *CategoryRepository) IDs() ([]string, error) {
	return r.idQuery("SELECT id FROM categories")
}

// PublicOrSystemIDs returns the ids visible to the viewer role.
func (r *CategoryRepository) PublicOrSystemIDs() ([]string, error) {
	return r.idQuery("SELECT id FROM categories WHERE is_system = 1 OR is_public = 1")
}

func (r *CategoryRepository) idQuery(query string) ([]string, error) {
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
