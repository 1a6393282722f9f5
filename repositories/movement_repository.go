package repositories

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/iabigrejinha/iab_finance_backend/config"
	"github.com/iabigrejinha/iab_finance_backend/models"
)

type MovementRepository struct {
	db *sql.DB
}

func NewMovementRepository(db *sql.DB) *MovementRepository {
	return &MovementRepository{db: db}
}

const movementColumns = "id, date, description, amount, type, category_id, created_by, created_at"

func scanMovement(row interface{ Scan(...interface{}) error }) (*models.Movement, error) {
	var m models.Movement
	err := row.Scan(&m.ID, &m.Date, &m.Description, &m.Amount, &m.Type,
		&m.Category, &m.CreatedBy, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MovementRepository) queryMovements(query string, args ...interface{}) ([]models.Movement, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	movements := []models.Movement{}
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		movements = append(movements, *m)
	}
	return movements, rows.Err()
}

// List returns every movement, newest date first.
func (r *MovementRepository) List() ([]models.Movement, error) {
	return r.queryMovements(
		"SELECT " + movementColumns + " FROM movements ORDER BY date DESC, created_at DESC")
}

// ListByCategory returns the movements of one category, newest date first.
func (r *MovementRepository) ListByCategory(categoryID string) ([]models.Movement, error) {
	return r.queryMovements(
		"SELECT "+movementColumns+" FROM movements WHERE category_id = ? ORDER BY date DESC, created_at DESC",
		categoryID)
}

// ListByCategories returns the movements of the given categories, newest
// date first. An empty id set yields an empty list.
func (r *MovementRepository) ListByCategories(categoryIDs []string) ([]models.Movement, error) {
	if len(categoryIDs) == 0 {
		return []models.Movement{}, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(categoryIDs)), ", ")
	args := make([]interface{}, len(categoryIDs))
	for i, id := range categoryIDs {
		args[i] = id
	}
	return r.queryMovements(
		"SELECT "+movementColumns+" FROM movements WHERE category_id IN ("+placeholders+") ORDER BY date DESC, created_at DESC",
		args...)
}

// Get returns one movement, or ErrNotFound.
func (r *MovementRepository) Get(id string) (*models.Movement, error) {
	return scanMovement(r.db.QueryRow("SELECT "+movementColumns+" FROM movements WHERE id = ?", id))
}

// Create inserts a movement.
func (r *MovementRepository) Create(m *models.Movement) error {
	_, err := r.db.Exec(`
		INSERT INTO movements (id, date, description, amount, type, category_id, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Date, m.Description, m.Amount, m.Type, m.Category, m.CreatedBy,
		config.FormatTime(m.CreatedAt))
	return err
}

// Update rewrites the mutable fields. The category is fixed at creation.
func (r *MovementRepository) Update(m *models.Movement) error {
	result, err := r.db.Exec(`
		UPDATE movements SET date = ?, description = ?, amount = ?, type = ?
		WHERE id = ?`,
		m.Date, m.Description, m.Amount, m.Type, m.ID)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a movement by id.
func (r *MovementRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM movements WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CategoryTotals holds the summed movement amounts of one category.
type CategoryTotals struct {
	Income  float64
	Expense float64
}

// TotalsByCategory sums entrada and saida amounts per category in a single
// query. Categories without movements are absent from the result.
func (r *MovementRepository) TotalsByCategory(categoryIDs []string) (map[string]CategoryTotals, error) {
	totals := map[string]CategoryTotals{}
	if len(categoryIDs) == 0 {
		return totals, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(categoryIDs)), ", ")
	args := make([]interface{}, len(categoryIDs))
	for i, id := range categoryIDs {
		args[i] = id
	}

	rows, err := r.db.Query(`
		SELECT category_id,
			COALESCE(SUM(CASE WHEN type = 'entrada' THEN amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN type = 'saida' THEN amount ELSE 0 END), 0)
		FROM movements WHERE category_id IN (`+placeholders+`)
		GROUP BY category_id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var categoryID string
		var t CategoryTotals
		if err := rows.Scan(&categoryID, &t.Income, &t.Expense); err != nil {
			return nil, err
		}
		totals[categoryID] = t
	}
	return totals, rows.Err()
}
