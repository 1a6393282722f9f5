package repositories

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/iabigrejinha/iab_finance_backend/config"
	"github.com/iabigrejinha/iab_finance_backend/models"
)

type MovementRepoSuite struct {
	suite.Suite
	db        *sql.DB
	movements *MovementRepository
}

func (s *MovementRepoSuite) SetupTest() {
	db, err := config.OpenDB(":memory:")
	require.NoError(s.T(), err, "failed to open test database")
	s.db = db
	s.movements = NewMovementRepository(db)
	require.NoError(s.T(), NewCategoryRepository(db).Seed())
}

func (s *MovementRepoSuite) TearDownTest() {
	if s.db != nil {
		s.db.Close()
	}
}

func (s *MovementRepoSuite) add(id, date, categoryID, movType string, amount float64) {
	require.NoError(s.T(), s.movements.Create(&models.Movement{
		ID:          id,
		Date:        date,
		Description: "teste",
		Amount:      amount,
		Type:        movType,
		Category:    categoryID,
		CreatedBy:   "u1",
		CreatedAt:   time.Now(),
	}))
}

func (s *MovementRepoSuite) TestListOrdersByDateDescending() {
	s.add("a", "2026-08-01", "cantinas", models.MovementIncome, 10)
	s.add("b", "2026-08-15", "jovens", models.MovementExpense, 5)
	s.add("c", "2026-08-10", "cantinas", models.MovementIncome, 20)

	all, err := s.movements.List()
	require.NoError(s.T(), err)
	require.Len(s.T(), all, 3)
	assert.Equal(s.T(), []string{"b", "c", "a"}, []string{all[0].ID, all[1].ID, all[2].ID})
}

func (s *MovementRepoSuite) TestListByCategories() {
	s.add("a", "2026-08-01", "cantinas", models.MovementIncome, 10)
	s.add("b", "2026-08-02", "jovens", models.MovementIncome, 10)
	s.add("c", "2026-08-03", "missoes", models.MovementIncome, 10)

	subset, err := s.movements.ListByCategories([]string{"cantinas", "jovens"})
	require.NoError(s.T(), err)
	assert.Len(s.T(), subset, 2)

	empty, err := s.movements.ListByCategories(nil)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), empty)
}

func (s *MovementRepoSuite) TestUpdateAndDelete() {
	s.add("a", "2026-08-01", "cantinas", models.MovementIncome, 10)

	m, err := s.movements.Get("a")
	require.NoError(s.T(), err)
	m.Amount = 25.50
	m.Type = models.MovementExpense
	require.NoError(s.T(), s.movements.Update(m))

	updated, err := s.movements.Get("a")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 25.50, updated.Amount)
	assert.Equal(s.T(), models.MovementExpense, updated.Type)
	assert.Equal(s.T(), "cantinas", updated.Category)

	require.NoError(s.T(), s.movements.Delete("a"))
	assert.ErrorIs(s.T(), s.movements.Delete("a"), ErrNotFound)
	_, err = s.movements.Get("a")
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *MovementRepoSuite) TestTotalsByCategory() {
	s.add("a", "2026-08-01", "cantinas", models.MovementIncome, 100)
	s.add("b", "2026-08-02", "cantinas", models.MovementExpense, 40)
	s.add("c", "2026-08-03", "jovens", models.MovementIncome, 7)

	totals, err := s.movements.TotalsByCategory([]string{"cantinas", "jovens", "missoes"})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), CategoryTotals{Income: 100, Expense: 40}, totals["cantinas"])
	assert.Equal(s.T(), CategoryTotals{Income: 7}, totals["jovens"])
	_, ok := totals["missoes"]
	assert.False(s.T(), ok, "categories without movements stay absent")

	totals, err = s.movements.TotalsByCategory(nil)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), totals)
}

func (s *MovementRepoSuite) TestCreatedAtStoredInTimestampTextFormat() {
	s.add("a", "2026-08-01", "cantinas", models.MovementIncome, 10)

	// Stored timestamps must text-compare cleanly against CURRENT_TIMESTAMP.
	var matching int
	require.NoError(s.T(), s.db.QueryRow(`
		SELECT COUNT(*) FROM movements
		WHERE created_at GLOB '[0-9][0-9][0-9][0-9]-[0-9][0-9]-[0-9][0-9] [0-9][0-9]:[0-9][0-9]:[0-9][0-9]'`,
	).Scan(&matching))
	assert.Equal(s.T(), 1, matching)
}

func TestMovementRepoSuite(t *testing.T) {
	suite.Run(t, new(MovementRepoSuite))
}
