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

type CategoryRepoSuite struct {
	suite.Suite
	db         *sql.DB
	categories *CategoryRepository
	movements  *MovementRepository
}

func (s *CategoryRepoSuite) SetupTest() {
	db, err := config.OpenDB(":memory:")
	require.NoError(s.T(), err, "failed to open test database")
	s.db = db
	s.categories = NewCategoryRepository(db)
	s.movements = NewMovementRepository(db)
	require.NoError(s.T(), s.categories.Seed())
}

func (s *CategoryRepoSuite) TearDownTest() {
	if s.db != nil {
		s.db.Close()
	}
}

func (s *CategoryRepoSuite) TestSeedIsIdempotent() {
	require.NoError(s.T(), s.categories.Seed())

	all, err := s.categories.List()
	require.NoError(s.T(), err)
	assert.Len(s.T(), all, len(models.SystemCategories))
	for _, c := range all {
		assert.True(s.T(), c.IsSystem)
	}
}

func (s *CategoryRepoSuite) TestCreateDerivesSlug() {
	category := &models.Category{ID: "c1", Name: "Eventos Especiais!!", Icon: "Calendar", Color: "purple"}
	require.NoError(s.T(), s.categories.Create(category))
	assert.Equal(s.T(), "eventos-especiais", category.Slug)

	loaded, err := s.categories.GetBySlug("eventos-especiais")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "c1", loaded.ID)
	assert.False(s.T(), loaded.IsSystem)
}

func (s *CategoryRepoSuite) TestCreateSlugCollisionNumbering() {
	// "Cantinas" collides with the seeded system category.
	first := &models.Category{ID: "c1", Name: "Cantinas", Icon: "Coffee", Color: "amber"}
	require.NoError(s.T(), s.categories.Create(first))
	assert.Equal(s.T(), "cantinas-2", first.Slug)

	second := &models.Category{ID: "c2", Name: "Cantinas!", Icon: "Coffee", Color: "amber"}
	require.NoError(s.T(), s.categories.Create(second))
	assert.Equal(s.T(), "cantinas-3", second.Slug)
}

func (s *CategoryRepoSuite) TestDeleteCascadeRemovesMovementsTransactionally() {
	custom := &models.Category{ID: "reforma", Name: "Reforma", Icon: "Wrench", Color: "blue"}
	require.NoError(s.T(), s.categories.Create(custom))

	for i, categoryID := range []string{"reforma", "reforma", "cantinas"} {
		require.NoError(s.T(), s.movements.Create(&models.Movement{
			ID:          string(rune('a' + i)),
			Date:        "2026-08-01",
			Description: "teste",
			Amount:      10,
			Type:        models.MovementIncome,
			Category:    categoryID,
			CreatedBy:   "u1",
			CreatedAt:   time.Now(),
		}))
	}

	removed, err := s.categories.DeleteCascade("reforma")
	require.NoError(s.T(), err)
	assert.EqualValues(s.T(), 2, removed)

	_, err = s.categories.GetByID("reforma")
	assert.ErrorIs(s.T(), err, ErrNotFound)

	remaining, err := s.movements.List()
	require.NoError(s.T(), err)
	require.Len(s.T(), remaining, 1)
	assert.Equal(s.T(), "cantinas", remaining[0].Category)
}

func (s *CategoryRepoSuite) TestDeleteCascadeUnknownCategory() {
	_, err := s.categories.DeleteCascade("missing")
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *CategoryRepoSuite) TestPublicOrSystemIDs() {
	public := &models.Category{ID: "pub", Name: "Bazar", Icon: "Gift", Color: "pink", IsPublic: true}
	private := &models.Category{ID: "priv", Name: "Reserva", Icon: "Lock", Color: "gray"}
	require.NoError(s.T(), s.categories.Create(public))
	require.NoError(s.T(), s.categories.Create(private))

	ids, err := s.categories.PublicOrSystemIDs()
	require.NoError(s.T(), err)
	assert.Len(s.T(), ids, len(models.SystemCategories)+1)
	assert.Contains(s.T(), ids, "pub")
	assert.NotContains(s.T(), ids, "priv")
}

func (s *CategoryRepoSuite) TestUpdateKeepsSlug() {
	category := &models.Category{ID: "c1", Name: "Bazar", Icon: "Gift", Color: "pink"}
	require.NoError(s.T(), s.categories.Create(category))

	category.Name = "Bazar Missionário"
	require.NoError(s.T(), s.categories.Update(category))

	loaded, err := s.categories.GetByID("c1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Bazar Missionário", loaded.Name)
	assert.Equal(s.T(), "bazar", loaded.Slug)
}

func (s *CategoryRepoSuite) TestUpdateUnknownCategory() {
	err := s.categories.Update(&models.Category{ID: "missing", Name: "x", Icon: "y", Color: "z"})
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

func TestCategoryRepoSuite(t *testing.T) {
	suite.Run(t, new(CategoryRepoSuite))
}
