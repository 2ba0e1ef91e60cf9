package district_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collegepedia/collegepedia/internal/database/dbtest"
	"github.com/collegepedia/collegepedia/internal/district"
)

func setupDistrictRepo(t *testing.T) district.Repository {
	t.Helper()
	return district.NewRepository(dbtest.Open(t))
}

// --- Create Tests ---

func TestCreate_Success(t *testing.T) {
	repo := setupDistrictRepo(t)

	d := &district.District{Name: "  Coimbatore "}
	require.NoError(t, repo.Create(context.Background(), d))

	assert.NotEqual(t, uuid.Nil, d.ID)
	assert.Equal(t, "Coimbatore", d.Name)
	assert.False(t, d.CreatedAt.IsZero())
}

func TestCreate_DuplicateName(t *testing.T) {
	repo := setupDistrictRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &district.District{Name: "Madurai"}))

	err := repo.Create(ctx, &district.District{Name: "Madurai"})
	assert.ErrorIs(t, err, district.ErrDuplicateDistrictName)
}

// --- GetByID Tests ---

func TestGetByID_Success(t *testing.T) {
	repo := setupDistrictRepo(t)
	ctx := context.Background()

	d := &district.District{Name: "Salem"}
	require.NoError(t, repo.Create(ctx, d))

	found, err := repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "Salem", found.Name)
}

func TestGetByID_NotFound(t *testing.T) {
	repo := setupDistrictRepo(t)

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, district.ErrDistrictNotFound)
}

// --- List Tests ---

func TestList_OrderedByNameWithCounts(t *testing.T) {
	pool := dbtest.Open(t)
	repo := district.NewRepository(pool)
	ctx := context.Background()

	vellore := &district.District{Name: "Vellore"}
	require.NoError(t, repo.Create(ctx, vellore))
	require.NoError(t, repo.Create(ctx, &district.District{Name: "Chennai"}))

	_, err := pool.Exec(ctx,
		`INSERT INTO colleges (name, college_type, district_id) VALUES ('VIT', 'engineering', $1)`, vellore.ID)
	require.NoError(t, err)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Chennai", list[0].Name)
	assert.Equal(t, 0, list[0].CollegeCount)
	assert.Equal(t, "Vellore", list[1].Name)
	assert.Equal(t, 1, list[1].CollegeCount)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestList_Empty(t *testing.T) {
	repo := setupDistrictRepo(t)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}
