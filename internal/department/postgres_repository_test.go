package department_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collegepedia/collegepedia/internal/database/dbtest"
	"github.com/collegepedia/collegepedia/internal/department"
)

func setupDepartmentRepo(t *testing.T) (department.Repository, uuid.UUID) {
	t.Helper()
	pool := dbtest.Open(t)
	return department.NewRepository(pool), createTestCollege(t, pool)
}

// createTestCollege inserts a district and a college directly and returns the college ID.
func createTestCollege(t *testing.T, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	var districtID, collegeID uuid.UUID
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO districts (name) VALUES ('Chennai') RETURNING id`).Scan(&districtID))
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO colleges (name, college_type, district_id) VALUES ('IIT Madras', 'engineering', $1) RETURNING id`,
		districtID).Scan(&collegeID))
	return collegeID
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestCreate_Success(t *testing.T) {
	repo, collegeID := setupDepartmentRepo(t)

	d := &department.Department{CollegeID: collegeID, Name: " Civil ", HODName: strPtr("Dr. Rao"), IntakeCapacity: intPtr(60)}
	require.NoError(t, repo.Create(context.Background(), d))

	assert.NotEqual(t, uuid.Nil, d.ID)
	assert.Equal(t, "Civil", d.Name)
	assert.Equal(t, "Dr. Rao", *d.HODName)
	assert.Equal(t, 60, *d.IntakeCapacity)
}

func TestCreate_UnknownCollege(t *testing.T) {
	repo, _ := setupDepartmentRepo(t)

	err := repo.Create(context.Background(), &department.Department{CollegeID: uuid.New(), Name: "X"})
	assert.ErrorIs(t, err, department.ErrUnknownCollege)
}

func TestListByCollege_OrderedByName(t *testing.T) {
	repo, collegeID := setupDepartmentRepo(t)
	ctx := context.Background()

	for _, name := range []string{"Mechanical", "Aerospace", "Computer Science"} {
		require.NoError(t, repo.Create(ctx, &department.Department{CollegeID: collegeID, Name: name}))
	}

	list, err := repo.ListByCollege(ctx, collegeID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Aerospace", list[0].Name)
	assert.Equal(t, "Mechanical", list[2].Name)

	empty, err := repo.ListByCollege(ctx, uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestUpdate_PartialAndClear(t *testing.T) {
	repo, collegeID := setupDepartmentRepo(t)
	ctx := context.Background()

	d := &department.Department{CollegeID: collegeID, Name: "EEE", HODName: strPtr("Dr. K"), IntakeCapacity: intPtr(30)}
	require.NoError(t, repo.Create(ctx, d))

	updated, err := repo.Update(ctx, d.ID, department.UpdateFields{IntakeCapacity: intPtr(120), HODName: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, "EEE", updated.Name)
	assert.Equal(t, 120, *updated.IntakeCapacity)
	assert.Nil(t, updated.HODName)

	_, err = repo.Update(ctx, uuid.New(), department.UpdateFields{Name: strPtr("x")})
	assert.ErrorIs(t, err, department.ErrDepartmentNotFound)
}

func TestDelete(t *testing.T) {
	repo, collegeID := setupDepartmentRepo(t)
	ctx := context.Background()

	d := &department.Department{CollegeID: collegeID, Name: "Civil"}
	require.NoError(t, repo.Create(ctx, d))

	require.NoError(t, repo.Delete(ctx, d.ID))
	_, err := repo.GetByID(ctx, d.ID)
	assert.ErrorIs(t, err, department.ErrDepartmentNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, d.ID), department.ErrDepartmentNotFound)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
