package seed

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skulz/skubackend/internal/app/migrations"
	"github.com/skulz/skubackend/internal/app/repositories"
	"github.com/skulz/skubackend/internal/db"
)

func setupTestDB(t *testing.T) *db.PostgresDB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, migrations.NewMigrator(pool).MigrateFromDirectory("../../migrations"))
	return &db.PostgresDB{Pool: pool}
}

func TestEnsureBaseline_Idempotent(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()
	lgr := zerolog.Nop()

	require.NoError(t, EnsureBaseline(ctx, database, lgr))
	require.NoError(t, EnsureBaseline(ctx, database, lgr))

	count := func(query string, args ...interface{}) int64 {
		var n int64
		require.NoError(t, database.Pool.QueryRow(ctx, query, args...).Scan(&n))
		return n
	}

	assert.EqualValues(t, 1, count(
		"SELECT COUNT(*) FROM schools WHERE code = $1", defaultSchoolCode))
	assert.EqualValues(t, 1, count(
		"SELECT COUNT(*) FROM users WHERE email = $1", defaultAdminEmail))

	repos := repositories.NewRepositories(database)

	school, err := repos.SchoolRepository.GetByCode(ctx, defaultSchoolCode)
	require.NoError(t, err)
	assert.True(t, school.IsActive)

	eligible, err := repos.SchoolRepository.HasActiveSubscription(ctx, school.ID)
	require.NoError(t, err)
	assert.True(t, eligible, "default school carries an active subscription")

	admin, err := repos.UserRepository.GetByEmail(ctx, defaultAdminEmail)
	require.NoError(t, err)
	assert.True(t, admin.IsSuperuser)
	require.NotNil(t, admin.Role)
	assert.EqualValues(t, "admin", admin.Role.Role)

	// The backfill ran twice without duplicating memberships.
	assert.EqualValues(t, 1, count(
		"SELECT COUNT(*) FROM user_schools WHERE user_id = $1 AND school_id = $2",
		admin.ID, school.ID))
}
