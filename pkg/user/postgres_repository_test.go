package user

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDatabase(t *testing.T) (*pgxpool.Pool, func()) {
	ctx := context.Background()

	dbName := "users_db"
	dbUser := "users"
	dbPassword := "pwd"

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithInitScripts(filepath.Join("../../migrations", "users_db.sql")),
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	require.NoError(t, err)

	connString, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	poolConfig, err := pgxpool.ParseConfig(connString)
	require.NoError(t, err)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

func TestPostgresUserRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	pool, cleanup := setupTestDatabase(t)
	defer cleanup()

	repo := NewPostgresUserRepository(pool)

	created, err := repo.CreateUser(ctx, UserParams{
		Username: strPtr("pg_user"),
		Password: strPtr("pg_password"),
		Email:    strPtr("pg@example.com"),
		Role:     strPtr("author"),
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "pg_user", created.Username)
	assert.Equal(t, []string{"author"}, created.Roles)
	assert.NotEmpty(t, created.PasswordHash)
	assert.NotEqual(t, "pg_password", created.PasswordHash)

	t.Run("get", func(t *testing.T) {
		got, err := repo.GetUser(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "pg@example.com", got.Email)

		_, err = repo.GetUser(ctx, 9999)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := repo.CreateUser(ctx, UserParams{
			Username: strPtr("pg_user"),
			Password: strPtr("pw"),
			Email:    strPtr("other@example.com"),
		})
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("sparse update preserves password", func(t *testing.T) {
		before, err := repo.GetUser(ctx, created.ID)
		require.NoError(t, err)

		updated, err := repo.UpdateUser(ctx, UserParams{
			ID:        created.ID,
			FirstName: strPtr("Paula"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Paula", updated.FirstName)
		assert.Equal(t, before.PasswordHash, updated.PasswordHash)
	})

	t.Run("find ordered", func(t *testing.T) {
		_, err := repo.CreateUser(ctx, UserParams{
			Username: strPtr("another"),
			Password: strPtr("pw"),
			Email:    strPtr("another@example.com"),
		})
		require.NoError(t, err)

		users, err := repo.FindUsers(ctx, UserQuery{Number: 10})
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "another", users[0].Username)
		assert.Equal(t, "pg_user", users[1].Username)

		users, err = repo.FindUsers(ctx, UserQuery{Search: "pg_"})
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "pg_user", users[0].Username)
	})

	t.Run("delete with reassignment", func(t *testing.T) {
		heir, err := repo.CreateUser(ctx, UserParams{
			Username: strPtr("heir"),
			Password: strPtr("pw"),
			Email:    strPtr("heir@example.com"),
		})
		require.NoError(t, err)

		_, err = pool.Exec(ctx,
			`INSERT INTO posts (author_id, title) VALUES ($1, 'a post')`, created.ID)
		require.NoError(t, err)

		err = repo.DeleteUser(ctx, created.ID, &heir.ID)
		require.NoError(t, err)

		var count int
		require.NoError(t, pool.QueryRow(ctx,
			`SELECT count(*) FROM posts WHERE author_id = $1`, heir.ID).Scan(&count))
		assert.Equal(t, 1, count)

		_, err = repo.GetUser(ctx, created.ID)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}
