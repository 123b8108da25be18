package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, username, password_hash, display_name, slug, url, email,
	description, first_name, last_name, nickname, roles, extra_caps, registered`

// PostgresUserRepository implements UserRepository over a pgx pool.
type PostgresUserRepository struct {
	pool   *pgxpool.Pool
	hasher PasswordHasher
}

// NewPostgresUserRepository creates a new PostgreSQL-backed user repository.
func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{
		pool:   pool,
		hasher: &BcryptHasher{},
	}
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.DisplayName, &u.Slug,
		&u.URL, &u.Email, &u.Description, &u.FirstName, &u.LastName, &u.Nickname,
		&u.Roles, &u.ExtraCaps, &u.Registered)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, err
	}
	if u.ExtraCaps == nil {
		u.ExtraCaps = map[string]bool{}
	}
	return u, nil
}

// GetUser resolves a user by id.
func (r *PostgresUserRepository) GetUser(ctx context.Context, id int64) (User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// FindUsers returns users matching the query in query order.
func (r *PostgresUserRepository) FindUsers(ctx context.Context, query UserQuery) ([]User, error) {
	var where []string
	var args []any

	if query.Search != "" {
		args = append(args, "%"+query.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(username ILIKE $%d OR email ILIKE $%d OR display_name ILIKE $%d)", n, n, n))
	}
	if query.Role != "" {
		args = append(args, query.Role)
		where = append(where, fmt.Sprintf("$%d = ANY(roles)", len(args)))
	}

	// Order column is validated against a fixed list; it never comes
	// from the SQL arguments.
	orderBy := "username"
	switch query.OrderBy {
	case "id", "email", "registered":
		orderBy = query.OrderBy
	}
	dir := "ASC"
	if strings.EqualFold(query.Order, "desc") {
		dir = "DESC"
	}

	sql := `SELECT ` + userColumns + ` FROM users`
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	sql += fmt.Sprintf(" ORDER BY %s %s", orderBy, dir)
	if query.Number > 0 {
		args = append(args, query.Number)
		sql += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if query.Offset > 0 {
		args = append(args, query.Offset)
		sql += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CreateUser inserts a new user, hashing the password.
func (r *PostgresUserRepository) CreateUser(ctx context.Context, params UserParams) (User, error) {
	var passwordHash string
	if params.Password != nil {
		hash, err := r.hasher.Hash(*params.Password)
		if err != nil {
			return User{}, err
		}
		passwordHash = hash
	}

	username := deref(params.Username)
	displayName := deref(params.Name)
	if displayName == "" {
		displayName = username
	}
	slug := deref(params.Slug)
	if slug == "" {
		slug = slugify(username)
	}
	var roles []string
	if params.Role != nil {
		roles = []string{*params.Role}
	}

	var exists bool
	if err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists); err != nil {
		return User{}, err
	}
	if exists {
		return User{}, ErrUsernameTaken
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (username, password_hash, display_name, slug, url, email,
			description, first_name, last_name, nickname, roles, extra_caps)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, '{}')
		RETURNING `+userColumns,
		username, passwordHash, displayName, slug, deref(params.URL), deref(params.Email),
		deref(params.Description), deref(params.FirstName), deref(params.LastName),
		deref(params.Nickname), roles)
	return scanUser(row)
}

// UpdateUser applies only the present fields of params.
func (r *PostgresUserRepository) UpdateUser(ctx context.Context, params UserParams) (User, error) {
	set := []string{}
	args := []any{params.ID}

	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.Username != nil {
		add("username", *params.Username)
	}
	if params.Password != nil {
		hash, err := r.hasher.Hash(*params.Password)
		if err != nil {
			return User{}, err
		}
		add("password_hash", hash)
	}
	if params.Name != nil {
		add("display_name", *params.Name)
	}
	if params.FirstName != nil {
		add("first_name", *params.FirstName)
	}
	if params.LastName != nil {
		add("last_name", *params.LastName)
	}
	if params.Nickname != nil {
		add("nickname", *params.Nickname)
	}
	if params.Slug != nil && *params.Slug != "" {
		add("slug", *params.Slug)
	}
	if params.URL != nil {
		add("url", *params.URL)
	}
	if params.Description != nil {
		add("description", *params.Description)
	}
	if params.Email != nil {
		add("email", *params.Email)
	}
	if params.Role != nil {
		add("roles", []string{*params.Role})
	}

	if len(set) == 0 {
		return r.GetUser(ctx, params.ID)
	}

	row := r.pool.QueryRow(ctx,
		`UPDATE users SET `+strings.Join(set, ", ")+` WHERE id = $1 RETURNING `+userColumns,
		args...)
	return scanUser(row)
}

// DeleteUser removes a user inside one transaction. Authored posts are
// reassigned when requested, deleted otherwise.
func (r *PostgresUserRepository) DeleteUser(ctx context.Context, id int64, reassign *int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if reassign != nil {
		if _, err := tx.Exec(ctx,
			`UPDATE posts SET author_id = $1 WHERE author_id = $2`, *reassign, id); err != nil {
			return err
		}
	} else {
		if _, err := tx.Exec(ctx, `DELETE FROM posts WHERE author_id = $1`, id); err != nil {
			return err
		}
	}

	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return tx.Commit(ctx)
}
