package user

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// InMemoryUserRepository implements UserRepository using in-memory
// storage. It is the substitutable fake used in tests and demo runs.
type InMemoryUserRepository struct {
	mu       sync.RWMutex
	users    map[int64]User
	authored map[int64]int // userID -> authored content count
	nextID   int64
	hasher   PasswordHasher
}

// NewInMemoryUserRepository creates a new in-memory user repository.
func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		users:    make(map[int64]User),
		authored: make(map[int64]int),
		nextID:   1,
		hasher:   &BcryptHasher{},
	}
}

// GetUser resolves a user by id.
func (r *InMemoryUserRepository) GetUser(ctx context.Context, id int64) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return cloneUser(user), nil
}

// FindUsers returns users matching the query in query order.
func (r *InMemoryUserRepository) FindUsers(ctx context.Context, query UserQuery) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]User, 0, len(r.users))
	for _, u := range r.users {
		if query.Search != "" && !matchesSearch(u, query.Search) {
			continue
		}
		if query.Role != "" && !hasRole(u, query.Role) {
			continue
		}
		matched = append(matched, cloneUser(u))
	}

	desc := strings.EqualFold(query.Order, "desc")
	sort.Slice(matched, func(i, j int) bool {
		var less bool
		switch query.OrderBy {
		case "id":
			less = matched[i].ID < matched[j].ID
		case "email":
			less = matched[i].Email < matched[j].Email
		case "registered":
			less = matched[i].Registered.Before(matched[j].Registered)
		default:
			less = matched[i].Username < matched[j].Username
		}
		if desc {
			return !less
		}
		return less
	})

	if query.Offset >= len(matched) {
		return []User{}, nil
	}
	matched = matched[query.Offset:]
	if query.Number > 0 && query.Number < len(matched) {
		matched = matched[:query.Number]
	}
	return matched, nil
}

// CreateUser inserts a new user, hashing the password and assigning the
// next id.
func (r *InMemoryUserRepository) CreateUser(ctx context.Context, params UserParams) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	username := deref(params.Username)
	for _, existing := range r.users {
		if existing.Username == username {
			return User{}, ErrUsernameTaken
		}
	}

	user := User{
		ID:         r.nextID,
		Username:   username,
		ExtraCaps:  map[string]bool{},
		Registered: time.Now().UTC(),
	}
	r.nextID++

	if params.Password != nil {
		hash, err := r.hasher.Hash(*params.Password)
		if err != nil {
			return User{}, err
		}
		user.PasswordHash = hash
	}
	applyParams(&user, params)
	if user.DisplayName == "" {
		user.DisplayName = user.Username
	}
	if user.Slug == "" {
		user.Slug = slugify(user.Username)
	}

	r.users[user.ID] = user
	return cloneUser(user), nil
}

// UpdateUser applies the present fields of params to an existing user.
func (r *InMemoryUserRepository) UpdateUser(ctx context.Context, params UserParams) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[params.ID]
	if !ok {
		return User{}, ErrUserNotFound
	}

	if params.Password != nil {
		hash, err := r.hasher.Hash(*params.Password)
		if err != nil {
			return User{}, err
		}
		user.PasswordHash = hash
	}
	applyParams(&user, params)

	r.users[user.ID] = user
	return cloneUser(user), nil
}

// DeleteUser removes a user, reassigning authored content first when
// requested.
func (r *InMemoryUserRepository) DeleteUser(ctx context.Context, id int64, reassign *int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return ErrUserNotFound
	}
	if reassign != nil {
		if _, ok := r.users[*reassign]; !ok {
			return ErrUserNotFound
		}
		r.authored[*reassign] += r.authored[id]
	}
	delete(r.authored, id)
	delete(r.users, id)
	return nil
}

// SetAuthoredCount records how much content a user has authored. Only
// used to exercise reassignment behavior.
func (r *InMemoryUserRepository) SetAuthoredCount(id int64, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.authored[id] = count
}

// AuthoredCount returns the authored content count for a user.
func (r *InMemoryUserRepository) AuthoredCount(id int64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.authored[id]
}

// applyParams copies the present, non-credential fields of params onto
// the user. Password handling stays with the callers since it goes
// through the hasher.
func applyParams(user *User, params UserParams) {
	if params.Username != nil {
		user.Username = *params.Username
	}
	if params.Name != nil {
		user.DisplayName = *params.Name
	}
	if params.FirstName != nil {
		user.FirstName = *params.FirstName
	}
	if params.LastName != nil {
		user.LastName = *params.LastName
	}
	if params.Nickname != nil {
		user.Nickname = *params.Nickname
	}
	if params.Slug != nil && *params.Slug != "" {
		user.Slug = *params.Slug
	}
	if params.URL != nil {
		user.URL = *params.URL
	}
	if params.Description != nil {
		user.Description = *params.Description
	}
	if params.Email != nil {
		user.Email = *params.Email
	}
	if params.Role != nil {
		user.Roles = []string{*params.Role}
	}
}

func matchesSearch(u User, search string) bool {
	s := strings.ToLower(search)
	return strings.Contains(strings.ToLower(u.Username), s) ||
		strings.Contains(strings.ToLower(u.Email), s) ||
		strings.Contains(strings.ToLower(u.DisplayName), s)
}

func hasRole(u User, role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func cloneUser(u User) User {
	c := u
	c.Roles = append([]string(nil), u.Roles...)
	c.ExtraCaps = make(map[string]bool, len(u.ExtraCaps))
	for k, v := range u.ExtraCaps {
		c.ExtraCaps[k] = v
	}
	return c
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, " ", "-")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
