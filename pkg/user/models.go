package user

import "time"

// Context is the requested visibility level for a read or write.
type Context string

const (
	ContextView        Context = "view"
	ContextViewPrivate Context = "view-private"
	ContextEdit        Context = "edit"
)

// User is the identity entity owned by the store. The ID is assigned by
// the store at creation and never changes.
type User struct {
	ID           int64           `json:"id"`
	Username     string          `json:"username"`
	PasswordHash string          `json:"-"`
	DisplayName  string          `json:"name"`
	Slug         string          `json:"slug"`
	URL          string          `json:"url"`
	Email        string          `json:"email"`
	Description  string          `json:"description"`
	FirstName    string          `json:"first_name"`
	LastName     string          `json:"last_name"`
	Nickname     string          `json:"nickname"`
	Roles        []string        `json:"roles"`
	ExtraCaps    map[string]bool `json:"extra_capabilities"`
	Registered   time.Time       `json:"registered"`
}

// UserParams is a sparse mutation record. A nil pointer means the field
// is absent from the input: left untouched on update, unset on create.
type UserParams struct {
	ID          int64
	Username    *string
	Password    *string
	Name        *string
	FirstName   *string
	LastName    *string
	Nickname    *string
	Slug        *string
	URL         *string
	Description *string
	Email       *string
	Role        *string
}

// UserQuery describes a filtered, paged user listing.
type UserQuery struct {
	Search  string
	Role    string
	OrderBy string
	Order   string
	Number  int
	Offset  int
}

// Shaped is a context-shaped response payload for a single user.
type Shaped map[string]any

// DeleteResult is the confirmation payload for a successful delete.
type DeleteResult struct {
	Message string `json:"message"`
}
