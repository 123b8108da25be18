package role

// Role is a named set of capability grants.
type Role struct {
	Name         string          `json:"name"`
	Label        string          `json:"label"`
	Capabilities map[string]bool `json:"capabilities"`
}

// DefaultRoles returns the standard role tiers and their grants. The
// capability names are the ones the user service checks: edit_posts
// marks contributor-tier users and above, the user management
// capabilities belong to administrators.
func DefaultRoles() []Role {
	return []Role{
		{
			Name:  "administrator",
			Label: "Administrator",
			Capabilities: map[string]bool{
				"read":           true,
				"edit_posts":     true,
				"publish_posts":  true,
				"manage_options": true,
				"list_users":     true,
				"create_users":   true,
				"edit_users":     true,
				"delete_users":   true,
			},
		},
		{
			Name:  "editor",
			Label: "Editor",
			Capabilities: map[string]bool{
				"read":              true,
				"edit_posts":        true,
				"edit_others_posts": true,
				"publish_posts":     true,
			},
		},
		{
			Name:  "author",
			Label: "Author",
			Capabilities: map[string]bool{
				"read":          true,
				"edit_posts":    true,
				"publish_posts": true,
			},
		},
		{
			Name:  "contributor",
			Label: "Contributor",
			Capabilities: map[string]bool{
				"read":       true,
				"edit_posts": true,
			},
		},
		{
			Name:  "subscriber",
			Label: "Subscriber",
			Capabilities: map[string]bool{
				"read": true,
			},
		},
	}
}
