// Package role provides the role registry: named roles and the
// capability grants attached to them. The user service resolves role
// names through this package both to validate mutation input and to
// compute a user's effective capability set.
package role
