// Package user implements the user resource: CRUD operations against a
// pluggable identity store, capability-based permission checks, and
// context-dependent response shaping for the JSON API.
package user
