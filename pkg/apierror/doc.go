// Package apierror provides the error envelope returned by the JSON API:
// a stable string code, a human-readable message and an HTTP status.
package apierror
