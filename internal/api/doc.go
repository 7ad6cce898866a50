// Package api contains the HTTP handlers for the generation endpoints and
// the mapping from classified operation errors to HTTP responses.
package api
