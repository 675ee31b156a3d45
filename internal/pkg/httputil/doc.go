// Package httputil provides shared JSON response helpers for handlers.
//
// Handlers use these instead of raw http.ResponseWriter calls so every
// endpoint returns the same error envelope: {"error": "...", "code": "..."}.
package httputil
