// Package categories provides a net/http handler that returns the design
// category tree as JSON options for the submission form's category picker.
//
// The handler answers GET and HEAD with {"data": [...], "total": n}. The q
// parameter ranks options fuzzily, group narrows them to one top-level
// category and limit is clamped to the configured maximum. Failures carry a
// JSON {"error": "..."} body.
package categories
