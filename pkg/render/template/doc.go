// Package template defines the template engine contract used by the page
// renderers. The pongo sub package provides the pongo2 implementation.
package template
