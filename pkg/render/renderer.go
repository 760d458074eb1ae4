// Package render turns a submission and its error tree into an HTML page or a
// plain-text summary.
package render

import (
	"context"

	"github.com/tmcc-dev/designform/pkg/design"
	"github.com/tmcc-dev/designform/pkg/errtree"
)

// View is the state a renderer draws: the record being edited plus the
// current error tree.
type View struct {
	Submission design.Submission
	Errors     *errtree.Tree
	// Action is the URL the rendered form posts to.
	Action string
	// Categories lists the category options offered for the record.
	Categories []string
}

// Renderer converts a View into a byte representation.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, view View) ([]byte, error)
}
