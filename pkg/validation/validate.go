package validation

import (
	"context"

	"github.com/tmcc-dev/designform/pkg/design"
)

// Issue describes a single rule violation.
type Issue struct {
	Path    Path   `json:"path"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func newIssue(path Path, message string) Issue {
	return Issue{Path: path, Field: path.String(), Message: message}
}

// Result captures the outcome of validating a submission.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

var (
	pathDesigners         = Path{Key("designers")}
	pathCredits           = Path{Key("credits")}
	pathVersions          = Path{Key("versions")}
	pathVariants          = Path{Key("rates"), Key("variants")}
	pathConsumedResources = Path{Key("rates"), Key("consumedResources")}
)

// Validate runs every rule of the schema against sub. Rules never
// short-circuit: each violated rule contributes one issue, in declaration
// order.
func (s Schema) Validate(sub design.Submission) Result {
	var issues []Issue
	issues = s.Root.collect(sub, nil, issues)
	issues = s.Designers.collect(sub.Designers, pathDesigners, issues)
	issues = s.Credits.collect(sub.Credits, pathCredits, issues)
	issues = s.Versions.collect(sub.Versions, pathVersions, issues)
	issues = s.Variants.collect(sub.Rates.Variants, pathVariants, issues)
	issues = s.ConsumedResources.collect(sub.Rates.ConsumedResources, pathConsumedResources, issues)
	return Result{Valid: len(issues) == 0, Issues: issues}
}

var defaultSchema = DefaultSchema()

// Validate checks sub against the default submission rules.
func Validate(sub design.Submission) Result {
	return defaultSchema.Validate(sub)
}

// ValidateWith validates sub with schema unless ctx is already done.
func ValidateWith(ctx context.Context, schema Schema, sub design.Submission) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return schema.Validate(sub), nil
}
