package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/tmcc-dev/designform/pkg/design"
	"github.com/tmcc-dev/designform/pkg/errtree"
	"github.com/tmcc-dev/designform/pkg/render"
	"github.com/tmcc-dev/designform/pkg/validation"
)

// errInvalid makes the process exit non-zero after the report is printed.
var errInvalid = errors.New("submission is invalid")

// readSubmission decodes a JSON or YAML submission file; "-" reads stdin.
func readSubmission(path string, stdin io.Reader) (design.Submission, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return design.Submission{}, fmt.Errorf("read submission: %w", err)
	}
	var sub design.Submission
	if err := yaml.Unmarshal(data, &sub); err != nil {
		return design.Submission{}, fmt.Errorf("parse submission %s: %w", path, err)
	}
	return sub, nil
}

type report struct {
	Valid         bool               `json:"valid"`
	VersionString string             `json:"versionString,omitempty"`
	Errors        *errtree.Tree      `json:"errors,omitempty"`
	Issues        []validation.Issue `json:"issues,omitempty"`
}

func (a *app) validateCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Validate a JSON or YAML submission file",
		Long: `Validate a submission file and print the result.

The json format prints the error tree, html renders the form page with inline
errors and text prints a readable summary. The exit status is 1 when the
submission is invalid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := readSubmission(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			result, err := validation.ValidateWith(cmd.Context(), validation.DefaultSchema(), sub)
			if err != nil {
				return err
			}
			a.logger.Debug("validated submission",
				zap.String("file", args[0]),
				zap.Bool("valid", result.Valid),
				zap.Int("issues", len(result.Issues)),
			)

			out := cmd.OutOrStdout()
			if format == "json" {
				rep := report{Valid: result.Valid}
				if result.Valid {
					rep.VersionString = design.VersionString(sub.Versions)
				} else {
					rep.Errors = errtree.Map(result.Issues)
					rep.Issues = result.Issues
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(rep); err != nil {
					return err
				}
			} else {
				registry, err := render.Default()
				if err != nil {
					return err
				}
				renderer, err := registry.Get(format)
				if err != nil {
					return fmt.Errorf("unknown format %q (json, %v)", format, registry.Names())
				}
				body, err := renderer.Render(cmd.Context(), render.View{
					Submission: sub,
					Errors:     errtree.Map(result.Issues),
				})
				if err != nil {
					return err
				}
				if _, err := out.Write(body); err != nil {
					return err
				}
			}
			if !result.Valid {
				return fmt.Errorf("%w: %d problems", errInvalid, len(result.Issues))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json, text or html")
	return cmd
}

func (a *app) versionStringCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version-string FILE",
		Short: "Print the combined version string of a submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := readSubmission(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), design.VersionString(sub.Versions))
			return err
		},
	}
}
