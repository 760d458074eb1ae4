package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tmcc-dev/designform/pkg/catalogue"
	"github.com/tmcc-dev/designform/pkg/design"
	"github.com/tmcc-dev/designform/pkg/errtree"
	"github.com/tmcc-dev/designform/pkg/render"
	"github.com/tmcc-dev/designform/pkg/renderers/tui"
	"github.com/tmcc-dev/designform/pkg/validation"
)

func (a *app) promptCmd() *cobra.Command {
	var (
		from      string
		pretty    bool
		maxRounds int
	)
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Enter a submission interactively",
		Long: `Walk through a submission in the terminal. With --from the answers start
from an existing file; when that file already fails validation only the
failing fields are asked for.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			view := render.View{Submission: design.NewSubmission()}
			if from != "" {
				sub, err := readSubmission(from, cmd.InOrStdin())
				if err != nil {
					return err
				}
				view.Submission = sub
				if result := validation.Validate(sub); !result.Valid {
					view.Errors = errtree.Map(result.Issues)
				}
			}

			var names []string
			for _, c := range catalogue.DefaultCategories() {
				names = append(names, c.Name)
			}
			format := tui.OutputFormatJSON
			if pretty {
				format = tui.OutputFormatPrettyText
			}
			renderer, err := tui.New(
				tui.WithPromptDriver(tui.NewSurveyDriver(cmd.ErrOrStderr())),
				tui.WithOutputFormat(format),
				tui.WithCategories(names...),
				tui.WithMaxRounds(maxRounds),
				tui.WithLogger(a.logger.Named("prompt")),
			)
			if err != nil {
				return err
			}
			out, err := renderer.Render(cmd.Context(), view)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "start from this JSON or YAML submission")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "print a readable summary instead of JSON")
	cmd.Flags().IntVar(&maxRounds, "max-rounds", 3, "correction rounds before giving up")
	return cmd
}
