package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/project-planner/internal/model"
	"github.com/fairyhunter13/project-planner/internal/session"
)

func newGenerateCmd(o *options) *cobra.Command {
	var (
		projectType string
		scripting   bool
		complexity  string
		tech        string
	)

	cmd := &cobra.Command{
		Use:   "generate <project name>",
		Short: "Generate project ideas (costs one token)",
		Long: `Generate a set of project ideas for a named creation. One token is spent
when the ideas come back. Reusing the name of an existing creation spends a
token but keeps the stored ideas of that creation unchanged.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.start(cmd.Context())
			if err != nil {
				return err
			}

			w := s.NewWizard()
			if err := w.SetName(args[0]); err != nil {
				return err
			}
			if err := w.Configure(session.Options{
				ProjectType:              parseProjectType(projectType),
				IncludeScriptingLanguage: scripting,
				Complexity:               parseComplexity(complexity),
				AdditionalTechnologies:   tech,
			}); err != nil {
				return err
			}

			if !o.json() {
				fmt.Fprintf(cmd.ErrOrStderr(), "Generating ideas for %q...\n", w.Name())
			}
			view, err := runGeneration(cmd.Context(), w)
			if err != nil {
				return err
			}
			return o.printResults(cmd.OutOrStdout(), view, s.Ledger.Balance())
		},
	}

	cmd.Flags().StringVarP(&projectType, "type", "t", string(model.ProjectTypeFullStack), "project type: Frontend|Backend|FullStack")
	cmd.Flags().BoolVar(&scripting, "js", false, "use JavaScript instead of TypeScript (Frontend only)")
	cmd.Flags().StringVarP(&complexity, "complexity", "c", string(model.ComplexityMedium), "complexity: Easy|Medium|Hard")
	cmd.Flags().StringVar(&tech, "tech", "", "additional technologies, free text")

	return cmd
}

// runGeneration starts a generation on w and waits for it to settle.
func runGeneration(ctx context.Context, w *session.Wizard) (session.ResultsView, error) {
	out, err := w.Generate(ctx)
	if err != nil {
		return session.ResultsView{}, err
	}
	select {
	case outcome := <-out:
		return outcome.View, outcome.Err
	case <-ctx.Done():
		return session.ResultsView{}, session.NewError(session.KindTransport, "the request was cancelled", ctx.Err())
	}
}

func (o *options) printResults(w io.Writer, view session.ResultsView, balance int) error {
	if o.json() {
		return printJSON(w, map[string]any{
			"name":       view.Source.CreationName(),
			"ideas":      view.Ideas,
			"tokenCount": balance,
		})
	}
	printIdeas(w, fmt.Sprintf("Ideas for %s", view.Source.CreationName()), view.Ideas)
	if view.Source.Kind == session.SourceFresh {
		fmt.Fprintf(w, "\nTokens left: %d\n", balance)
	}
	return nil
}

// parseProjectType matches case-insensitively. Unknown values pass through
// and fail validation with the usual message.
func parseProjectType(s string) model.ProjectType {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", "")) {
	case "frontend":
		return model.ProjectTypeFrontend
	case "backend":
		return model.ProjectTypeBackend
	case "fullstack":
		return model.ProjectTypeFullStack
	}
	return model.ProjectType(s)
}

func parseComplexity(s string) model.Complexity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return model.ComplexityEasy
	case "medium":
		return model.ComplexityMedium
	case "hard":
		return model.ComplexityHard
	}
	return model.Complexity(s)
}
