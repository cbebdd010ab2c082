package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/project-planner/internal/model"
	"github.com/fairyhunter13/project-planner/internal/session"
)

// prompter reads answers line by line. EOF ends the interactive session.
type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func (p *prompter) ask(question, def string) (string, bool) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", question, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", question)
	}
	if !p.in.Scan() {
		fmt.Fprintln(p.out)
		return "", false
	}
	answer := strings.TrimSpace(p.in.Text())
	if answer == "" {
		return def, true
	}
	return answer, true
}

func newWizardCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Create a project interactively",
		Long: `Walk through naming and configuring a creation, then generate ideas.
From the results you can go back to adjust the configuration and generate
again, or start a new creation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.start(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			p := &prompter{in: bufio.NewScanner(cmd.InOrStdin()), out: out}
			unsubscribe := s.Ledger.Subscribe(func(balance int) {
				fmt.Fprintf(out, "Tokens: %d\n", balance)
			})
			defer unsubscribe()

			fmt.Fprintf(out, "Tokens: %d\n", s.Ledger.Balance())
			w := s.NewWizard()
			for {
				switch w.State() {
				case session.StateNaming:
					name, ok := p.ask("Project name", w.Name())
					if !ok {
						return nil
					}
					if err := w.SetName(name); err != nil {
						fmt.Fprintf(out, "✗ %s\n", describe(err))
					}

				case session.StateConfiguring:
					if err := w.LastError(); err != nil {
						fmt.Fprintf(out, "✗ %s\n", describe(err))
					}
					opts, ok := askOptions(p, w.Options())
					if !ok {
						return nil
					}
					if err := w.Configure(opts); err != nil {
						return err
					}
					next, ok := p.ask("Generate ideas for one token? (y)es/(b)ack", "y")
					if !ok {
						return nil
					}
					if strings.HasPrefix(strings.ToLower(next), "b") {
						if err := w.Back(); err != nil {
							return err
						}
						continue
					}
					fmt.Fprintln(out, "Generating...")
					if _, err := runGeneration(cmd.Context(), w); err != nil {
						switch {
						case session.IsValidation(err):
							// Rejected before submission, so LastError is not set.
							fmt.Fprintf(out, "✗ %s\n", describe(err))
						case w.State() == session.StateGenerating:
							return err
						}
					}

				case session.StateResults:
					view, _ := w.Results()
					printIdeas(out, fmt.Sprintf("Ideas for %s", view.Source.CreationName()), view.Ideas)
					next, ok := p.ask("(b)ack to edit, (n)ew creation or (q)uit", "q")
					if !ok {
						return nil
					}
					switch next = strings.ToLower(next); {
					case strings.HasPrefix(next, "b"):
						if err := w.Back(); err != nil {
							return err
						}
					case strings.HasPrefix(next, "n"):
						w = s.NewWizard()
					default:
						return nil
					}

				default:
					return fmt.Errorf("unexpected wizard state %s", w.State())
				}
			}
		},
	}
}

func askOptions(p *prompter, current session.Options) (session.Options, bool) {
	def := current
	if def.ProjectType == "" {
		def.ProjectType = model.ProjectTypeFullStack
	}
	if def.Complexity == "" {
		def.Complexity = model.ComplexityMedium
	}

	answer, ok := p.ask("Project type (Frontend/Backend/FullStack)", string(def.ProjectType))
	if !ok {
		return session.Options{}, false
	}
	opts := session.Options{ProjectType: parseProjectType(answer)}

	if opts.ProjectType == model.ProjectTypeFrontend {
		js := "n"
		if def.IncludeScriptingLanguage {
			js = "y"
		}
		answer, ok = p.ask("Use JavaScript instead of TypeScript? (y/n)", js)
		if !ok {
			return session.Options{}, false
		}
		opts.IncludeScriptingLanguage = strings.HasPrefix(strings.ToLower(answer), "y")
	}

	answer, ok = p.ask("Complexity (Easy/Medium/Hard)", string(def.Complexity))
	if !ok {
		return session.Options{}, false
	}
	opts.Complexity = parseComplexity(answer)

	answer, ok = p.ask("Additional technologies (optional)", def.AdditionalTechnologies)
	if !ok {
		return session.Options{}, false
	}
	opts.AdditionalTechnologies = answer
	return opts, true
}
