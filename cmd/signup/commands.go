package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-signup/pkg/model"
	"github.com/goliatone/go-signup/pkg/render"
	"github.com/goliatone/go-signup/pkg/renderers/html"
	"github.com/goliatone/go-signup/pkg/renderers/tui"
	"github.com/goliatone/go-signup/pkg/schema"
	"github.com/goliatone/go-signup/pkg/session"
	"github.com/goliatone/go-signup/pkg/submission"
	"github.com/goliatone/go-signup/pkg/timer"
	"github.com/goliatone/go-signup/pkg/validation"
)

var errInvalidSnapshot = errors.New("snapshot is not valid")

func runCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Fill in the signup form interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			r, err := tui.New(
				tui.WithOutput(cmd.OutOrStdout()),
				tui.WithLabels(a.cfg.RenderLabels()),
			)
			if err != nil {
				return err
			}
			sess, err := session.New(r,
				session.WithLogger(a.logger),
				session.WithMetrics(a.metrics),
				session.WithSubmissionOptions(a.cfg.SubmissionOptions()...),
			)
			if err != nil {
				return err
			}

			attempt, err := r.Run(ctx, sess)
			if errors.Is(err, tui.ErrAborted) || errors.Is(err, tui.ErrDeclined) {
				a.logger.Infow("signup not submitted", "reason", err)
				return nil
			}
			if err != nil {
				return err
			}
			a.logger.Debugw("signup submitted", "cycle", attempt.CycleID)

			if err := sess.Wait(ctx); err != nil {
				return err
			}
			a.logMetrics()
			return nil
		},
	}
}

type checkReport struct {
	validation.Result
	Schema []schema.FieldError `json:"schema,omitempty"`
}

func checkCmd(flags *globalFlags) *cobra.Command {
	var schemaPath string
	cmd := &cobra.Command{
		Use:   "check <snapshot>",
		Short: "Validate a snapshot file and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			defer a.close()

			input, err := readSnapshot(args[0])
			if err != nil {
				return err
			}
			snap := input.snap

			validator, err := loadValidator(cmd.Context(), schemaPath)
			if err != nil {
				return err
			}

			engine := validation.NewEngine(
				validation.WithLogger(a.logger.Named("validation")),
				validation.WithMetrics(a.metrics),
			)
			report := checkReport{
				Result: engine.Check(snap, a.cfg.Labels.TermsNotice),
				Schema: validator.Validate(snap),
			}

			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("encode result: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))

			if !report.Valid || len(report.Schema) > 0 {
				return fmt.Errorf("%w: %d issue(s), %d schema error(s)", errInvalidSnapshot, len(report.Issues), len(report.Schema))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&schemaPath, "schema", "", "OpenAPI document describing the signup request (defaults to the built-in schema)")
	return cmd
}

// loadValidator reads the request schema from an OpenAPI document, or uses the
// built-in schema when path is empty.
func loadValidator(ctx context.Context, path string) (*schema.Validator, error) {
	if path == "" {
		return schema.NewValidator(nil), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	s, err := schema.FromDocument(ctx, raw)
	if err != nil {
		return nil, err
	}
	return schema.NewValidator(s), nil
}

type renderOptions struct {
	format  string
	output  string
	submit  bool
	advance time.Duration
}

func renderCmd(flags *globalFlags) *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render <snapshot>",
		Short: "Play a snapshot through a session and render the resulting form",
		Long: `render types each non-empty snapshot value into a fresh session, sets the
terms checkbox and optionally presses submit. Simulated time can be moved
forward with --advance to capture the submitting or succeeded views. An
"errors" map in the snapshot is shown as server-side feedback.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			defer a.close()

			input, err := readSnapshot(args[0])
			if err != nil {
				return err
			}

			registry := render.NewRegistry()
			registry.MustRegister(render.NewJSONRenderer())
			htmlRenderer, err := html.New(
				html.WithTitle(a.cfg.HTML.Title),
				html.WithTheme(a.cfg.Manifest(), a.cfg.HTML.Theme.Variant),
				html.WithRenderOptions(a.cfg.RenderOptions()),
			)
			if err != nil {
				return err
			}
			registry.MustRegister(htmlRenderer)
			if !registry.Has(opts.format) {
				return fmt.Errorf("unknown format %q (available: %s)", opts.format, strings.Join(registry.List(), ", "))
			}

			view, err := playSnapshot(cmd.Context(), a, input, opts)
			if err != nil {
				return err
			}

			data, _, err := registry.Render(cmd.Context(), opts.format, view)
			if err != nil {
				return err
			}
			return writeOutput(opts.output, data, func(b []byte) error {
				_, err := cmd.OutOrStdout().Write(b)
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "html", "Output format (html, json)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write output to file instead of stdout")
	cmd.Flags().BoolVar(&opts.submit, "submit", false, "Press submit after filling the form")
	cmd.Flags().DurationVar(&opts.advance, "advance", 0, "Simulated time to let pass after submitting")
	return cmd
}

// playSnapshot feeds the snapshot into a session backed by a deterministic
// scheduler, applies any server errors and returns the final view.
func playSnapshot(ctx context.Context, a *app, input snapshotInput, opts *renderOptions) (render.View, error) {
	snap := input.snap
	state := render.NewViewState("render", a.cfg.RenderLabels())
	sched := timer.NewManual()
	sess, err := session.New(state,
		session.WithScheduler(sched),
		session.WithLogger(a.logger),
		session.WithMetrics(a.metrics),
		session.WithSubmissionOptions(a.cfg.SubmissionOptions()...),
	)
	if err != nil {
		return render.View{}, err
	}

	for _, name := range model.Fields() {
		value := snap.Value(name)
		if value == "" {
			continue
		}
		if _, err := sess.HandleInput(ctx, name, value); err != nil {
			return render.View{}, err
		}
	}
	if err := sess.HandleTerms(ctx, snap.TermsAccepted); err != nil {
		return render.View{}, err
	}

	if opts.submit {
		_, err := sess.HandleSubmit(ctx)
		switch {
		case errors.Is(err, submission.ErrTermsNotAccepted), errors.Is(err, submission.ErrInvalidForm):
			a.logger.Debugw("submit blocked", "error", err)
		case err != nil:
			return render.View{}, err
		}
		sched.Advance(opts.advance)
	}
	if len(input.errors) > 0 {
		state.ApplyErrors(render.MapErrorPayload(input.errors))
	}
	return state.View(), nil
}

func schemaCmd() *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the OpenAPI description of the signup request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := json.MarshalIndent(schema.Document(Version), "", "  ")
			if err != nil {
				return fmt.Errorf("encode schema: %w", err)
			}
			switch strings.ToLower(format) {
			case "json":
			case "yaml", "yml":
				if data, err = jsonToYAML(data); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown format %q (available: json, yaml)", format)
			}
			return writeOutput(output, data, func(b []byte) error {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(string(b), "\n"))
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format (json, yaml)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write output to file instead of stdout")
	return cmd
}

// jsonToYAML keeps key order by going through a yaml.Node.
func jsonToYAML(data []byte) ([]byte, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("convert schema: %w", err)
	}
	blockStyle(&node)
	out, err := yaml.Marshal(&node)
	if err != nil {
		return nil, fmt.Errorf("convert schema: %w", err)
	}
	return out, nil
}

// blockStyle drops the flow and quoting styles the JSON input carries.
func blockStyle(node *yaml.Node) {
	node.Style = 0
	for _, child := range node.Content {
		blockStyle(child)
	}
}
