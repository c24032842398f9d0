package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/specialistvlad/dmngrid/internal/dag"
	"github.com/specialistvlad/dmngrid/internal/engine"
	"github.com/specialistvlad/dmngrid/internal/fsutil"
	"github.com/specialistvlad/dmngrid/internal/model"
	"github.com/specialistvlad/dmngrid/internal/resultstore"
	"github.com/specialistvlad/dmngrid/internal/testrunner"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	passLabel = color.New(color.FgGreen, color.Bold).Sprint("PASS")
	failLabel = color.New(color.FgRed, color.Bold).Sprint("FAIL")
)

func (c *command) newRunCommand() *cobra.Command {
	var (
		inputsPath string
		sets       []string
		output     string
	)
	cmd := &cobra.Command{
		Use:   "run MODEL",
		Short: "Evaluate every decision of a model.",
		Args:  exactArgs(1, "a model file"),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := model.Load(args[0])
			if err != nil {
				return err
			}
			inputs, err := readInputs(inputsPath, sets)
			if err != nil {
				return usageError("%v", err)
			}
			e, err := c.app.Engine("")
			if err != nil {
				return err
			}

			res, err := e.Evaluate(cmd.Context(), m, testrunner.Normalize(m, inputs))
			if err != nil {
				return fmt.Errorf("evaluation of model '%s' failed: %w", m.Name, err)
			}
			if err := writeExecution(c.out, output, m, e.Info().ID, res); err != nil {
				return err
			}
			if !res.Success {
				return &ExitError{Code: 1, Message: fmt.Sprintf("evaluation finished with %d error(s)", len(res.Errors))}
			}
			return nil
		},
	}
	addInputFlags(cmd, &inputsPath, &sets)
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format. Options: 'text', 'json' or 'yaml'.")
	return cmd
}

func (c *command) newTestCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "test MODEL|DIR",
		Short: "Run every test case of a model and report the outcome.",
		Long: `Runs every test case of MODEL. Given a directory, every YAML or JSON model
found below it is tested in turn.`,
		Args: exactArgs(1, "a model file or directory"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			paths, err := fsutil.FindFilesByExtension(args[0], fsutil.ModelExtensions...)
			if err != nil {
				return fmt.Errorf("failed to find models: %w", err)
			}

			e, err := c.app.Engine("")
			if err != nil {
				return err
			}
			if !engine.CheckConnection(ctx, e) {
				return &ExitError{Code: 1, Message: fmt.Sprintf("engine '%s' is not reachable", e.Info().ID)}
			}
			r, err := c.app.Runner(e.Info().ID)
			if err != nil {
				return err
			}

			failed, total := 0, 0
			for _, path := range paths {
				m, err := model.Load(path)
				if err != nil {
					return err
				}
				if len(paths) > 1 && output == "text" {
					fmt.Fprintf(c.out, "== %s (%s)\n", m.Name, path)
				}
				if len(m.TestCases) == 0 {
					fmt.Fprintln(c.out, "No test cases in model.")
					continue
				}

				results, err := r.RunAllTestCases(ctx, m)
				if err != nil {
					return err
				}
				if err := writeTestResults(c.out, output, results); err != nil {
					return err
				}
				for _, res := range results {
					total++
					if !res.Passed() {
						failed++
					}
				}
			}

			if failed > 0 {
				return &ExitError{Code: 1, Message: fmt.Sprintf("%d of %d test case(s) failed", failed, total)}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format. Options: 'text' or 'json'.")
	return cmd
}

func (c *command) newCaptureCommand() *cobra.Command {
	var (
		inputsPath string
		sets       []string
		name       string
	)
	cmd := &cobra.Command{
		Use:   "capture MODEL",
		Short: "Record the current decision values as a new test case.",
		Long: `Evaluates the model with the given inputs and saves every successful
decision value as an expectation of a new test case, written back to MODEL.`,
		Args: exactArgs(1, "a model file"),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			m, err := model.Load(path)
			if err != nil {
				return err
			}
			inputs, err := readInputs(inputsPath, sets)
			if err != nil {
				return usageError("%v", err)
			}
			r, err := c.app.Runner("")
			if err != nil {
				return err
			}

			normalized := testrunner.Normalize(m, inputs)
			exps, err := r.CaptureExpectations(cmd.Context(), m, normalized)
			if err != nil {
				return err
			}
			if name == "" {
				name = fmt.Sprintf("Test case %d", len(m.TestCases)+1)
			}
			tc := m.UpsertTestCase(model.TestCase{Name: name, Inputs: normalized, Expectations: exps})

			if err := writeModel(path, m); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Captured %d expectation(s) into test case %q (%s).\n", len(exps), tc.Name, tc.ID)
			return nil
		},
	}
	addInputFlags(cmd, &inputsPath, &sets)
	cmd.Flags().StringVarP(&name, "name", "n", "", "Name of the new test case.")
	return cmd
}

func (c *command) newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate MODEL",
		Short: "Check a model for structural problems and dependency cycles.",
		Args:  exactArgs(1, "a model file"),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := model.Load(args[0])
			if err != nil {
				return err
			}

			var findings []error
			if err := m.Validate(); err != nil {
				var merr *multierror.Error
				if errors.As(err, &merr) {
					findings = append(findings, merr.Errors...)
				} else {
					findings = append(findings, err)
				}
			}
			if _, err := dag.Resolve(cmd.Context(), m); err != nil {
				findings = append(findings, err)
			}

			if len(findings) == 0 {
				fmt.Fprintf(c.out, "Model %q is valid! ✅\n", m.Name)
				return nil
			}
			for _, f := range findings {
				fmt.Fprintf(c.out, "  - %v\n", f)
			}
			return &ExitError{Code: 1, Message: fmt.Sprintf("model %q has %d problem(s)", m.Name, len(findings))}
		},
	}
}

func (c *command) newEnginesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "engines",
		Short: "List the available evaluation engines.",
		Args:  exactArgs(0, "no arguments"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			def := c.app.Config().Engine
			for _, info := range c.app.Registry().All() {
				marker := " "
				if info.ID == def {
					marker = "*"
				}
				conn := ""
				if info.RequiresConnection {
					conn = " (requires connection)"
				}
				fmt.Fprintf(c.out, "%s %-18s %s%s\n", marker, info.ID, info.Name, conn)
				fmt.Fprintf(c.out, "  %-18s %s\n", "", info.Description)
			}
			return nil
		},
	}
}

func (c *command) newProbeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "probe [ENGINE]",
		Short: "Check whether an engine can currently be used.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := c.app.Config().Engine
			if len(args) == 1 {
				id = args[0]
			}
			if _, err := c.app.Registry().Get(id); err != nil {
				return usageError("%v", err)
			}
			if !c.app.Registry().CheckConnection(cmd.Context(), id) {
				fmt.Fprintf(c.out, "%s: unreachable\n", id)
				return &ExitError{Code: 1, Message: fmt.Sprintf("engine '%s' is not reachable", id)}
			}
			fmt.Fprintf(c.out, "%s: reachable\n", id)
			return nil
		},
	}
}

func (c *command) newServeCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the local interpreter over the remote evaluation protocol.",
		Args:  exactArgs(0, "no arguments"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("addr") {
				c.app.Config().ServiceAddr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.app.Serve(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Address to listen on. Defaults to the configured service address.")
	return cmd
}

func addInputFlags(cmd *cobra.Command, path *string, sets *[]string) {
	cmd.Flags().StringVarP(path, "inputs", "i", "", "YAML or JSON file with input values keyed by input id or name.")
	cmd.Flags().StringArrayVar(sets, "set", nil, "Input value as name=value. The value is read as YAML. May be repeated.")
}

// readInputs merges the inputs file with --set values, which win.
func readInputs(path string, sets []string) (map[string]any, error) {
	inputs := map[string]any{}
	if path != "" {
		loaded, err := model.LoadInputs(path)
		if err != nil {
			return nil, err
		}
		inputs = loaded
	}
	for _, s := range sets {
		key, raw, ok := strings.Cut(s, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid --set %q: expected name=value", s)
		}
		var v any
		if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("invalid --set %q: %w", s, err)
		}
		inputs[strings.TrimSpace(key)] = v
	}
	return inputs, nil
}

func writeExecution(w io.Writer, format string, m *model.Model, engineID string, res *engine.ExecutionResult) error {
	switch format {
	case "json":
		return writeJSON(w, res)
	case "yaml":
		return yaml.NewEncoder(w).Encode(res)
	case "text":
	default:
		return usageError("invalid output %q: must be 'text', 'json' or 'yaml'", format)
	}

	fmt.Fprintf(w, "Model %q evaluated with %s\n", m.Name, engineID)
	order := res.Order
	if len(order) == 0 {
		for id := range res.Decisions {
			order = append(order, id)
		}
		sort.Strings(order)
	}
	for _, id := range order {
		dr := res.Decisions[id]
		if dr.Error != "" {
			fmt.Fprintf(w, "  %s: %s\n", dr.DecisionName, dr.Error)
			continue
		}
		fmt.Fprintf(w, "  %s = %s\n", dr.DecisionName, engine.FormatValue(dr.Value))
	}
	if len(res.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, e := range res.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
	return nil
}

func writeTestResults(w io.Writer, format string, results []resultstore.TestCaseResult) error {
	switch format {
	case "json":
		return writeJSON(w, results)
	case "text":
	default:
		return usageError("invalid output %q: must be 'text' or 'json'", format)
	}

	passed := 0
	for _, res := range results {
		if res.Passed() {
			passed++
			fmt.Fprintf(w, "%s  %s\n", passLabel, res.TestCaseName)
			continue
		}
		fmt.Fprintf(w, "%s  %s\n", failLabel, res.TestCaseName)
		if res.Error != "" {
			fmt.Fprintf(w, "      %s\n", res.Error)
			continue
		}
		for _, exp := range res.Expectations {
			switch {
			case exp.Passed:
			case exp.Error != "":
				fmt.Fprintf(w, "      %s: %s\n", exp.DecisionName, exp.Error)
			default:
				fmt.Fprintf(w, "      %s: expected %s, got %s\n", exp.DecisionName,
					engine.FormatValue(exp.ExpectedValue), engine.FormatValue(exp.ActualValue))
			}
		}
	}
	fmt.Fprintf(w, "%d test case(s): %d passed, %d failed\n", len(results), passed, len(results)-passed)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeModel(path string, m *model.Model) error {
	data, err := model.Marshal(m, model.FormatFromPath(path))
	if err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write model file: %w", err)
	}
	return nil
}
