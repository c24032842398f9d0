package cli

import (
	"fmt"
	"os"

	"github.com/specialistvlad/dmngrid/internal/dmnxml"
	"github.com/specialistvlad/dmngrid/internal/model"
	"github.com/specialistvlad/dmngrid/internal/tck"
	"github.com/spf13/cobra"
)

func (c *command) newExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a model to an interchange format.",
	}
	cmd.AddCommand(
		c.newExportFormatCommand("dmn", "Export the model as a DMN 1.3 document.", dmnxml.Export),
		c.newExportFormatCommand("tck", "Export the test cases of the model as a TCK document.", tck.Export),
	)
	return cmd
}

func (c *command) newExportFormatCommand(name, short string, export func(*model.Model) ([]byte, error)) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   name + " MODEL",
		Short: short,
		Args:  exactArgs(1, "a model file"),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := model.Load(args[0])
			if err != nil {
				return err
			}
			data, err := export(m)
			if err != nil {
				return fmt.Errorf("failed to export model '%s': %w", m.Name, err)
			}
			if outPath == "" {
				_, err := c.out.Write(data)
				return err
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", outPath, err)
			}
			c.app.Logger().Info("Model exported.", "format", name, "path", outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "O", "", "File to write instead of standard output.")
	return cmd
}

func (c *command) newImportTCKCommand() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "import-tck MODEL TCK_FILE",
		Short: "Add the test cases of a TCK document to a model.",
		Long: `Reads a TCK document, binds its inputs and expected results to the model
by name, and writes the model with the imported test cases appended. Inputs
and decisions the model does not know are skipped with a warning.`,
		Args: exactArgs(2, "a model file and a TCK file"),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := model.Load(args[0])
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("failed to read TCK file: %w", err)
			}
			res, err := tck.Import(data, m)
			if err != nil {
				return fmt.Errorf("failed to import '%s': %w", args[1], err)
			}
			for _, w := range res.Warnings {
				fmt.Fprintf(c.errW, "warning: %s\n", w)
			}
			for _, tc := range res.TestCases {
				m.UpsertTestCase(tc)
			}

			target := args[0]
			if outPath != "" {
				target = outPath
			}
			if err := writeModel(target, m); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Imported %d test case(s) into %s.\n", len(res.TestCases), target)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "O", "", "Write the model here instead of updating MODEL.")
	return cmd
}
