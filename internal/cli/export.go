package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nhle/tareas/internal/export"
)

func newExportCmd(a *App) *cobra.Command {
	var opts listOpts
	var format, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the listed tasks as CSV, JSON or PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			if f == export.FormatPDF && out == "" {
				return fmt.Errorf("pdf export needs -o FILE")
			}

			vm, err := a.viewModel(cmd.Context())
			if err != nil {
				return err
			}
			if err := opts.apply(vm); err != nil {
				return err
			}
			list := vm.ForSelectedView()

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				file, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("creating %s: %w", out, err)
				}
				defer file.Close()
				w = file
			}

			if err := export.Write(w, f, list, a.now()); err != nil {
				return err
			}
			if out != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d tasks to %s.\n", len(list), out)
			}
			return nil
		},
	}

	addListFlags(cmd, &opts)
	cmd.Flags().StringVar(&format, "format", "csv", "csv, json or pdf")
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file (default stdout)")
	return cmd
}
