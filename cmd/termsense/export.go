package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		kind string
		out  string
	)
	cmd := &cobra.Command{
		Use:   "export URL",
		Short: "Export a stored analysis as markdown or PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind = strings.ToLower(kind)
			if kind != "markdown" && kind != "pdf" {
				return fmt.Errorf("--format must be markdown or pdf, got %q", kind)
			}
			if out == "" {
				out = "termsense-report.md"
				if kind == "pdf" {
					out = "termsense-report.pdf"
				}
			}
			a, err := opts.newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.Export(cmd.Context(), args[0], kind, out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "format", "markdown", "Export format: markdown or pdf")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file")
	return cmd
}
