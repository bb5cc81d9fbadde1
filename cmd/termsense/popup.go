package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/termsense/internal/popup"
)

func newPopupCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "popup URL",
		Short: "Open the interactive analysis view for a page",
		Long: `Popup shows the analysis controls for URL in the terminal:
s start, r re-analyze, a agree, d decline, c copy summary, q quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			// The analysis outlives the view: closing the popup does not
			// cancel an in-flight request.
			ctx := context.WithoutCancel(cmd.Context())
			tab, err := a.OpenTab(ctx, args[0])
			if err != nil {
				return err
			}
			return popup.Run(ctx, a.Orchestrator(), tab)
		},
	}
}
