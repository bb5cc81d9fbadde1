package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/termsense/internal/format"
	"github.com/hyperifyio/termsense/internal/page"
	"github.com/hyperifyio/termsense/internal/workflow"
)

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var (
		reanalyze bool
		asHTML    bool
		agree     bool
	)
	cmd := &cobra.Command{
		Use:   "analyze URL",
		Short: "Analyze a terms or privacy page",
		Long: `Analyze shows the stored analysis for URL, or creates one with a single
call to the chat completion API. The URL string is the cache key as given.

Examples:
  termsense analyze https://example.com/terms
  termsense analyze --reanalyze https://example.com/privacy
  termsense analyze --browser --agree https://example.com/signup/terms`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := opts.newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			tab, err := a.OpenTab(ctx, args[0])
			if err != nil {
				return err
			}
			orch := a.Orchestrator()
			var res workflow.Result
			if reanalyze {
				res, err = orch.Reanalyze(ctx, tab)
			} else {
				res, err = orch.Run(ctx, tab)
			}
			out := cmd.OutOrStdout()
			render(out, res, asHTML)
			if err != nil {
				return errReported
			}
			if res.AgreementDetected {
				if agree {
					if err := orch.Agree(ctx, tab); err != nil {
						return agreeError(err)
					}
					fmt.Fprintln(out, "\nAgreement control clicked.")
				} else {
					fmt.Fprintln(out, "\nThis page has an agreement control. Use --agree (with --browser) to accept it.")
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&reanalyze, "reanalyze", false, "Discard the stored analysis and analyze again")
	cmd.Flags().BoolVar(&asHTML, "html", false, "Print the stored HTML markup instead of terminal text")
	cmd.Flags().BoolVar(&agree, "agree", false, "Click the page's agreement control after analysis")
	return cmd
}

// render writes the result. Terminal output re-renders the raw completion
// so scores are coloured; --html prints the persisted markup verbatim.
func render(w io.Writer, res workflow.Result, asHTML bool) {
	body := res.View.Summary
	if !asHTML && res.Err == nil && res.Record != nil && strings.TrimSpace(res.Record.Raw) != "" {
		body = format.Terminal(format.Parse(res.Record.Raw))
	}
	fmt.Fprintln(w, body)
	if l := format.Links(res.View.Links); l != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, l)
	}
}

func agreeError(err error) error {
	if errors.Is(err, page.ErrReadOnly) {
		return fmt.Errorf("%w (pass --browser)", err)
	}
	return err
}

func newLinksCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "links URL",
		Short: "List terms and privacy links found on a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := opts.newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			tab, err := a.OpenTab(ctx, args[0])
			if err != nil {
				return err
			}
			links, err := a.Orchestrator().Links(ctx, tab)
			if err != nil {
				return err
			}
			for _, l := range links {
				fmt.Fprintln(cmd.OutOrStdout(), l)
			}
			return nil
		},
	}
}

func newAgreeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "agree URL",
		Short: "Click the first agree/accept/consent control on a page",
		Long: `Agree checks and clicks the first button or checkbox whose label mentions
agree, accept or consent. It needs a live page, so use it with --browser.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := opts.newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			tab, err := a.OpenTab(ctx, args[0])
			if err != nil {
				return err
			}
			if !page.HasAgreementControl(ctx, tab) {
				fmt.Fprintln(cmd.OutOrStdout(), "No agreement control found.")
				return nil
			}
			if err := a.Orchestrator().Agree(ctx, tab); err != nil {
				return agreeError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Agreement control clicked.")
			return nil
		},
	}
}
