package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/termsense/internal/settings"
)

func newOptionsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "options",
		Short: "Manage the API key and preferences",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set-key KEY",
		Short: "Save the OpenAI API key (use - to read it from stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if key == "-" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read key from stdin: %w", err)
				}
				key = line
			}
			if strings.TrimSpace(key) == "" {
				return errors.New("API key must not be empty")
			}
			f := opts.settingsFile()
			if err := f.SetAPIKey(key); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "API key saved.")
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the current settings with the key masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := opts.settingsFile()
			s, err := f.Load()
			if err != nil {
				return err
			}
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "settings:      %s\n", f.Path)
			fmt.Fprintf(w, "apiKey:        %s\n", settings.Mask(s.APIKey))
			fmt.Fprintf(w, "model:         %s\n", cfg.LLMModel)
			fmt.Fprintf(w, "baseURL:       %s\n", orDefault(cfg.LLMBaseURL, "https://api.openai.com/v1"))
			fmt.Fprintf(w, "style:         %s\n", orDefault(cfg.Style, "rubric"))
			fmt.Fprintf(w, "showRationale: %t\n", cfg.ShowRationale)
			fmt.Fprintf(w, "store:         %s (%s)\n", cfg.StoreKind, cfg.DataDir)
			return nil
		},
	})
	return cmd
}

func (o *rootOptions) settingsFile() *settings.File {
	cfg, _ := o.config()
	if cfg.SettingsPath == "" {
		cfg.SettingsPath = settings.DefaultPath()
	}
	return &settings.File{Path: cfg.SettingsPath}
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
