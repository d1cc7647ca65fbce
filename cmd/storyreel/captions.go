package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/go-storyreel/internal/story"
)

func newCaptionsCmd() *cobra.Command {
	var text string
	var file string
	var out string
	var duration float64
	var aspect string

	cmd := &cobra.Command{
		Use:   "captions",
		Short: "Derive an SRT caption file from a script and duration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			script, err := readScript(text, file, os.Stdin)
			if err != nil {
				return err
			}
			if duration <= 0 {
				return fmt.Errorf("--duration must be positive")
			}

			a, err := resolveAspect(aspect, cfg.Captions.Aspect)
			if err != nil {
				return err
			}

			srt, err := story.Captions(script, duration, a)
			if err != nil {
				return err
			}

			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(srt)
				return err
			}
			if err := os.WriteFile(out, srt, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Narration script")
	cmd.Flags().StringVar(&file, "file", "", "Read the script from a file")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output SRT path (default stdout)")
	cmd.Flags().Float64Var(&duration, "duration", 0, "Narration duration in seconds")
	cmd.Flags().StringVar(&aspect, "aspect", "", "Caption chunking aspect (9:16|16:9)")

	return cmd
}

func newMoodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "moods",
		Short: "List the atmosphere mood presets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, m := range story.Moods() {
				fmt.Fprintln(cmd.OutOrStdout(), m)
			}
			return nil
		},
	}
}
