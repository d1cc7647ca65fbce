package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/go-storyreel/internal/captions"
	"github.com/example/go-storyreel/internal/story"
)

func newRenderCmd() *cobra.Command {
	var text string
	var file string
	var out string
	var srtPath string
	var bedPath string
	var aspect string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a narrated WAV from a script",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			script, err := readScript(text, file, os.Stdin)
			if err != nil {
				return err
			}

			bed, err := loadCustomBed(bedPath)
			if err != nil {
				return err
			}

			svc, err := buildService(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			res, err := svc.Narrate(cmd.Context(), narrateRequest(cfg, script, bed))
			if err != nil {
				return err
			}

			if err := os.WriteFile(out, res.WAV, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%.2fs, %d bytes)\n", out, res.Duration, len(res.WAV))

			if srtPath != "" {
				a, err := resolveAspect(aspect, cfg.Captions.Aspect)
				if err != nil {
					return err
				}
				srt, err := story.SRT(res.Timings, a)
				if err != nil {
					return err
				}
				if err := os.WriteFile(srtPath, srt, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", srtPath, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", srtPath)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Narration script")
	cmd.Flags().StringVar(&file, "file", "", "Read the script from a file")
	cmd.Flags().StringVarP(&out, "out", "o", "narration.wav", "Output WAV path")
	cmd.Flags().StringVar(&srtPath, "srt", "", "Also write an SRT caption file")
	cmd.Flags().StringVar(&bedPath, "bed", "", "Background WAV looped instead of the synthesized bed")
	cmd.Flags().StringVar(&aspect, "aspect", "", "Caption chunking aspect (9:16|16:9)")

	return cmd
}

// resolveAspect prefers the flag value over the configured one.
func resolveAspect(flagAspect, cfgAspect string) (captions.Aspect, error) {
	raw := strings.TrimSpace(flagAspect)
	if raw == "" {
		raw = cfgAspect
	}
	if raw == "" {
		return captions.AspectVertical, nil
	}
	return captions.ParseAspect(raw)
}
