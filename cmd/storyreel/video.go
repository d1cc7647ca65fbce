package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/go-storyreel/internal/config"
	"github.com/example/go-storyreel/internal/story"
	"github.com/example/go-storyreel/internal/video"
)

func newVideoCmd() *cobra.Command {
	var text string
	var file string
	var out string
	var bedPath string
	var aspect string
	var style string
	var scenes []string
	var noCaptions bool
	var noZoom bool

	cmd := &cobra.Command{
		Use:   "video",
		Short: "Render a captioned WebM from a script",
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

			a, err := resolveAspect(aspect, cfg.Captions.Aspect)
			if err != nil {
				return err
			}

			styleTag := style
			if styleTag == "" {
				styleTag = cfg.Captions.Style
			}
			normalized, err := config.NormalizeStyle(styleTag)
			if err != nil {
				return err
			}

			svc, err := buildService(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			lastPct := -1
			err = svc.Video(cmd.Context(), story.VideoRequest{
				NarrateRequest: narrateRequest(cfg, script, bed),
				Aspect:         a,
				Style:          video.Style(normalized),
				ScenePrompts:   scenes,
				Captions:       !noCaptions,
				Zoom:           !noZoom,
				OutPath:        out,
				BitrateKbps:    cfg.Export.BitrateKbps,
				FontPath:       cfg.Export.FontPath,
				FFmpegBinary:   cfg.Export.FFmpegPath,
				Progress: func(pct float64) {
					p := int(pct)
					if p/10 > lastPct/10 {
						fmt.Fprintf(cmd.ErrOrStderr(), "compositing %d%%\n", p)
					}
					lastPct = p
				},
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Narration script")
	cmd.Flags().StringVar(&file, "file", "", "Read the script from a file")
	cmd.Flags().StringVarP(&out, "out", "o", "story.webm", "Output WebM path")
	cmd.Flags().StringVar(&bedPath, "bed", "", "Background WAV looped instead of the synthesized bed")
	cmd.Flags().StringVar(&aspect, "aspect", "", "Output aspect ratio (9:16|16:9)")
	cmd.Flags().StringVar(&style, "style", "", "Visual style (clean|cinematic|energetic|dreamy)")
	cmd.Flags().StringArrayVar(&scenes, "scene", nil, "Scene image prompt (repeatable, needs a Gemini key)")
	cmd.Flags().BoolVar(&noCaptions, "no-captions", false, "Skip burned-in captions")
	cmd.Flags().BoolVar(&noZoom, "no-zoom", false, "Disable the slow zoom on scene images")

	return cmd
}
