package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/go-storyreel/internal/audio"
	"github.com/example/go-storyreel/internal/playback"
)

func newPlayCmd() *cobra.Command {
	var bedPath string
	var offset float64
	var noBed bool

	cmd := &cobra.Command{
		Use:   "play <narration.wav>",
		Short: "Preview a narration WAV with its atmosphere bed on the default output device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			voice, err := audio.DecodeWAVFile(args[0])
			if err != nil {
				return fmt.Errorf("load %s: %w", args[0], err)
			}

			bed, err := loadCustomBed(bedPath)
			if err != nil {
				return err
			}

			session := playback.NewSession(playback.NewMalgoDevice(), nil)
			defer session.Close()

			done := make(chan struct{})
			err = session.Play(playback.PlayOptions{
				Voice:       voice,
				Offset:      offset,
				Mood:        cfg.Synth.Mood,
				Tempo:       cfg.Synth.Tempo,
				VoiceVolume: cfg.Synth.VoiceVolume,
				MusicVolume: cfg.Synth.MusicVolume,
				Speed:       cfg.Synth.Speed,
				SuppressBed: noBed,
				CustomBed:   bed,
				OnComplete:  func() { close(done) },
			})
			if err != nil {
				return err
			}

			interrupt := make(chan os.Signal, 1)
			signal.Notify(interrupt, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(interrupt)

			fmt.Fprintf(cmd.OutOrStdout(), "playing %s (%.2fs), Ctrl-C to stop\n",
				args[0], voice.Duration())

			select {
			case <-done:
			case <-interrupt:
				session.Stop()
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&bedPath, "bed", "", "Background WAV looped instead of the synthesized bed")
	cmd.Flags().Float64Var(&offset, "offset", 0, "Start position in seconds")
	cmd.Flags().BoolVar(&noBed, "no-bed", false, "Play the narration without an atmosphere bed")

	return cmd
}
