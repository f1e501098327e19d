package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/forPelevin/clipmaker/internal/config"
	"github.com/forPelevin/clipmaker/internal/pipeline"
	"github.com/forPelevin/clipmaker/internal/runlog"
	"github.com/forPelevin/clipmaker/internal/types"
	"github.com/forPelevin/clipmaker/internal/usecase"
)

const drainEvery = 200 * time.Millisecond

func run(cmd *cobra.Command, input string) error {
	outDir, _ := cmd.Flags().GetString("out")
	clipsN, _ := cmd.Flags().GetInt("clips")
	durSec, _ := cmd.Flags().GetInt("duration")
	gapSec, _ := cmd.Flags().GetInt("gap")
	subs, _ := cmd.Flags().GetBool("subtitles")
	cfgPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	log := runlog.NewConsole(cmd.ErrOrStderr(), verbose)

	settings, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := settings.ApplyEnv(os.Getenv); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	absIn, err := filepath.Abs(input)
	if err != nil {
		return err
	}

	cfg := pipeline.Config{
		InputMP4:  absIn,
		OutDir:    outDir,
		ClipsN:    clipsN,
		ClipLen:   time.Duration(durSec) * time.Second,
		MinGapSec: gapSec,
		Subtitles: subs,
		Settings:  settings,
		Logger:    log,
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log.Debug().Str("input", absIn).Str("out", outDir).Int("clips", clipsN).Msg("starting")

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Hour)
	defer cancel()

	r := pipeline.NewRunner()
	if _, err := r.Start(ctx, cfg); err != nil {
		return err
	}
	res := follow(r, cmd.OutOrStdout(), drainEvery)
	return report(cmd.OutOrStdout(), outDir, res)
}

// follow prints progress lines on a fixed tick until the run finishes and
// returns the published snapshot.
func follow(r *pipeline.Runner, w io.Writer, every time.Duration) usecase.Result {
	t := time.NewTicker(every)
	defer t.Stop()
	done := r.Done()
	for {
		select {
		case <-t.C:
			printLines(w, r.Drain())
		case <-done:
			printLines(w, r.Drain())
			res, _ := r.Snapshot()
			return res
		}
	}
}

func printLines(w io.Writer, lines []string) {
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
}

func report(w io.Writer, outDir string, res usecase.Result) error {
	switch res.State {
	case types.StateDone:
		fmt.Fprintf(w, "\n%d clips in %s:\n", len(res.Clips), outDir)
		desc := map[int]string{}
		for _, d := range res.Descriptions {
			desc[d.ClipIndex] = d.Path
		}
		for _, c := range res.Clips {
			if p, ok := desc[c.Index-1]; ok {
				fmt.Fprintf(w, "  %s  (%s)\n", c.FinalPath, filepath.Base(p))
			} else {
				fmt.Fprintf(w, "  %s\n", c.FinalPath)
			}
		}
		return nil
	case types.StateNoHighlights:
		fmt.Fprintln(w, "no highlights found; try lowering AUDIO_THRESHOLD or FRAME_DIFF_THRESHOLD")
		return nil
	default:
		return fmt.Errorf("run %s, details in %s", res.State, filepath.Join(outDir, runlog.FileName))
	}
}
