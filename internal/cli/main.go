package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:          "clipmaker <input>",
		Short:        "Cut highlight clips with subtitles and descriptions from a video",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0])
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	root.Flags().String("out", "output", "Workspace directory (cleared on every run except log.txt)")
	root.Flags().Int("clips", 3, "Number of clips")
	root.Flags().Int("duration", 20, "Clip duration seconds")
	root.Flags().Int("gap", 10, "Minimum seconds between clip anchors")
	root.Flags().Bool("subtitles", true, "Burn generated subtitles into clips")
	root.Flags().String("config", "", "Config file (.toml or .yaml); default ./config.toml, ./config.yaml")
	root.Flags().BoolP("verbose", "v", false, "Debug logging on stderr")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
