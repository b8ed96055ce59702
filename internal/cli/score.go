package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/somnolab/somno/internal/prefs"
	"github.com/somnolab/somno/internal/usleep"
)

func newScoreCmd() *cobra.Command {
	var (
		model          string
		channelGroups  []string
		dataPerPred    int
		anonymize      bool
		streamLog      bool
		logFilePath    string
		printHypnogram bool
		overwrite      bool
		timeout        time.Duration
	)

	cmd := &cobra.Command{
		Use:   "score <input.edf> <output>",
		Short: "Score a recording and save the hypnogram",
		Long: "Uploads the recording, runs the full scoring pipeline against a\n" +
			"throwaway session, and saves the hypnogram to the output path.\n" +
			"The output extension selects the serialization (.tsv, .txt or .npy).",
		Example: "  somno score ./night1.edf ./hypnogram.tsv\n" +
			"  somno score ./night1.edf ./hypnogram.tsv --anonymize\n" +
			"  somno score ./night1.edf ./hypnogram.tsv --channel-groups C3-A2++EOG C4-A1++EOG\n" +
			"  somno score ./night1.edf ./hypnogram.txt --data-per-prediction 128",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			inPath, outPath, err := checkScorePaths(args[0], args[1], logFilePath, overwrite)
			if err != nil {
				return err
			}
			groups, err := parseChannelGroups(channelGroups)
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := newClient(cfg)
			if err != nil {
				return err
			}

			if model == "" {
				model = cfg.DefaultModel
			}
			if model == "" {
				model = prefs.Load("").Model
			}
			if dataPerPred <= 0 {
				dataPerPred = cfg.DataPerPrediction
			}

			opts := usleep.QuickPredictOptions{
				InputPath:         inPath,
				OutputPath:        outPath,
				LogPath:           logFilePath,
				Anonymize:         anonymize,
				Model:             model,
				ChannelGroups:     groups,
				DataPerPrediction: dataPerPred,
				PollInterval:      cfg.PollInterval,
				Timeout:           timeout,
			}
			if streamLog {
				opts.OnLog = func(lines []string) {
					for _, line := range lines {
						fmt.Println(line)
					}
				}
			}

			hyp, _, err := client.QuickPredict(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if printHypnogram {
				fmt.Println(hyp)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "scored %d epochs, hypnogram saved to %s\n", len(hyp.Epochs), outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "scoring model (default: server's newest)")
	cmd.Flags().StringSliceVar(&channelGroups, "channel-groups", nil,
		"channel groups as {ch1}++{ch2}, e.g. C3-A2++EOG (default: inferred by the server)")
	cmd.Flags().IntVar(&dataPerPred, "data-per-prediction", 0,
		"input samples per scored epoch (default: 3840, one stage per 30s at 128 Hz)")
	cmd.Flags().BoolVar(&anonymize, "anonymize", false,
		"blank identifying EDF header fields before upload (events and channel names are untouched)")
	cmd.Flags().BoolVar(&streamLog, "stream-log", false, "stream the prediction log while waiting")
	cmd.Flags().StringVarP(&logFilePath, "log-file", "l", "", "save the prediction log to this path")
	cmd.Flags().BoolVar(&printHypnogram, "print-hypnogram", false, "print the scored hypnogram to stdout")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "overwrite existing output and log files")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "abort the wait after this long (0 = wait forever)")

	return cmd
}

var outputExtensions = []string{".tsv", ".txt", ".npy"}

// checkScorePaths validates the input/output arguments up front so a typo
// fails before anything is uploaded.
func checkScorePaths(input, output, logFile string, overwrite bool) (string, string, error) {
	inPath, err := filepath.Abs(input)
	if err != nil {
		return "", "", err
	}
	if _, err := os.Stat(inPath); err != nil {
		return "", "", fmt.Errorf("input file %q: %w", input, err)
	}
	if ext := filepath.Ext(inPath); !strings.EqualFold(ext, ".edf") {
		return "", "", fmt.Errorf("input file %q is not an .edf file (only EDF(+) is supported)", input)
	}

	outPath, err := filepath.Abs(output)
	if err != nil {
		return "", "", err
	}
	if err := checkOutputExt(outPath); err != nil {
		return "", "", err
	}
	if !overwrite {
		if _, err := os.Stat(outPath); err == nil {
			return "", "", fmt.Errorf("output file %q already exists and --overwrite was not set", output)
		}
		if logFile != "" {
			if _, err := os.Stat(logFile); err == nil {
				return "", "", fmt.Errorf("log file %q already exists and --overwrite was not set", logFile)
			}
		}
	}
	return inPath, outPath, nil
}

func checkOutputExt(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	for _, known := range outputExtensions {
		if ext == known {
			return nil
		}
	}
	return fmt.Errorf("output extension must be one of %v, got %q", outputExtensions, ext)
}

func parseChannelGroups(raw []string) ([]usleep.ChannelGroup, error) {
	var groups []usleep.ChannelGroup
	for _, spec := range raw {
		group, err := usleep.ParseChannelGroup(spec)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}
