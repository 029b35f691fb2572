package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/histparl/rollcall/internal/logging"
	"github.com/histparl/rollcall/internal/model"
	"github.com/histparl/rollcall/internal/pipeline"
	"github.com/histparl/rollcall/internal/refdata"
)

var checkDate string

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <label>",
	Short: "Resolve a single speaker label at a date",
	Long: `Check runs one label through the full cascade and explains the outcome:
the normalized form, the classification, the matched speaker or surviving
candidates, and for misses the closest known alias.

Example:
  rollcall check "Chan. of the Exchequer" --date 1853-06-01
  rollcall check "Viscount Palmerstone" --date 1860-01-01 --data ./refdata`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkDate, "date", "", "sitting date (YYYY-MM-DD)")
	checkCmd.Flags().StringVar(&dataDir, "data", "", "reference data directory")
	_ = checkCmd.MarkFlagRequired("date")
}

func runCheck(cmd *cobra.Command, args []string) error {
	date, err := refdata.ParseDate(checkDate)
	if err != nil {
		return fmt.Errorf("invalid --date: %w", err)
	}

	cfg := loadConfig()
	if dataDir != "" {
		cfg.Data.Dir = dataDir
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}

	result, err := pipeline.NewRunner(cfg, logger).Check(context.Background(), args[0], date)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	fmt.Printf("label:      %q\n", result.RawLabel)
	fmt.Printf("normalized: %q\n", result.Label)
	fmt.Printf("outcome:    %s", result.Resolution.Outcome)
	if result.Resolution.Fuzzy {
		fmt.Printf(" (fuzzy)")
	}
	fmt.Println()

	switch result.Resolution.Outcome {
	case model.OutcomeMatched:
		if s := result.Speaker; s != nil {
			fmt.Printf("speaker:    %d %s (%d-%s)\n", s.ID, s.FullName, s.Born.Year(), diedYear(s))
		}
	case model.OutcomeAmbiguous:
		fmt.Printf("candidates:\n")
		for _, s := range result.Candidates {
			fmt.Printf("  %d %s (%d-%s)\n", s.ID, s.FullName, s.Born.Year(), diedYear(s))
		}
	case model.OutcomeMiss:
		if result.BestGuess != "" {
			fmt.Printf("closest alias: %q (similarity %.2f)\n", result.BestGuess, result.BestScore)
		}
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "data dir: %s\n", cfg.Data.Dir)
	}
	return nil
}

func diedYear(s *model.SpeakerRecord) string {
	if s.Died.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d", s.Died.Year())
}
