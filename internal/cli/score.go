package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"enrollment-assessment/internal/app"
	"enrollment-assessment/internal/config"
	"enrollment-assessment/internal/domain"
	"github.com/spf13/cobra"
)

// NewScoreCmd scores an answers file offline.
//
//	assessment-service score answers.json
//
// The file holds either {"answers": {"0": 3, ...}} or the bare answer map;
// "-" reads from stdin.
func NewScoreCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "score <answers.json>",
		Short: "Score a set of answers and print results with recommendations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			catalog := domain.CanonicalCatalog()
			if cfg.Quiz.CatalogPath != "" {
				if catalog, err = config.LoadCatalog(cfg.Quiz.CatalogPath); err != nil {
					return err
				}
			}
			answers, err := readAnswers(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			return printScore(cmd.OutOrStdout(), catalog, answers)
		},
	}
}

func readAnswers(stdin io.Reader, path string) (domain.AnswerSet, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read answers: %w", err)
	}

	var wrapped struct {
		Answers domain.AnswerSet `json:"answers"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Answers != nil {
		return wrapped.Answers, nil
	}
	var answers domain.AnswerSet
	if err := json.Unmarshal(data, &answers); err != nil {
		return nil, fmt.Errorf("parse answers: %w", err)
	}
	return answers, nil
}

func printScore(w io.Writer, catalog domain.Catalog, answers domain.AnswerSet) error {
	results := app.ComputeResults(catalog, answers)
	fmt.Fprintf(w, "Overall: %d%% (%s)\n", results.OverallPercentage, results.Level)
	fmt.Fprintf(w, "%s\n\n", results.Level.Description())
	for _, cs := range results.Categories {
		fmt.Fprintf(w, "  %-10s %3d%%  (%d/%d)\n", cs.Category, cs.Percentage, cs.Score, cs.Max)
	}
	fmt.Fprintln(w, "\nRecommendations:")
	for i, rec := range app.ComputeRecommendations(results) {
		fmt.Fprintf(w, "%d. %s\n", i+1, rec.Title)
		if rec.Stat != "" {
			fmt.Fprintf(w, "   %s\n", rec.Stat)
		}
	}
	return nil
}
