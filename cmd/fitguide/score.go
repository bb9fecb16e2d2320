package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"vision-fit-guide/backend/internal/scoring"
)

var scoreCmd = &cobra.Command{
	Use:   "score [file|-]",
	Short: "Score an answer set",
	Long:  `Score reads an answer set as JSON from a file or stdin and prints the recommendation`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScore,
}

func init() {
	scoreCmd.Flags().Bool("json", false, "print the result as JSON")
}

var (
	headingColor     = color.New(color.Bold)
	countryColor     = color.New(color.FgCyan, color.Bold)
	confidenceColors = map[scoring.Confidence]*color.Color{
		scoring.ConfidenceHigh:   color.New(color.FgGreen, color.Bold),
		scoring.ConfidenceMedium: color.New(color.FgYellow, color.Bold),
		scoring.ConfidenceLow:    color.New(color.FgRed, color.Bold),
	}
)

func runScore(cmd *cobra.Command, args []string) error {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to get json flag: %w", err)
	}

	answers, err := readAnswers(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	result, err := scoring.Score(answers)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	printResult(out, result)
	return nil
}

// readAnswers accepts either a bare answer set or one wrapped as {"answers": {...}}.
func readAnswers(args []string, stdin io.Reader) (scoring.AnswerSet, error) {
	var (
		raw []byte
		err error
	)
	if len(args) == 0 || args[0] == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(args[0])
	}
	if err != nil {
		return scoring.AnswerSet{}, fmt.Errorf("read answers: %w", err)
	}

	var wrapped struct {
		Answers *scoring.AnswerSet `json:"answers"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return scoring.AnswerSet{}, fmt.Errorf("decode answers: %w", err)
	}
	if wrapped.Answers != nil {
		return *wrapped.Answers, nil
	}
	var answers scoring.AnswerSet
	if err := json.Unmarshal(raw, &answers); err != nil {
		return scoring.AnswerSet{}, fmt.Errorf("decode answers: %w", err)
	}
	return answers, nil
}

func printResult(w io.Writer, result scoring.Result) {
	conf := confidenceColors[result.Confidence]
	if conf == nil {
		conf = headingColor
	}
	headingColor.Fprint(w, "Confidence: ")
	conf.Fprintln(w, strings.ToUpper(string(result.Confidence)))
	fmt.Fprintln(w)

	for i, rec := range result.Top3 {
		countryColor.Fprintf(w, "%d. %s", i+1, rec.Country)
		fmt.Fprintf(w, "  %d%% match\n", rec.Score)
		for _, reason := range rec.Reasons {
			fmt.Fprintf(w, "   - %s\n", reason)
		}
		fmt.Fprintln(w)
	}

	headingColor.Fprintln(w, "Raw scores")
	for _, country := range scoring.Countries {
		fmt.Fprintf(w, "  %-10s %d\n", country, result.AllScores[country])
	}
}
