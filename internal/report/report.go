// Package report renders a scan result for the terminal.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/montanaflynn/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/naka-gawa/github-review-stats/internal/usecase"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// Distribution summarises the additions of the counted pull requests.
type Distribution struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
}

type jsonReport struct {
	*usecase.Result
	Additions *Distribution `json:"additions_distribution,omitempty"`
}

// Write renders result in the given format.
func Write(w io.Writer, format string, result *usecase.Result) error {
	switch format {
	case FormatText, "":
		return writeText(w, result)
	case FormatJSON:
		return writeJSON(w, result)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeText(w io.Writer, result *usecase.Result) error {
	p := message.NewPrinter(language.English)
	s := result.Stats
	_, err := p.Fprintf(w,
		"\nTotal number of PRs reviewed = %d\n"+
			"\nTotal number of lines with text added = %d\n"+
			"\nTotal number of lines with text removed = %d\n"+
			"\nMaximum number of additions for single PR = %d\n"+
			"Maximum additions PR number = %d\n",
		s.ReviewedPRs, s.TotalAdditions, s.TotalDeletions, s.MaxAdditions, s.MaxAdditionsPR)
	return err
}

func writeJSON(w io.Writer, result *usecase.Result) error {
	dist, err := AdditionsDistribution(result)
	if err != nil {
		return err
	}
	jsonData, err := json.MarshalIndent(jsonReport{Result: result, Additions: dist}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results to JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}

// AdditionsDistribution returns nil when nothing was counted.
func AdditionsDistribution(result *usecase.Result) (*Distribution, error) {
	if len(result.Contributions) == 0 {
		return nil, nil
	}
	data := make(stats.Float64Data, 0, len(result.Contributions))
	for _, c := range result.Contributions {
		data = append(data, float64(c.Additions))
	}

	var dist Distribution
	var err error
	if dist.Mean, err = data.Mean(); err != nil {
		return nil, fmt.Errorf("failed to compute mean: %w", err)
	}
	if dist.Median, err = data.Median(); err != nil {
		return nil, fmt.Errorf("failed to compute median: %w", err)
	}
	if dist.P90, err = data.Percentile(90); err != nil {
		return nil, fmt.Errorf("failed to compute percentile: %w", err)
	}
	return &dist, nil
}
