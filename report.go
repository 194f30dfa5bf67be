package afkslime

import (
	"fmt"
	"io"
	"strconv"
	"time"
)

// Report is the outcome of one search run.
type Report struct {
	Seed       int64         `json:"seed"`
	SeedText   string        `json:"seed_text,omitempty"`
	Range      int32         `json:"range"`
	Candidates int           `json:"candidates"`
	Elapsed    time.Duration `json:"elapsed_ns"`
	Best       Result        `json:"best"`
	Top        []Result      `json:"top"`
	Slime      []Chunk       `json:"slime"`
}

// SeedLabel shows the numeric seed, followed by the text it was hashed from if any.
func (r Report) SeedLabel() string {
	label := strconv.FormatInt(r.Seed, 10)
	if r.SeedText != "" && r.SeedText != label {
		label = fmt.Sprintf("%s (%s)", label, r.SeedText)
	}
	return label
}

func (r Report) RangeLabel() string {
	return fmt.Sprintf("(%d, %d) ~ (%d, %d)", -r.Range/2+1, -r.Range/2+1, r.Range/2, r.Range/2)
}

// WriteHuman prints the report in the console layout.
func (r Report) WriteHuman(w io.Writer) error {
	lines := []string{
		"Seed: " + r.SeedLabel(),
		"Range: " + r.RangeLabel(),
		"",
		fmt.Sprintf("Top %d chunks:", len(r.Top)),
	}
	for _, result := range r.Top {
		lines = append(lines, fmt.Sprintf("(%6d, %6d) %3d chunks", result.X, result.Z, result.Count))
	}
	if r.Candidates > 0 {
		lines = append(lines, "",
			fmt.Sprintf("Max is %v with %d chunks", r.Best.Center(), r.Best.Count),
			fmt.Sprintf("Slime chunks: %v", r.Slime))
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
