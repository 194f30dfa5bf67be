package afkslime

import (
	"strings"
	"testing"
)

func TestReportLabels(t *testing.T) {
	r := Report{Seed: 99162322, SeedText: "hello", Range: 10}
	if got := r.SeedLabel(); got != "99162322 (hello)" {
		t.Errorf("Unexpected seed label %q", got)
	}
	r.SeedText = "99162322"
	if got := r.SeedLabel(); got != "99162322" {
		t.Errorf("Unexpected seed label %q", got)
	}
	if got := r.RangeLabel(); got != "(-4, -4) ~ (5, 5)" {
		t.Errorf("Unexpected range label %q", got)
	}
}

func TestReportWriteHuman(t *testing.T) {
	r := Report{
		Seed:       12345,
		Range:      10,
		Candidates: 100,
		Best:       Result{4, -3, 21},
		Top:        []Result{{4, -3, 21}, {5, -3, 20}},
		Slime:      []Chunk{{4, -3}, {6, -2}},
	}
	var b strings.Builder
	if err := r.WriteHuman(&b); err != nil {
		t.Fatal(err)
	}
	out := b.String()
	for _, want := range []string{
		"Seed: 12345\n",
		"Top 2 chunks:\n",
		"(     4,     -3)  21 chunks\n",
		"Max is (4, -3) with 21 chunks\n",
		"Slime chunks: [(4, -3) (6, -2)]\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}

func TestProgress(t *testing.T) {
	var p Progress
	if p.Fraction() != 1 {
		t.Error("Expected an empty run to count as finished")
	}
	p.Start(4)
	p.Add(1)
	if p.Fraction() != 0.25 {
		t.Errorf("Expected 0.25, got %v", p.Fraction())
	}
}
