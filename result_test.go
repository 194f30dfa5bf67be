package afkslime

import (
	"math/rand"
	"testing"
)

func TestOrderBefore(t *testing.T) {
	tests := []struct {
		a, b Result
		want bool
	}{
		{Result{0, 0, 5}, Result{0, 0, 4}, true},
		{Result{0, 0, 4}, Result{0, 0, 5}, false},
		{Result{1, 0, 5}, Result{2, 0, 5}, true},
		{Result{-1, 0, 5}, Result{1, 0, 5}, true},
		{Result{0, -1, 5}, Result{0, 1, 5}, true},
		{Result{3, 3, 5}, Result{3, 3, 5}, false},
		// Distances past int32 must not overflow
		{Result{40000, 40000, 5}, Result{50000, 50000, 5}, true},
	}
	for _, tt := range tests {
		if got := tt.a.OrderBefore(tt.b); got != tt.want {
			t.Errorf("%v before %v: expected %v, got %v", tt.a, tt.b, tt.want, got)
		}
	}
}

func TestSortResults(t *testing.T) {
	src := rand.New(rand.NewSource(3))
	results := make([]Result, 500)
	for i := range results {
		results[i] = Result{int32(src.Intn(40) - 20), int32(src.Intn(40) - 20), uint(src.Intn(10))}
	}

	shuffled := append([]Result(nil), results...)
	src.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	SortResults(results)
	SortResults(shuffled)
	for i := range results {
		if results[i] != shuffled[i] {
			t.Fatalf("Order depends on input order at %d: %v vs %v", i, results[i], shuffled[i])
		}
		if i > 0 && results[i].Count > results[i-1].Count {
			t.Fatalf("Count rises at %d: %v after %v", i, results[i], results[i-1])
		}
	}

	best, ok := Best(shuffled)
	if !ok || best != results[0] {
		t.Errorf("Expected best %v, got %v", results[0], best)
	}
}

func TestTop(t *testing.T) {
	results := []Result{{0, 0, 3}, {1, 0, 2}, {2, 0, 1}}
	if n := len(Top(results, 2)); n != 2 {
		t.Errorf("Expected 2 results, got %d", n)
	}
	if n := len(Top(results, 10)); n != 3 {
		t.Errorf("Expected 3 results, got %d", n)
	}
	if n := len(Top(results, -1)); n != 3 {
		t.Errorf("Expected all results, got %d", n)
	}
	if _, ok := Best(nil); ok {
		t.Error("Expected no best result for an empty list")
	}
}
