package api

import "testing"

func TestPredictionTop(t *testing.T) {
	t.Parallel()

	p := Prediction{Careers: []Career{{Rank: 1, Label: "Doctor"}, {Rank: 2, Label: "Artist"}}}

	tests := map[string]struct {
		n    int
		want int
	}{
		"negative": {n: -1, want: 0},
		"zero":     {n: 0, want: 0},
		"some":     {n: 1, want: 1},
		"too many": {n: 5, want: 2},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if got := p.Top(tt.n); len(got) != tt.want {
				t.Fatalf("Top(%d) returned %d careers, want %d", tt.n, len(got), tt.want)
			}
		})
	}
}

func TestPercent(t *testing.T) {
	t.Parallel()

	if got := Percent(0.8125); got != "81.25%" {
		t.Fatalf("unexpected percent: %q", got)
	}
}
