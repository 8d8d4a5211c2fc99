package evidence

import "testing"

func defaultGate() Gate {
	return NewGate(NewScorer(0, 0, 0), 0, 0, 0)
}

func TestGate_ChunkCountFloor(t *testing.T) {
	gate := defaultGate()

	// Perfect overlap with a single chunk still refuses.
	score, ok := gate.Check("boiling point water", chunksOf("boiling point water"))
	if ok {
		t.Errorf("gate passed with 1 chunk, score %+v", score)
	}
	if score.OverlapRatio != 1.0 {
		t.Errorf("OverlapRatio = %v, want 1.0", score.OverlapRatio)
	}

	_, ok = gate.Check("boiling point water", nil)
	if ok {
		t.Error("gate passed with no chunks")
	}
}

func TestGate_EmptyQuestionAlwaysRefused(t *testing.T) {
	gate := defaultGate()
	for _, q := range []string{"", "   ", "?!", "a b c"} {
		if score, ok := gate.Check(q, chunksOf("some text", "more text")); ok {
			t.Errorf("gate passed degenerate question %q, score %+v", q, score)
		}
	}
}

func TestGate_ThresholdBoundary(t *testing.T) {
	gate := defaultGate()

	tests := []struct {
		name     string
		question string
		chunks   []string
		want     bool
	}{
		{
			// 3 of 5 unique tokens matched: 0.6 >= 0.45
			name:     "ratio above threshold passes",
			question: "What is the boiling point of water",
			chunks:   []string{"water boils at 100 degrees celsius boiling point", "second chunk"},
			want:     true,
		},
		{
			// 2 of 5 unique tokens matched: 0.4 < 0.45
			name:     "ratio below threshold refused",
			question: "What is the boiling point of water",
			chunks:   []string{"boiling point discussion", "second chunk"},
			want:     false,
		},
		{
			name:     "zero matches refused",
			question: "airspeed velocity unladen swallow",
			chunks:   []string{"fold the egg whites gently", "simmer the broth"},
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, ok := gate.Check(tt.question, chunksOf(tt.chunks...))
			if ok != tt.want {
				t.Errorf("Check(%q) = %v, want %v (score %+v)", tt.question, ok, tt.want, score)
			}
		})
	}
}

func TestGate_ConfigurableThresholds(t *testing.T) {
	// With a 1-chunk floor and a low ratio floor, a single chunk can pass.
	gate := NewGate(NewScorer(0, 0, 0), 1, 1, 0.1)
	if _, ok := gate.Check("boiling water", chunksOf("boiling water here")); !ok {
		t.Error("relaxed gate should pass a single matching chunk")
	}

	// Raising the matched-token floor refuses a single-token match.
	gate = NewGate(NewScorer(0, 0, 0), 1, 3, 0.1)
	if _, ok := gate.Check("boiling elsewhere topics", chunksOf("boiling only")); ok {
		t.Error("gate should refuse when matched tokens fall below the floor")
	}
}

func TestGate_Deterministic(t *testing.T) {
	gate := defaultGate()
	chunks := chunksOf("water boils at 100 degrees celsius boiling point", "x")
	q := "What is the boiling point of water"

	first, firstOK := gate.Check(q, chunks)
	for i := 0; i < 10; i++ {
		score, ok := gate.Check(q, chunks)
		if score != first || ok != firstOK {
			t.Fatalf("gate not deterministic: %+v/%v vs %+v/%v", score, ok, first, firstOK)
		}
	}
}
