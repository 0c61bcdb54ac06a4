package semantic

import "testing"

func clustersFromScores(scores ...float64) []cluster {
	out := make([]cluster, len(scores))
	for i, s := range scores {
		out[i] = cluster{Primary: string(rune('a' + i)), Score: s}
	}
	return out
}

func TestKneeCutFewerThanFiveKeepsAll(t *testing.T) {
	clusters := clustersFromScores(10, 8, 6)
	got := kneeCut(clusters)
	if len(got) != 3 {
		t.Fatalf("expected all 3 clusters kept, got %d", len(got))
	}
}

func TestKneeCutPlateauOfFiveKeepsWholePlateau(t *testing.T) {
	clusters := clustersFromScores(5, 5, 5, 5, 5, 1, 1)
	got := kneeCut(clusters)
	if len(got) != 5 {
		t.Fatalf("expected the 5-wide plateau kept, got %d: %+v", len(got), got)
	}
}

func TestKneeCutFallbackKeepsFirstFive(t *testing.T) {
	// A strictly decreasing, perfectly linear sequence has no well-defined
	// knee (the chord IS the curve), so it must fall through to the
	// deterministic top-5 fallback.
	clusters := clustersFromScores(10, 8, 6, 4, 2, 0)
	got := kneeCut(clusters)
	if len(got) != 5 {
		t.Fatalf("expected fallback to keep 5 clusters, got %d: %+v", len(got), got)
	}
}

func TestKneeCutDetectsSharpElbow(t *testing.T) {
	clusters := clustersFromScores(100, 95, 90, 2, 1, 0.5, 0.1)
	got := kneeCut(clusters)
	if len(got) == 0 || len(got) >= len(clusters) {
		t.Fatalf("expected a proper subset for a sharp elbow, got %d of %d", len(got), len(clusters))
	}
	// The steepest drop is between index 2 (90) and index 3 (2); the
	// max-distance-to-chord heuristic lands the knee at that low point.
	if got[len(got)-1].Score != 2 {
		t.Fatalf("expected the knee cut to land at the score-2 cluster, got %+v", got)
	}
}

func TestKneeIndexDegenerateOnFlatChord(t *testing.T) {
	if _, ok := kneeIndex([]float64{5, 5, 5, 5}); ok {
		t.Fatalf("expected no knee on a flat chord")
	}
}

func TestKneeIndexTooFewPoints(t *testing.T) {
	if _, ok := kneeIndex([]float64{5, 3}); ok {
		t.Fatalf("expected no knee with fewer than 3 points")
	}
}
