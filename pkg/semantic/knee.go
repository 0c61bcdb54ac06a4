package semantic

// kneeCut implements spec.md §4.E step 4. clusters must already be sorted by
// score descending. The elbow/knee detector is intentionally hand-rolled:
// spec.md §9 notes it "is not uniquely specified by a single library API"
// and spells out the exact fallback sequence to reproduce.
func kneeCut(clusters []cluster) []cluster {
	if len(clusters) == 0 {
		return nil
	}

	values := make([]float64, len(clusters))
	for i, c := range clusters {
		values[i] = c.Score
	}

	start := 0
	for {
		remaining := values[start:]
		if len(remaining) == 0 {
			break
		}
		idx, ok := kneeIndex(remaining)
		if ok && idx > 0 {
			return clusters[:start+idx+1]
		}
		// Strip the leading plateau (all values equal to the current max)
		// and retry.
		plateauEnd := 1
		for plateauEnd < len(remaining) && remaining[plateauEnd] == remaining[0] {
			plateauEnd++
		}
		if plateauEnd >= len(remaining) {
			// Entire remainder is one plateau; nothing left to strip.
			break
		}
		start += plateauEnd
	}

	return fallbackSelection(clusters)
}

// kneeIndex finds the index where concavity transitions on a convex,
// non-increasing curve, using the maximum-distance-to-chord heuristic: the
// knee is the point farthest (in perpendicular distance, on either side) from
// the straight line connecting the curve's first and last samples. Returns ok=false when
// the curve is degenerate (fewer than 3 points, or the chord is flat).
func kneeIndex(values []float64) (int, bool) {
	n := len(values)
	if n < 3 {
		return 0, false
	}
	x0, y0 := 0.0, values[0]
	x1, y1 := float64(n-1), values[n-1]
	dx, dy := x1-x0, y1-y0
	norm := dx*dx + dy*dy
	if norm == 0 {
		return 0, false
	}

	bestIdx := -1
	bestDist := 0.0
	for i := 1; i < n-1; i++ {
		// Perpendicular distance from (i, values[i]) to the chord.
		px, py := float64(i)-x0, values[i]-y0
		cross := dx*py - dy*px
		dist := cross * cross / norm
		if dist > bestDist {
			bestDist = dist
			bestIdx = i
		}
	}
	if bestIdx <= 0 {
		return 0, false
	}
	return bestIdx, true
}

// fallbackSelection implements spec.md §4.E step 4's deterministic fallback:
// keep the first 5; if value[0]==value[4], keep the entire top plateau; if
// fewer than 5 clusters total, keep all.
func fallbackSelection(clusters []cluster) []cluster {
	if len(clusters) < 5 {
		return clusters
	}
	if clusters[0].Score == clusters[4].Score {
		plateauEnd := 0
		for plateauEnd < len(clusters) && clusters[plateauEnd].Score == clusters[0].Score {
			plateauEnd++
		}
		return clusters[:plateauEnd]
	}
	return clusters[:5]
}
