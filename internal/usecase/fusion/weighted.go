package fusion

import "github.com/kailas-cloud/searchd/internal/domain/recall"

// Weighted merges lists by max-normalizing each list's scores, multiplying by the list weight,
// and summing contributions per id. Output is tagged recall.Fusion and truncated to topK.
func Weighted(lists []List, topK int) []recall.Result {
	acc := newAccumulator(totalLen(lists))
	for _, l := range lists {
		maxScore := maxOf(l.Results)
		if maxScore <= 0 {
			maxScore = 1
		}
		firstOccurrences(l.Results, func(_ int, r recall.Result) {
			acc.add(r.ID(), float64(r.Score())/maxScore*l.Weight)
		})
	}
	return acc.results(recall.Fusion, topK)
}

func maxOf(results []recall.Result) float64 {
	var m float64
	for i, r := range results {
		if s := float64(r.Score()); i == 0 || s > m {
			m = s
		}
	}
	return m
}
