package fusion

import "github.com/kailas-cloud/searchd/internal/domain/recall"

// RRF merges lists via Reciprocal Rank Fusion (Cormack et al. 2009).
// score(d) = sum of 1/(k + rank_i(d) + 1) over every list containing d, rank zero-based.
// Only positions matter, never raw scores. Output is tagged recall.RRF; topK <= 0 keeps all.
func RRF(lists []List, k, topK int) []recall.Result {
	acc := newAccumulator(totalLen(lists))
	for _, l := range lists {
		firstOccurrences(l.Results, func(rank int, r recall.Result) {
			acc.add(r.ID(), 1.0/float64(k+rank+1))
		})
	}
	return acc.results(recall.RRF, topK)
}
