package faq

// similarityRatio returns a measure of the sequences' similarity as a
// float in [0, 1], computed as 2*M / T where T is the total number of
// runes in both sequences and M is the number of matched runes.
//
// Matching runes are counted by recursively splitting both sequences
// around their longest common substring (Ratcliff/Obershelp). Queries
// and catalog questions are short, so the quadratic longest-match scan
// is not a concern.
func similarityRatio(a, b string) float64 {
	ar := []rune(a)
	br := []rune(b)

	total := len(ar) + len(br)
	if total == 0 {
		return 1.0
	}

	matches := matchingRunes(ar, br, 0, len(ar), 0, len(br))
	return 2.0 * float64(matches) / float64(total)
}

func matchingRunes(a, b []rune, alo, ahi, blo, bhi int) int {
	i, j, size := longestMatch(a, b, alo, ahi, blo, bhi)
	if size == 0 {
		return 0
	}
	return size +
		matchingRunes(a, b, alo, i, blo, j) +
		matchingRunes(a, b, i+size, ahi, j+size, bhi)
}

// longestMatch finds the longest matching block in a[alo:ahi] and
// b[blo:bhi]. Of all maximal blocks it returns the one starting
// earliest in a, then earliest in b.
func longestMatch(a, b []rune, alo, ahi, blo, bhi int) (besti, bestj, bestsize int) {
	besti, bestj = alo, blo

	// j2len[j] holds the length of the match ending at a[i-1] and b[j]
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		newj2len := make(map[int]int)
		for j := blo; j < bhi; j++ {
			if a[i] != b[j] {
				continue
			}
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}

	return besti, bestj, bestsize
}
