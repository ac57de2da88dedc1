package extract

// Boundaries returns the indices of sentence-final marks. The last index
// is always len(words)-1, so an item without any mark is one sentence.
func Boundaries(words []string) []int {
	if len(words) == 0 {
		return nil
	}

	var bounds []int
	for i, w := range words {
		if w == SentenceEnd {
			bounds = append(bounds, i)
		}
	}

	last := len(words) - 1
	if len(bounds) == 0 || bounds[len(bounds)-1] != last {
		bounds = append(bounds, last)
	}
	return bounds
}

// Sentence returns the words of the k-th sentence, including its final mark
func Sentence(words []string, bounds []int, k int) []string {
	start := 0
	if k > 0 {
		start = bounds[k-1] + 1
	}
	return words[start : bounds[k]+1]
}
