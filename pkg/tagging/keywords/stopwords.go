package keywords

// DefaultStopwords returns the built-in English stopword list: common
// function words that never make useful tags. Entries of one or two
// characters are already excluded by the length filter.
func DefaultStopwords() []string {
	return []string{
		"a", "about", "above", "after", "again", "against", "all", "also",
		"an", "and", "any", "are", "because", "been", "before", "being",
		"below", "between", "both", "but", "can", "could", "did", "does",
		"doing", "down", "during", "each", "few", "for", "from", "further",
		"had", "has", "have", "having", "her", "here", "hers", "him", "his",
		"how", "into", "its", "itself", "just", "more", "most", "not", "now",
		"off", "once", "only", "other", "our", "ours", "out", "over", "own",
		"same", "she", "should", "some", "such", "than", "that", "the",
		"their", "theirs", "them", "then", "there", "these", "they", "this",
		"those", "through", "too", "under", "until", "very", "was", "were",
		"what", "when", "where", "which", "while", "who", "whom", "why",
		"will", "with", "would", "you", "your", "yours",
	}
}
