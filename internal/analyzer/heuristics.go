package analyzer

// DetectCTAs 返回文本中出现过的号召性用语，按词表顺序排列
func DetectCTAs(tokens []string) []string {
	seen := make(map[string]struct{})
	for _, tok := range tokens {
		if _, ok := ctaSet[tok]; ok {
			seen[tok] = struct{}{}
		}
	}

	found := make([]string, 0, len(seen))
	for _, cta := range ctaWords {
		if _, ok := seen[cta]; ok {
			found = append(found, cta)
		}
	}
	return found
}

// CountHashtags 统计话题标签数量(可重复计数)
func CountHashtags(tokens []string) int {
	count := 0
	for _, tok := range tokens {
		if IsHashtag(tok) {
			count++
		}
	}
	return count
}
