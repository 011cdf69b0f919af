// Package analyzer 对提取出的纯文本做轻量的词法/启发式分析：
// 词数、高频词、朴素情感、号召性用语和话题标签。
//
// 所有函数无状态、不做 I/O，可并发调用。
package analyzer

// Result 单个文本的分析结果
type Result struct {
	WordCount    int        `json:"wordCount"`
	TopWords     []WordFreq `json:"topWords"`
	Sentiment    Sentiment  `json:"sentiment"`
	FoundCTAs    []string   `json:"foundCTAs"`
	HashtagCount int        `json:"hashtagCount"`
}

// Analyze 分析文本。任何输入(包括空串)都返回完整结果，不会失败。
func Analyze(rawText string) Result {
	return AnalyzeTokens(Normalize(rawText))
}

// AnalyzeTokens 分析已经由 Normalize 得到的 token 序列
func AnalyzeTokens(tokens []string) Result {
	return Result{
		// 词数在过滤之前统计，包含停用词、单字符和话题标签
		WordCount:    len(tokens),
		TopWords:     RankWords(tokens),
		Sentiment:    ClassifySentiment(tokens),
		FoundCTAs:    DetectCTAs(tokens),
		HashtagCount: CountHashtags(tokens),
	}
}
