package analyzer

import (
	"sort"
	"sync"
)

// MaxTopWords 分析结果中保留的高频词数量
const MaxTopWords = 5

// WordFreq 单词及其出现次数
type WordFreq struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// countable 长度不超过 1 的 token 和停用词不计入词频，话题标签与纯数字保留
func countable(token string) bool {
	return len(token) > 1 && !IsStopword(token)
}

// RankWords 统计词频并返回前 MaxTopWords 个词。
// 按次数降序，次数相同时保持首次出现的顺序。
func RankWords(tokens []string) []WordFreq {
	freqMap := make(map[string]int)
	order := make([]string, 0)
	for _, tok := range tokens {
		if !countable(tok) {
			continue
		}
		if freqMap[tok] == 0 {
			order = append(order, tok)
		}
		freqMap[tok]++
	}
	return rank(freqMap, order, MaxTopWords)
}

// rank order 为单词首次出现的顺序，稳定排序保证并列时的先后
func rank(freqMap map[string]int, order []string, n int) []WordFreq {
	wordFreqs := make([]WordFreq, 0, len(order))
	for _, word := range order {
		wordFreqs = append(wordFreqs, WordFreq{Word: word, Count: freqMap[word]})
	}

	sort.SliceStable(wordFreqs, func(i, j int) bool {
		return wordFreqs[i].Count > wordFreqs[j].Count
	})

	if n >= 0 && len(wordFreqs) > n {
		wordFreqs = wordFreqs[:n]
	}
	return wordFreqs
}

// WordFrequencyAnalyzer 跨文档累计词频，批量处理时由多个 goroutine 共享
type WordFrequencyAnalyzer struct {
	freqMap map[string]int
	order   []string
	mutex   sync.Mutex
}

// NewWordFrequencyAnalyzer 创建词频分析器
func NewWordFrequencyAnalyzer() *WordFrequencyAnalyzer {
	return &WordFrequencyAnalyzer{
		freqMap: make(map[string]int),
	}
}

// ProcessText 处理文本并更新词频，返回文本的全部 token
func (wfa *WordFrequencyAnalyzer) ProcessText(text string) []string {
	tokens := Normalize(text)
	wfa.AddTokens(tokens)
	return tokens
}

// AddTokens 用已分好的 token 更新词频
func (wfa *WordFrequencyAnalyzer) AddTokens(tokens []string) {
	wfa.mutex.Lock()
	defer wfa.mutex.Unlock()

	for _, tok := range tokens {
		if !countable(tok) {
			continue
		}
		if wfa.freqMap[tok] == 0 {
			wfa.order = append(wfa.order, tok)
		}
		wfa.freqMap[tok]++
	}
}

// GetTopWords 获取出现频率最高的 n 个单词，n < 0 表示全部
func (wfa *WordFrequencyAnalyzer) GetTopWords(n int) []WordFreq {
	wfa.mutex.Lock()
	defer wfa.mutex.Unlock()

	return rank(wfa.freqMap, wfa.order, n)
}
