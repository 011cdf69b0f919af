package analyzer

// 词表在进程启动时构建一次，之后只读，可被多个 goroutine 共享

// stopwordList 停用词(不参与词频排名)
var stopwordList = []string{
	"a", "an", "the", "and", "or", "but", "if", "in", "on", "with",
	"to", "for", "of", "is", "are", "was", "were", "be", "by", "this",
	"that", "it", "as", "at", "from",
}

// positiveWordList 正面情感词
var positiveWordList = []string{
	"good", "great", "excellent", "happy", "love", "like",
	"success", "improve", "positive", "best", "awesome",
}

// negativeWordList 负面情感词
var negativeWordList = []string{
	"bad", "poor", "failed", "sad", "hate", "problem",
	"negative", "worse", "issue", "angry",
}

// ctaWords 号召性用语词表，输出顺序与此一致
var ctaWords = []string{"follow", "like", "subscribe", "comment", "share", "dm", "visit"}

var (
	stopwords     = toSet(stopwordList)
	positiveWords = toSet(positiveWordList)
	negativeWords = toSet(negativeWordList)
	ctaSet        = toSet(ctaWords)
)

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// IsStopword 判断是否为停用词
func IsStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}

// CTAWords 返回号召性用语词表的副本
func CTAWords() []string {
	out := make([]string, len(ctaWords))
	copy(out, ctaWords)
	return out
}
