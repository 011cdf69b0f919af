package analyzer

import (
	"encoding/json"
	"fmt"
)

// Sentiment 情感倾向，零值为 Neutral
type Sentiment int

const (
	Neutral Sentiment = iota
	Positive
	Negative
)

// sentimentThreshold 正负词数差值达到该值才判定为有倾向
const sentimentThreshold = 2

var sentimentNames = map[Sentiment]string{
	Neutral:  "Neutral",
	Positive: "Positive",
	Negative: "Negative",
}

var sentimentFromName = map[string]Sentiment{
	"Neutral":  Neutral,
	"Positive": Positive,
	"Negative": Negative,
}

func (s Sentiment) String() string {
	if name, ok := sentimentNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Sentiment(%d)", int(s))
}

// MarshalJSON 以名称字符串输出
func (s Sentiment) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON 从名称字符串解析
func (s *Sentiment) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	v, ok := sentimentFromName[str]
	if !ok {
		return fmt.Errorf("analyzer: unknown sentiment: %q", str)
	}
	*s = v
	return nil
}

// ClassifySentiment 对完整 token 序列(含停用词)统计正负词数并判定倾向。
// 两个条件依次判断，后判断的 Negative 会覆盖 Positive。
func ClassifySentiment(tokens []string) Sentiment {
	posCount, negCount := 0, 0
	for _, tok := range tokens {
		if _, ok := positiveWords[tok]; ok {
			posCount++
		}
		if _, ok := negativeWords[tok]; ok {
			negCount++
		}
	}

	sentiment := Neutral
	if posCount-negCount >= sentimentThreshold {
		sentiment = Positive
	}
	if negCount-posCount >= sentimentThreshold {
		sentiment = Negative
	}
	return sentiment
}
