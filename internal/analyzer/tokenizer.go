package analyzer

import (
	"regexp"
	"strings"
)

// tokenRegex 匹配由字母数字、#、@、' 组成的最长连续片段
var tokenRegex = regexp.MustCompile(`[a-z0-9#@']+`)

// wordChar token 至少要包含一个字母或数字
var wordChar = regexp.MustCompile(`[a-z0-9]`)

// lineBreaks 换行统一替换为空格，避免相邻两行的词粘连
var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ")

// Normalize 将原始文本转换为小写 token 序列，顺序与原文一致。
// 片段首尾的撇号视为引号去掉，末尾的 # 和 @ 也去掉；
// 不含字母数字的片段（如单独的 # 或 @）不输出。
func Normalize(rawText string) []string {
	text := strings.ToLower(lineBreaks.Replace(rawText))

	runs := tokenRegex.FindAllString(text, -1)
	tokens := make([]string, 0, len(runs))
	for _, run := range runs {
		tok := strings.TrimRight(strings.TrimLeft(run, "'"), "'#@")
		if !wordChar.MatchString(tok) {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// IsHashtag 以 # 开头的 token 为话题标签
func IsHashtag(token string) bool {
	return strings.HasPrefix(token, "#")
}
