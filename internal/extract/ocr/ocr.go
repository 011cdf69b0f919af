// Package ocr 通过 gosseract 调用 Tesseract 识别图片中的文字。
//
// 需要系统安装 tesseract 及对应语言包，例如 apt-get install tesseract-ocr-eng。
package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// DefaultLanguage 默认识别语言
const DefaultLanguage = "eng"

// Extractor 单一语言的 OCR 提取器，每次调用创建独立的 Tesseract 客户端
type Extractor struct {
	language string
}

// New 创建 OCR 提取器，language 为空时使用 DefaultLanguage
func New(language string) *Extractor {
	if language == "" {
		language = DefaultLanguage
	}
	return &Extractor{language: language}
}

// Extract 识别图片文字
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.language); err != nil {
		return "", fmt.Errorf("ocr language %s: %w", e.language, err)
	}
	if err := client.SetImage(path); err != nil {
		return "", fmt.Errorf("ocr load image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr recognize: %w", err)
	}
	return text, nil
}
