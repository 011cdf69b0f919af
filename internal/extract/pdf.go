package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ledongthuc/pdf"
)

var errEmptyPDFContent = errors.New("pdf content is empty")

// PDFExtractor 使用 ledongthuc/pdf 提取 PDF 中的文字层
type PDFExtractor struct{}

// Extract 读取文件并返回所有页面拼接后的文本
func (PDFExtractor) Extract(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	return PDFText(data)
}

// PDFText 从内存中的 PDF 数据提取文本。解析器遇到损坏文件可能 panic，这里转换为错误。
func PDFText(data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", errEmptyPDFContent
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	textReader, err := doc.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, textReader); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	return buf.String(), nil
}
