// Package extract 负责从上传的文件中提取纯文本并交给 analyzer 分析。
//
// 具体的提取工作由 Extractor 完成(PDF 解析、OCR、HTML)，
// Dispatcher 根据文件类型选择提取器，并在类型不明时先尝试 PDF 再回退到 OCR。
package extract

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
)

var (
	ErrEmptyPath   = errors.New("file path is empty")
	ErrNoExtractor = errors.New("no extractor configured")
)

// Extractor 从文件中提取尽可能多的纯文本，失败时返回错误
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// ExtractorFunc 让普通函数实现 Extractor
type ExtractorFunc func(ctx context.Context, path string) (string, error)

func (f ExtractorFunc) Extract(ctx context.Context, path string) (string, error) {
	return f(ctx, path)
}

// Kind 文档类型
type Kind int

const (
	KindUnknown Kind = iota
	KindPDF
	KindImage
	KindHTML
	KindText
)

var kindNames = map[Kind]string{
	KindUnknown: "unknown",
	KindPDF:     "pdf",
	KindImage:   "image",
	KindHTML:    "html",
	KindText:    "text",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".bmp": true,
	".tif": true, ".tiff": true, ".gif": true, ".webp": true,
}

// DetectKind 根据 MIME 类型或扩展名判断文档类型，两者任一命中即可
func DetectKind(path, mimetype string) Kind {
	mediaType := strings.ToLower(strings.TrimSpace(mimetype))
	if parsed, _, err := mime.ParseMediaType(mediaType); err == nil {
		mediaType = parsed
	}
	ext := strings.ToLower(filepath.Ext(path))

	switch {
	case mediaType == "application/pdf" || ext == ".pdf":
		return KindPDF
	case strings.HasPrefix(mediaType, "image/") || imageExts[ext]:
		return KindImage
	case mediaType == "text/html" || ext == ".html" || ext == ".htm":
		return KindHTML
	case mediaType == "text/plain" || ext == ".txt" || ext == ".md":
		return KindText
	default:
		return KindUnknown
	}
}

// ExtractionError 所有提取途径都失败时返回。
// 回退场景下 Err 同时包含 OCR 与 PDF 的错误，OCR 的在前。
type ExtractionError struct {
	Path string
	Kind Kind
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s (%s): %v", e.Path, e.Kind, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
