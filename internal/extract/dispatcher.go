package extract

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ccp-p/doc_analysis/internal/analyzer"
)

// Document 提取出的文本及其分析结果
type Document struct {
	Text     string          `json:"text"`
	Analysis analyzer.Result `json:"analysis"`

	// Tokens 分析时得到的 token，供批量汇总复用
	Tokens []string `json:"-"`
}

// NewDocument 对文本只分词一次并完成分析
func NewDocument(text string) *Document {
	tokens := analyzer.Normalize(text)
	return &Document{
		Text:     text,
		Analysis: analyzer.AnalyzeTokens(tokens),
		Tokens:   tokens,
	}
}

// Dispatcher 按文件类型选择提取器，提取后做文本分析并清理源文件
type Dispatcher struct {
	pdf  Extractor
	ocr  Extractor
	html Extractor
	text Extractor

	keepSource bool
	remove     func(string) error
	log        logrus.FieldLogger

	// 追踪尚未结束的后台清理
	cleanup sync.WaitGroup
}

// Option 配置 Dispatcher
type Option func(*Dispatcher)

// WithLogger 设置日志
func WithLogger(log logrus.FieldLogger) Option {
	return func(d *Dispatcher) {
		if log != nil {
			d.log = log
		}
	}
}

// WithKeepSource 处理完成后保留源文件
func WithKeepSource() Option {
	return func(d *Dispatcher) {
		d.keepSource = true
	}
}

// WithHTMLExtractor 替换 HTML 提取器
func WithHTMLExtractor(e Extractor) Option {
	return func(d *Dispatcher) {
		d.html = e
	}
}

// WithTextExtractor 替换纯文本提取器
func WithTextExtractor(e Extractor) Option {
	return func(d *Dispatcher) {
		d.text = e
	}
}

// withRemover 测试时替换删除函数
func withRemover(remove func(string) error) Option {
	return func(d *Dispatcher) {
		d.remove = remove
	}
}

// NewDispatcher 创建调度器，pdf 和 ocr 为外部提取器
func NewDispatcher(pdf, ocr Extractor, opts ...Option) *Dispatcher {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	d := &Dispatcher{
		pdf:    pdf,
		ocr:    ocr,
		html:   HTMLExtractor{},
		text:   TextExtractor{},
		remove: os.Remove,
		log:    discard,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ParseAndAnalyze 提取文件文本并分析。
// 提取出的文本即使为空也会被分析，只有所有提取途径都失败才返回 *ExtractionError。
// 类型不明时 PDF 没有文字会改用 OCR，OCR 失败则仍返回 PDF 的结果。
// 成功后在后台删除源文件，删除结果不影响返回值。
func (d *Dispatcher) ParseAndAnalyze(ctx context.Context, path, mimetype string) (*Document, error) {
	if path == "" {
		return nil, &ExtractionError{Err: ErrEmptyPath}
	}

	kind := DetectKind(path, mimetype)
	log := d.log.WithFields(logrus.Fields{"path": path, "kind": kind})

	text, err := d.extract(ctx, log, path, kind)
	if err != nil {
		log.WithError(err).Warn("文本提取失败")
		return nil, &ExtractionError{Path: path, Kind: kind, Err: err}
	}

	doc := NewDocument(text)
	log.WithField("words", doc.Analysis.WordCount).Debug("文档分析完成")

	d.removeSource(path)
	return doc, nil
}

func (d *Dispatcher) extract(ctx context.Context, log logrus.FieldLogger, path string, kind Kind) (string, error) {
	switch kind {
	case KindPDF:
		return run(ctx, d.pdf, path)
	case KindImage:
		return run(ctx, d.ocr, path)
	case KindHTML:
		return run(ctx, d.html, path)
	case KindText:
		return run(ctx, d.text, path)
	}

	// 类型不明：先试 PDF，失败或没有文字时改用 OCR
	text, pdfErr := run(ctx, d.pdf, path)
	if pdfErr == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}
	if pdfErr != nil {
		log.WithError(pdfErr).Debug("PDF 提取失败，改用 OCR")
	} else {
		log.Debug("PDF 没有文字，改用 OCR")
	}

	ocrText, ocrErr := run(ctx, d.ocr, path)
	if ocrErr == nil {
		return ocrText, nil
	}
	if pdfErr == nil {
		// PDF 读取成功只是没有文字，保留它的结果
		log.WithError(ocrErr).Debug("OCR 失败，使用 PDF 结果")
		return text, nil
	}
	return "", errors.Join(ocrErr, pdfErr)
}

func run(ctx context.Context, e Extractor, path string) (string, error) {
	if e == nil {
		return "", ErrNoExtractor
	}
	return e.Extract(ctx, path)
}

// removeSource 后台删除源文件，不等待，失败只记日志
func (d *Dispatcher) removeSource(path string) {
	if d.keepSource {
		return
	}

	d.cleanup.Add(1)
	go func() {
		defer d.cleanup.Done()
		if err := d.remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			d.log.WithError(err).WithField("path", path).Debug("清理源文件失败")
		}
	}()
}

// Wait 等待所有后台清理结束，用于进程退出前
func (d *Dispatcher) Wait() {
	d.cleanup.Wait()
}
