// Package pipeline 并发处理一批文件，汇总每个文件的分析结果和整体词频。
package pipeline

import (
	"context"
	"io"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ccp-p/doc_analysis/internal/analyzer"
	"github.com/ccp-p/doc_analysis/internal/extract"
)

// DocumentAnalyzer 将单个文件转为分析后的文档，*extract.Dispatcher 实现了它
type DocumentAnalyzer interface {
	ParseAndAnalyze(ctx context.Context, path, mimetype string) (*extract.Document, error)
}

// FileReport 单个文件的处理结果
type FileReport struct {
	Path     string            `json:"path"`
	Document *extract.Document `json:"document,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// Report 批量处理报告
type Report struct {
	Files          []FileReport        `json:"files"`
	Processed      int                 `json:"processed"`
	Failed         int                 `json:"failed"`
	TopWords       []analyzer.WordFreq `json:"topWords"`
	ElapsedSeconds float64             `json:"elapsedSeconds"`
}

// Options 批量处理参数
type Options struct {
	Concurrency int // <= 0 时使用 CPU 数
	TopWords    int // 汇总词频返回的数量，<= 0 时使用 20
	Log         logrus.FieldLogger
}

// Run 并发处理 files。单个文件失败只记录在报告中；
// ctx 取消时停止调度剩余文件，返回已有的报告和 ctx 的错误。
func Run(ctx context.Context, files []string, da DocumentAnalyzer, opts Options) (*Report, error) {
	start := time.Now()

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	topN := opts.TopWords
	if topN <= 0 {
		topN = 20
	}
	log := opts.Log
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}

	wordAnalyzer := analyzer.NewWordFrequencyAnalyzer()
	reports := make([]FileReport, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, path := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			reports[i] = FileReport{Path: path}

			doc, err := da.ParseAndAnalyze(gctx, path, "")
			if err != nil {
				log.WithError(err).WithField("path", path).Warn("处理文件失败")
				reports[i].Error = err.Error()
				return nil
			}

			reports[i].Document = doc
			if doc.Tokens != nil {
				wordAnalyzer.AddTokens(doc.Tokens)
			} else {
				wordAnalyzer.ProcessText(doc.Text)
			}
			log.WithFields(logrus.Fields{"path": path, "words": doc.Analysis.WordCount}).Info("处理文件完成")
			return nil
		})
	}
	g.Wait()

	report := &Report{
		Files:    make([]FileReport, 0, len(files)),
		TopWords: wordAnalyzer.GetTopWords(topN),
	}
	for _, r := range reports {
		// 被取消而未调度的文件没有路径
		if r.Path == "" {
			continue
		}
		if r.Error != "" {
			report.Failed++
		} else {
			report.Processed++
		}
		report.Files = append(report.Files, r)
	}
	report.ElapsedSeconds = time.Since(start).Seconds()

	return report, ctx.Err()
}
