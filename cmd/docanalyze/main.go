package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/ccp-p/doc_analysis/internal/config"
	"github.com/ccp-p/doc_analysis/internal/extract"
	"github.com/ccp-p/doc_analysis/internal/extract/ocr"
	"github.com/ccp-p/doc_analysis/internal/extract/web"
	"github.com/ccp-p/doc_analysis/internal/finder"
	"github.com/ccp-p/doc_analysis/internal/logging"
	"github.com/ccp-p/doc_analysis/internal/pipeline"
)

// 定义命令行参数
var (
	configPath   = flag.String("config", "docanalysis.yaml", "配置文件路径")
	filePath     = flag.String("file", "", "要分析的单个文件")
	mimetype     = flag.String("mime", "", "文件的 MIME 类型(可选)")
	directory    = flag.String("dir", "", "批量分析的目录")
	pattern      = flag.String("pattern", finder.DefaultPattern, "文件名匹配模式(正则表达式)")
	pageURL      = flag.String("url", "", "要渲染并分析的网页")
	topWords     = flag.Int("top", 0, "批量模式下汇总的高频词数量")
	concurrency  = flag.Int("concurrency", 0, "批量模式并发数")
	removeSource = flag.Bool("remove", false, "分析成功后删除源文件")
	outputFile   = flag.String("out", "", "输出文件路径")
	verbose      = flag.Bool("v", false, "显示详细信息")
)

// 彩色输出
var (
	infoColor    = color.New(color.FgCyan).SprintFunc()
	successColor = color.New(color.FgGreen).SprintFunc()
	errorColor   = color.New(color.FgRed).SprintFunc()
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorColor("错误"), err)
		os.Exit(1)
	}
}

func run() error {
	start := time.Now()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *concurrency > 0 {
		cfg.Batch.Concurrency = *concurrency
	}
	if *topWords > 0 {
		cfg.Batch.TopWords = *topWords
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := []extract.Option{extract.WithLogger(logger)}
	if !*removeSource {
		opts = append(opts, extract.WithKeepSource())
	}
	dispatcher := extract.NewDispatcher(extract.PDFExtractor{}, ocr.New(cfg.Extract.OCRLanguage), opts...)
	defer dispatcher.Wait()

	var result interface{}
	switch {
	case *pageURL != "":
		fmt.Fprintf(os.Stderr, "%s 正在渲染: %s\n", infoColor("信息"), *pageURL)
		result, err = web.NewFetcher(cfg.Extract.PageTimeout, logger).FetchAndAnalyze(ctx, *pageURL)

	case *filePath != "":
		fmt.Fprintf(os.Stderr, "%s 正在分析: %s\n", infoColor("信息"), *filePath)
		result, err = dispatcher.ParseAndAnalyze(ctx, *filePath, *mimetype)

	case *directory != "":
		result, err = runBatch(ctx, cfg, dispatcher, logger)

	default:
		flag.Usage()
		return errors.New("请指定 -file、-dir 或 -url")
	}
	if err != nil {
		return err
	}

	if err := writeOutput(result, *outputFile); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "%s 处理完成! 耗时: %.2f秒\n", successColor("完成"), time.Since(start).Seconds())
	return nil
}

func runBatch(ctx context.Context, cfg config.Config, dispatcher *extract.Dispatcher, logger logrus.FieldLogger) (*pipeline.Report, error) {
	fileFinder, err := finder.NewFileFinder(*pattern)
	if err != nil {
		return nil, err
	}

	files, err := fileFinder.Collect(ctx, *directory)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(os.Stderr, "%s 找到 %d 个文件，使用 %d 个并发工作器\n", infoColor("信息"), len(files), cfg.Batch.Concurrency)

	return pipeline.Run(ctx, files, dispatcher, pipeline.Options{
		Concurrency: cfg.Batch.Concurrency,
		TopWords:    cfg.Batch.TopWords,
		Log:         logger,
	})
}

// 输出报告到文件或标准输出
func writeOutput(result interface{}, path string) error {
	reportJSON, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}

	if path == "" {
		fmt.Println(string(reportJSON))
		return nil
	}
	if err := os.WriteFile(path, reportJSON, 0644); err != nil {
		return fmt.Errorf("保存报告失败: %w", err)
	}
	fmt.Fprintf(os.Stderr, "%s 分析报告已保存到: %s\n", successColor("完成"), path)
	return nil
}
