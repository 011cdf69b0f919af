package main

import (
	"context"
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
	"github.com/ccp-p/doc_analysis/internal/finder"
	"github.com/ccp-p/doc_analysis/internal/logging"
	"github.com/ccp-p/doc_analysis/internal/pipeline"
)

// Options 监视参数
type Options struct {
	Inbox    string        // 要监视的目录
	Output   string        // 分析结果输出目录
	Interval time.Duration // 检查间隔
}

var (
	infoColor    = color.New(color.FgCyan).SprintFunc()
	successColor = color.New(color.FgGreen).SprintFunc()
	errorColor   = color.New(color.FgRed).SprintFunc()
)

func main() {
	// 解析命令行参数
	configPath := flag.String("config", "docanalysis.yaml", "配置文件路径")
	inbox := flag.String("dir", "inbox", "要监视的目录")
	output := flag.String("out", "reports", "分析结果输出目录")
	interval := flag.Duration("interval", 2*time.Second, "检查间隔")
	flag.Parse()

	opts := Options{Inbox: *inbox, Output: *output, Interval: *interval}

	// 验证目录存在
	if _, err := os.Stat(opts.Inbox); os.IsNotExist(err) {
		fmt.Printf("%s 目录不存在: %s\n", errorColor("错误"), opts.Inbox)
		os.Exit(1)
	}
	if err := os.MkdirAll(opts.Output, 0755); err != nil {
		fmt.Printf("%s 创建输出目录失败: %v\n", errorColor("错误"), err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("%s 加载配置失败: %v\n", errorColor("错误"), err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Printf("%s 初始化日志失败: %v\n", errorColor("错误"), err)
		os.Exit(1)
	}

	fileFinder, err := finder.NewFileFinder("")
	if err != nil {
		fmt.Printf("%s %v\n", errorColor("错误"), err)
		os.Exit(1)
	}

	// 源文件在分析结果写入后才删除
	dispatcher := extract.NewDispatcher(extract.PDFExtractor{}, ocr.New(cfg.Extract.OCRLanguage),
		extract.WithLogger(logger), extract.WithKeepSource())

	fmt.Printf("%s 开始监视目录: %s\n", infoColor("信息"), opts.Inbox)
	fmt.Printf("%s 检查间隔: %v\n", infoColor("信息"), opts.Interval)
	fmt.Println("按 Ctrl+C 停止...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	watch(ctx, opts, fileFinder, dispatcher, logger)
	dispatcher.Wait()
}

func watch(ctx context.Context, opts Options, fileFinder *finder.FileFinder, dispatcher *extract.Dispatcher, logger logrus.FieldLogger) {
	// 记录已处理过的文件状态，失败的文件在修改前不会重试
	seen := make(map[string]finder.FileInfo)

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	for {
		current := fileFinder.Scan(opts.Inbox)
		for _, path := range finder.Changed(seen, current) {
			if ctx.Err() != nil {
				return
			}
			processFile(ctx, path, opts.Output, dispatcher, logger)
		}
		seen = current

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func processFile(ctx context.Context, path, outDir string, dispatcher *extract.Dispatcher, logger logrus.FieldLogger) {
	fmt.Printf("%s 检测到文件: %s\n", infoColor("信息"), path)

	reportPath, err := pipeline.ProcessToReport(ctx, path, outDir, dispatcher)
	if err != nil {
		logger.WithError(err).WithField("path", path).Error("处理文件失败")
		fmt.Printf("%s 处理失败: %v\n", errorColor("错误"), err)
		return
	}
	fmt.Printf("%s 分析结果已保存到: %s\n", successColor("完成"), reportPath)
}
