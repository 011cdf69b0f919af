package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/ccp-p/doc_analysis/internal/config"
	"github.com/ccp-p/doc_analysis/internal/extract"
	"github.com/ccp-p/doc_analysis/internal/extract/ocr"
	"github.com/ccp-p/doc_analysis/internal/logging"
	"github.com/ccp-p/doc_analysis/internal/server"
)

var (
	infoColor  = color.New(color.FgCyan).SprintFunc()
	errorColor = color.New(color.FgRed).SprintFunc()
)

func main() {
	// 命令行参数
	configPath := flag.String("config", "docanalysis.yaml", "配置文件路径")
	addr := flag.String("addr", "", "监听地址，覆盖配置文件")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("%s 加载配置失败: %v\n", errorColor("错误"), err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Printf("%s 初始化日志失败: %v\n", errorColor("错误"), err)
		os.Exit(1)
	}

	// 上传文件在分析成功后删除
	opts := []extract.Option{extract.WithLogger(logger)}
	if cfg.Extract.KeepSource {
		opts = append(opts, extract.WithKeepSource())
	}
	dispatcher := extract.NewDispatcher(extract.PDFExtractor{}, ocr.New(cfg.Extract.OCRLanguage), opts...)

	srv := server.New(dispatcher, cfg.Server.UploadDir, cfg.Server.MaxUploadBytes, logger)
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		fmt.Printf("%s API 服务器启动在 %s\n", infoColor("信息"), cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("服务器异常退出")
		}
	}()

	<-ctx.Done()
	logger.Info("正在关闭服务器")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("关闭服务器失败")
	}
	dispatcher.Wait()
}
