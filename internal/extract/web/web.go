// Package web 用无头 Chrome 渲染网页，提取渲染后的可见文本。
package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"

	"github.com/ccp-p/doc_analysis/internal/extract"
)

const (
	DefaultTimeout   = 30 * time.Second
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

var ErrInvalidURL = errors.New("url must be absolute http or https")

// Fetcher 网页抓取器
type Fetcher struct {
	timeout time.Duration
	log     logrus.FieldLogger
}

// NewFetcher 创建抓取器，timeout <= 0 时使用 DefaultTimeout
func NewFetcher(timeout time.Duration, log logrus.FieldLogger) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}
	return &Fetcher{timeout: timeout, log: log}
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidURL
	}
	return nil
}

// FetchHTML 打开页面，等待 body 可见后返回整个文档的 HTML
func (f *Fetcher) FetchHTML(ctx context.Context, rawURL string) (string, error) {
	if err := validateURL(rawURL); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(defaultUserAgent),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	taskCtx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(f.log.Debugf))
	defer cancel()

	var htmlContent string
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(rawURL),
		chromedp.WaitVisible(`body`, chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			node, err := dom.GetDocument().Do(ctx)
			if err != nil {
				return err
			}
			htmlContent, err = dom.GetOuterHTML().WithNodeID(node.NodeID).Do(ctx)
			return err
		}),
	)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", rawURL, err)
	}

	f.log.WithFields(logrus.Fields{"url": rawURL, "bytes": len(htmlContent)}).Debug("页面渲染完成")
	return htmlContent, nil
}

// FetchText 渲染页面并返回可见文本
func (f *Fetcher) FetchText(ctx context.Context, rawURL string) (string, error) {
	htmlContent, err := f.FetchHTML(ctx, rawURL)
	if err != nil {
		return "", err
	}
	return extract.HTMLText(strings.NewReader(htmlContent))
}

// FetchAndAnalyze 渲染页面并分析其文本
func (f *Fetcher) FetchAndAnalyze(ctx context.Context, rawURL string) (*extract.Document, error) {
	text, err := f.FetchText(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return extract.NewDocument(text), nil
}
