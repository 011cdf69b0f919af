package web

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestValidateURL(t *testing.T) {
	testCases := []struct {
		url     string
		wantErr bool
	}{
		{url: "https://go.dev/", wantErr: false},
		{url: "http://example.com/post?id=1", wantErr: false},
		{url: "ftp://example.com/file", wantErr: true},
		{url: "/relative/path", wantErr: true},
		{url: "https://", wantErr: true},
		{url: "://bad", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.url, func(t *testing.T) {
			err := validateURL(tc.url)
			if (err != nil) != tc.wantErr {
				t.Errorf("validateURL(%q) error = %v, wantErr %v", tc.url, err, tc.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidURL) {
				t.Errorf("错误应包含 ErrInvalidURL: %v", err)
			}
		})
	}
}

func TestFetchRejectsInvalidURL(t *testing.T) {
	f := NewFetcher(0, nil)
	if f.timeout != DefaultTimeout {
		t.Errorf("timeout = %v, 期望 %v", f.timeout, DefaultTimeout)
	}

	// 非法 URL 在启动浏览器之前就返回
	_, err := f.FetchAndAnalyze(context.Background(), "file:///etc/passwd")
	if !errors.Is(err, ErrInvalidURL) {
		t.Errorf("应返回 ErrInvalidURL，得到 %v", err)
	}

	if got := NewFetcher(5*time.Second, nil).timeout; got != 5*time.Second {
		t.Errorf("timeout = %v", got)
	}
}
