package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ccp-p/doc_analysis/internal/analyzer"
	"github.com/ccp-p/doc_analysis/internal/extract"
)

type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) response {
	t.Helper()
	var resp response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	return resp
}

// multipartBody 构造上传请求体
func multipartBody(t *testing.T, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("写入字段失败: %v", err)
		}
	}
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("创建文件字段失败: %v", err)
		}
		part.Write([]byte(content))
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func newTestServer(t *testing.T, pdf, ocr extract.Extractor, opts ...extract.Option) (*Server, *extract.Dispatcher, string) {
	t.Helper()
	uploadDir := t.TempDir()
	d := extract.NewDispatcher(pdf, ocr, opts...)
	return New(d, uploadDir, 1<<20, nil), d, uploadDir
}

// readFile 把上传的文件内容当作提取出的文本
var readFile = extract.ExtractorFunc(func(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	return string(data), err
})

var failing = extract.ExtractorFunc(func(ctx context.Context, path string) (string, error) {
	return "", errors.New("cannot read")
})

func TestAnalyzeFile(t *testing.T) {
	srv, d, uploadDir := newTestServer(t, readFile, failing)

	body, contentType := multipartBody(t, "post.pdf", "please follow and share this post #promo", nil)
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)
	d.Wait()

	if rec.Code != http.StatusOK {
		t.Fatalf("状态码 %d, 响应 %s", rec.Code, rec.Body.String())
	}
	resp := decode(t, rec)
	if !resp.Success {
		t.Fatalf("响应失败: %s", resp.Error)
	}

	var doc extract.Document
	if err := json.Unmarshal(resp.Data, &doc); err != nil {
		t.Fatalf("解析文档失败: %v", err)
	}
	if diff := cmp.Diff([]string{"follow", "share"}, doc.Analysis.FoundCTAs); diff != "" {
		t.Errorf("FoundCTAs 不匹配 (-want +got):\n%s", diff)
	}
	if doc.Analysis.HashtagCount != 1 {
		t.Errorf("HashtagCount = %d", doc.Analysis.HashtagCount)
	}

	entries, _ := os.ReadDir(uploadDir)
	if len(entries) != 0 {
		t.Errorf("上传文件应在分析后删除，剩余 %d 个", len(entries))
	}
}

func TestAnalyzeFileKeepSourceRemovesUpload(t *testing.T) {
	srv, d, uploadDir := newTestServer(t, readFile, failing, extract.WithKeepSource())

	body, contentType := multipartBody(t, "post.txt", "great great deals", nil)
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)
	d.Wait()

	if rec.Code != http.StatusOK {
		t.Fatalf("状态码 %d, 响应 %s", rec.Code, rec.Body.String())
	}
	entries, _ := os.ReadDir(uploadDir)
	if len(entries) != 0 {
		t.Errorf("保留源文件时上传文件也应删除，剩余 %d 个", len(entries))
	}
}

func TestAnalyzeFileMimetypeOverride(t *testing.T) {
	// 表单字段指定为图片时走 OCR
	ocr := extract.ExtractorFunc(func(ctx context.Context, path string) (string, error) {
		return "good great love", nil
	})
	srv, d, _ := newTestServer(t, failing, ocr)

	body, contentType := multipartBody(t, "upload.bin", "binary", map[string]string{"mimetype": "image/png"})
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)
	d.Wait()

	resp := decode(t, rec)
	var doc extract.Document
	if err := json.Unmarshal(resp.Data, &doc); err != nil {
		t.Fatalf("解析文档失败: %v", err)
	}
	if doc.Analysis.Sentiment != analyzer.Positive {
		t.Errorf("Sentiment = %v", doc.Analysis.Sentiment)
	}
}

func TestAnalyzeFileErrors(t *testing.T) {
	srv, _, uploadDir := newTestServer(t, failing, failing)

	t.Run("提取失败", func(t *testing.T) {
		body, contentType := multipartBody(t, "scan.bin", "xx", nil)
		req := httptest.NewRequest(http.MethodPost, "/analyze", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		srv.Handler().ServeHTTP(rec, req)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("状态码 %d, 期望 %d", rec.Code, http.StatusUnprocessableEntity)
		}
		if resp := decode(t, rec); resp.Success || resp.Error == "" {
			t.Errorf("响应应为失败: %+v", resp)
		}
		entries, _ := os.ReadDir(uploadDir)
		if len(entries) != 0 {
			t.Errorf("失败时上传文件也应删除，剩余 %d 个", len(entries))
		}
	})

	t.Run("缺少文件", func(t *testing.T) {
		body, contentType := multipartBody(t, "", "", map[string]string{"mimetype": "image/png"})
		req := httptest.NewRequest(http.MethodPost, "/analyze", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		srv.Handler().ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("状态码 %d, 期望 %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("方法不允许", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analyze", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("状态码 %d, 期望 %d", rec.Code, http.StatusMethodNotAllowed)
		}
	})

	t.Run("文件过大", func(t *testing.T) {
		small := New(extract.NewDispatcher(readFile, failing), t.TempDir(), 64, nil)
		body, contentType := multipartBody(t, "big.txt", strings.Repeat("x", 1024), nil)
		req := httptest.NewRequest(http.MethodPost, "/analyze", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		small.Handler().ServeHTTP(rec, req)
		if rec.Code == http.StatusOK {
			t.Error("超过上限的上传不应成功")
		}
	})
}

func TestAnalyzeText(t *testing.T) {
	srv, _, _ := newTestServer(t, failing, failing)

	req := httptest.NewRequest(http.MethodPost, "/analyze/text", strings.NewReader("bad poor hate this"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("状态码 %d", rec.Code)
	}
	var result analyzer.Result
	if err := json.Unmarshal(decode(t, rec).Data, &result); err != nil {
		t.Fatalf("解析结果失败: %v", err)
	}
	if result.Sentiment != analyzer.Negative || result.WordCount != 4 {
		t.Errorf("结果不匹配: %+v", result)
	}
}

func TestHealth(t *testing.T) {
	srv, _, _ := newTestServer(t, failing, failing)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || !decode(t, rec).Success {
		t.Errorf("健康检查失败: %d %s", rec.Code, rec.Body.String())
	}
}
