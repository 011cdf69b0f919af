// Package server 提供文档上传分析的 HTTP 接口
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ccp-p/doc_analysis/internal/analyzer"
	"github.com/ccp-p/doc_analysis/internal/extract"
)

// DocumentAnalyzer 由 *extract.Dispatcher 实现
type DocumentAnalyzer interface {
	ParseAndAnalyze(ctx context.Context, path, mimetype string) (*extract.Document, error)
}

// ApiResponse 响应包装器
type ApiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Server 上传接口
type Server struct {
	analyzer       DocumentAnalyzer
	uploadDir      string
	maxUploadBytes int64
	log            logrus.FieldLogger
}

// New 创建服务，上传的文件先保存在 uploadDir，请求处理完即删除
func New(da DocumentAnalyzer, uploadDir string, maxUploadBytes int64, log logrus.FieldLogger) *Server {
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}
	return &Server{
		analyzer:       da,
		uploadDir:      uploadDir,
		maxUploadBytes: maxUploadBytes,
		log:            log,
	}
}

// Handler 返回带日志中间件的路由
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/analyze", s.handleAnalyzeFile)
	mux.HandleFunc("/analyze/text", s.handleAnalyzeText)
	return s.loggingMiddleware(mux)
}

// 日志中间件
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"uri":      r.RequestURI,
			"duration": time.Since(start),
		}).Info("请求完成")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, "方法不允许", http.StatusMethodNotAllowed)
		return
	}
	sendJSON(w, ApiResponse{Success: true, Data: "ok"})
}

// handleAnalyzeFile 处理 multipart 上传，字段 file 为文件，可选字段 mimetype 覆盖文件类型
func (s *Server) handleAnalyzeFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendError(w, "方法不允许", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			sendError(w, "文件过大", http.StatusRequestEntityTooLarge)
			return
		}
		sendError(w, "缺少上传文件", http.StatusBadRequest)
		return
	}
	defer file.Close()

	mimetype := r.FormValue("mimetype")
	if mimetype == "" {
		mimetype = header.Header.Get("Content-Type")
	}

	path, err := s.saveUpload(file, header.Filename)
	if err != nil {
		s.log.WithError(err).Error("保存上传文件失败")
		sendError(w, "保存上传文件失败", http.StatusInternalServerError)
		return
	}

	// 上传文件由服务端负责删除，与 analyzer 是否保留源文件无关
	defer s.removeUpload(path)

	doc, err := s.analyzer.ParseAndAnalyze(r.Context(), path, mimetype)
	if err != nil {
		var extErr *extract.ExtractionError
		if errors.As(err, &extErr) {
			sendError(w, "无法从文件中提取文本", http.StatusUnprocessableEntity)
			return
		}
		sendError(w, "处理文件失败", http.StatusInternalServerError)
		return
	}

	sendJSON(w, ApiResponse{Success: true, Data: doc})
}

// handleAnalyzeText 直接分析请求体中的文本
func (s *Server) handleAnalyzeText(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendError(w, "方法不允许", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxUploadBytes))
	if err != nil {
		sendError(w, "文本过大", http.StatusRequestEntityTooLarge)
		return
	}

	sendJSON(w, ApiResponse{Success: true, Data: analyzer.Analyze(string(body))})
}

// saveUpload 保存到上传目录，保留扩展名以便识别类型
func (s *Server) saveUpload(src io.Reader, filename string) (string, error) {
	if err := os.MkdirAll(s.uploadDir, 0755); err != nil {
		return "", err
	}

	out, err := os.CreateTemp(s.uploadDir, "upload-*"+filepath.Ext(filepath.Base(filename)))
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		os.Remove(out.Name())
		return "", err
	}
	return out.Name(), nil
}

// removeUpload 删除上传文件，analyzer 已经删除时忽略
func (s *Server) removeUpload(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.log.WithError(err).WithField("path", path).Warn("删除上传文件失败")
	}
}

// 辅助函数：发送JSON响应
func sendJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

// 辅助函数：发送错误响应
func sendError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ApiResponse{
		Success: false,
		Error:   message,
	})
}
