package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/ccp-p/doc_analysis/internal/config"
)

func TestNewWithOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithOutput(config.LogConfig{Level: "warn", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("创建日志失败: %v", err)
	}
	if logger.GetLevel() != logrus.WarnLevel {
		t.Errorf("level = %v", logger.GetLevel())
	}

	logger.Info("ignored")
	logger.WithField("path", "a.pdf").Warn("提取失败")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("应只输出一行日志，实际 %d 行: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("日志不是 JSON: %v", err)
	}
	if entry["path"] != "a.pdf" || entry["level"] != "warning" {
		t.Errorf("日志字段不匹配: %v", entry)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	if _, err := NewWithOutput(config.LogConfig{Level: "loud"}, &bytes.Buffer{}); err == nil {
		t.Error("非法级别应返回错误")
	}
}
