package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ReportSuffix 分析结果文件的后缀，追加在源文件名之后
const ReportSuffix = ".analysis.json"

// ProcessToReport 分析 path 并把结果写入 outDir/<文件名>.analysis.json，
// 写入成功后才删除源文件，任何一步失败都保留源文件。
// da 应配置为不自行删除源文件。
func ProcessToReport(ctx context.Context, path, outDir string, da DocumentAnalyzer) (string, error) {
	doc, err := da.ParseAndAnalyze(ctx, path, "")
	if err != nil {
		return "", err
	}

	reportPath := filepath.Join(outDir, filepath.Base(path)+ReportSuffix)
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(reportPath, data, 0644); err != nil {
		return "", fmt.Errorf("写入分析结果 %s: %w", reportPath, err)
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return reportPath, fmt.Errorf("删除源文件: %w", err)
	}
	return reportPath, nil
}
