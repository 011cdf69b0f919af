package finder

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"
)

// DefaultPattern 匹配可提取文本的文档
const DefaultPattern = `(?i)\.(pdf|png|jpe?g|bmp|tiff?|gif|webp|html?|txt|md)$`

// FileFinder 查找匹配模式的文件
type FileFinder struct {
	pattern *regexp.Regexp
}

// NewFileFinder 创建文件查找器，pattern 为空时使用 DefaultPattern
func NewFileFinder(pattern string) (*FileFinder, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	regex, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &FileFinder{pattern: regex}, nil
}

// Match 文件名是否匹配
func (f *FileFinder) Match(name string) bool {
	return f.pattern.MatchString(name)
}

// FindFiles 查找目录中匹配模式的文件。
// 两个通道都会在遍历结束后关闭，错误通道最多有一个错误。
func (f *FileFinder) FindFiles(ctx context.Context, directory string) (<-chan string, <-chan error) {
	fileChannel := make(chan string)
	errChannel := make(chan error, 1)

	go func() {
		defer close(fileChannel)
		defer close(errChannel)

		// 遍历目录中的所有文件
		err := filepath.Walk(directory, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return nil
			}
			if !f.Match(info.Name()) {
				return nil
			}

			select {
			case fileChannel <- path:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil {
			errChannel <- err
		}
	}()

	return fileChannel, errChannel
}

// Collect 返回目录下所有匹配的文件，按路径排序
func (f *FileFinder) Collect(ctx context.Context, directory string) ([]string, error) {
	files, errc := f.FindFiles(ctx, directory)

	var paths []string
	for path := range files {
		paths = append(paths, path)
	}
	if err := <-errc; err != nil {
		return nil, err
	}

	sort.Strings(paths)
	return paths, nil
}

// FileInfo 文件的修改时间信息
type FileInfo struct {
	Path    string
	ModTime time.Time
	Size    int64
}

// Scan 扫描目录中匹配的所有文件，遍历出错的条目直接跳过
func (f *FileFinder) Scan(root string) map[string]FileInfo {
	files := make(map[string]FileInfo)

	filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		// 跳过错误和目录
		if err != nil || info.IsDir() {
			return nil
		}
		if f.Match(info.Name()) {
			files[path] = FileInfo{
				Path:    path,
				ModTime: info.ModTime(),
				Size:    info.Size(),
			}
		}
		return nil
	})

	return files
}

// Changed 返回 current 中新增或修改过的文件，按路径排序
func Changed(last, current map[string]FileInfo) []string {
	var changed []string
	for path, info := range current {
		prev, exists := last[path]
		if !exists || !prev.ModTime.Equal(info.ModTime) || prev.Size != info.Size {
			changed = append(changed, path)
		}
	}
	sort.Strings(changed)
	return changed
}
