package errors

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"go.uber.org/multierr"
)

// ============================================================================
// 诊断报告器
// ============================================================================

// Reporter 诊断报告器
type Reporter struct {
	formatter        *Formatter
	sourceCache      map[string][]string // 源代码缓存
	errors           []*CompileError
	warnings         []*CompileError
	WarningsAsErrors bool // 警告按错误处理
}

// NewReporter 创建诊断报告器
func NewReporter() *Reporter {
	return &Reporter{
		formatter:   NewFormatter(),
		sourceCache: make(map[string][]string),
		errors:      nil,
		warnings:    nil,
	}
}

// SetFormatter 设置格式化器
func (r *Reporter) SetFormatter(f *Formatter) {
	r.formatter = f
}

// LoadSource 加载源文件
func (r *Reporter) LoadSource(filename string) error {
	if _, ok := r.sourceCache[filename]; ok {
		return nil // 已加载
	}

	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return err
	}

	r.sourceCache[filename] = lines
	return nil
}

// SetSource 设置源代码（用于测试或内存中的源代码）
func (r *Reporter) SetSource(filename string, content string) {
	lines := strings.Split(content, "\n")
	r.sourceCache[filename] = lines
}

// GetSourceLines 获取源代码行数组
func (r *Reporter) GetSourceLines(filename string) []string {
	return r.sourceCache[filename]
}

// ============================================================================
// 报告诊断
// ============================================================================

// Report 按级别报告诊断
func (r *Reporter) Report(err *CompileError) {
	if err.Level == LevelWarning && r.WarningsAsErrors {
		err.Level = LevelError
	}
	if err.Level == LevelError {
		r.errors = append(r.errors, err)
	} else {
		r.warnings = append(r.warnings, err)
	}
}

// HasErrors 是否存在错误级诊断
func (r *Reporter) HasErrors() bool { return len(r.errors) > 0 }

// Errors 错误列表
func (r *Reporter) Errors() []*CompileError { return r.errors }

// Warnings 警告列表
func (r *Reporter) Warnings() []*CompileError { return r.warnings }

// All 全部诊断，按文件、行、列排序
func (r *Reporter) All() []*CompileError {
	all := make([]*CompileError, 0, len(r.errors)+len(r.warnings))
	all = append(all, r.errors...)
	all = append(all, r.warnings...)
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].File != all[j].File {
			return all[i].File < all[j].File
		}
		if all[i].Line != all[j].Line {
			return all[i].Line < all[j].Line
		}
		return all[i].Column < all[j].Column
	})
	return all
}

// Reset 清空已收集的诊断
func (r *Reporter) Reset() {
	r.errors = nil
	r.warnings = nil
}

// PrintAll 输出全部诊断
func (r *Reporter) PrintAll(w io.Writer) {
	for _, err := range r.All() {
		r.LoadSource(err.File)
		fmt.Fprint(w, r.formatter.FormatCompileError(err, r.sourceCache[err.File]))
	}

	if len(r.errors) > 0 {
		fmt.Fprintf(w, "%d error(s), %d warning(s)\n", len(r.errors), len(r.warnings))
	} else if len(r.warnings) > 0 {
		fmt.Fprintf(w, "%d warning(s)\n", len(r.warnings))
	}
}

// Err 将收集到的错误聚合为单个 error，没有错误时返回 nil
func (r *Reporter) Err() error {
	var combined error
	for _, e := range r.errors {
		combined = multierr.Append(combined, e)
	}
	return combined
}
