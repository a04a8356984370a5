package errors

import (
	"fmt"
	"strings"
)

// ============================================================================
// 诊断标签
// ============================================================================

// Label 代码标签（用于标注诊断位置）
type Label struct {
	Line    int    // 行号（1-based）
	Column  int    // 列号（1-based）
	Length  int    // 标注长度
	Message string // 标签消息
	Primary bool   // 是否为主要标签
}

// ============================================================================
// 编译诊断
// ============================================================================

// CompileError 编译期诊断
type CompileError struct {
	Code      string   // 诊断码 (W0001, E0600)
	Level     Level    // 诊断级别
	Message   string   // 主消息
	File      string   // 文件路径
	Line      int      // 行号
	Column    int      // 列号
	EndColumn int      // 结束列
	Labels    []Label  // 代码标签
	Hints     []string // 修复建议
	Notes     []string // 附加说明
}

// Error 实现 error 接口
func (e *CompileError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
}

// ============================================================================
// 运行时诊断
// ============================================================================

// RuntimeError 运行时诊断（完成语义求值阶段产生）
type RuntimeError struct {
	Code    string // 诊断码 (R0600)
	Message string // 主消息
	File    string // 文件路径
	Line    int    // 行号
	Column  int    // 列号
}

// Error 实现 error 接口
func (e *RuntimeError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
	}
	return e.Message
}

// ============================================================================
// 格式化器
// ============================================================================

// Formatter 诊断格式化器
type Formatter struct {
	Colors     bool // 是否使用颜色
	ShowSource bool // 是否显示源代码
	ShowHints  bool // 是否显示修复建议
	TabWidth   int  // Tab 宽度
}

// NewFormatter 创建默认格式化器
func NewFormatter() *Formatter {
	return &Formatter{
		Colors:     true,
		ShowSource: true,
		ShowHints:  true,
		TabWidth:   4,
	}
}

// FormatCompileError 格式化编译期诊断
func (f *Formatter) FormatCompileError(err *CompileError, sourceLines []string) string {
	var sb strings.Builder

	// 诊断头: warning[W0001]: 'else' after brace-less 'try' is ambiguous
	levelStr := f.colorize(err.Level.String(), f.levelColor(err.Level))
	codeStr := f.colorize(fmt.Sprintf("[%s]", err.Code), f.levelColor(err.Level))
	sb.WriteString(fmt.Sprintf("%s%s: %s\n", levelStr, codeStr, err.Message))

	// 位置: --> file.sola:5:12
	arrow := f.colorize("-->", ColorCyan)
	location := f.colorize(fmt.Sprintf("%s:%d:%d", err.File, err.Line, err.Column), ColorCyan)
	sb.WriteString(fmt.Sprintf(" %s %s\n", arrow, location))

	// 显示源代码
	if f.ShowSource && len(sourceLines) > 0 && err.Line > 0 && err.Line <= len(sourceLines) {
		sb.WriteString(f.formatSourceContext(sourceLines, err))
	}

	// 修复建议
	if f.ShowHints {
		for _, hint := range err.Hints {
			help := f.colorize("help", ColorGreen)
			sb.WriteString(fmt.Sprintf(" %s: %s\n", help, hint))
		}
	}

	// 附加说明
	for _, note := range err.Notes {
		noteStr := f.colorize("note", ColorBlue)
		sb.WriteString(fmt.Sprintf(" %s: %s\n", noteStr, note))
	}

	return sb.String()
}

// formatSourceContext 格式化出错行及标注
func (f *Formatter) formatSourceContext(sourceLines []string, err *CompileError) string {
	var sb strings.Builder

	line := sourceLines[err.Line-1]
	line = strings.ReplaceAll(line, "\t", strings.Repeat(" ", f.TabWidth))

	gutter := fmt.Sprintf("%4d", err.Line)
	sb.WriteString(fmt.Sprintf(" %s | %s\n", f.colorize(gutter, ColorCyan), line))

	// 下划线标注（外部树的位置信息可选，列号缺省时按 1 处理）
	col := err.Column
	if col < 1 {
		col = 1
	}
	width := err.EndColumn - col
	if width < 1 {
		width = 1
	}
	pad := strings.Repeat(" ", col-1)
	marker := f.colorize(strings.Repeat("^", width), f.levelColor(err.Level))
	sb.WriteString(fmt.Sprintf("      | %s%s\n", pad, marker))

	return sb.String()
}

// levelColor 诊断级别对应的颜色
func (f *Formatter) levelColor(level Level) Color {
	switch level {
	case LevelError:
		return ColorBoldRed
	case LevelWarning:
		return ColorBoldYellow
	case LevelNote:
		return ColorBlue
	default:
		return ColorGreen
	}
}

// colorize 给文本着色
func (f *Formatter) colorize(text string, color Color) string {
	if !f.Colors || !colorsEnabled {
		return text
	}
	return ansiCodes[color] + text + ansiCodes[ColorReset]
}
