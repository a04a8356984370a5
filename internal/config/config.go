// Package config 实现 tryelse 工具配置
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 常量定义
const (
	ConfigFileName = "tryelse.toml" // 配置文件名
)

// Config 工具配置
type Config struct {
	Diagnostics DiagnosticsConfig `toml:"diagnostics"`
	Log         LogConfig         `toml:"log"`
	Eval        EvalConfig        `toml:"eval"`
}

// DiagnosticsConfig 诊断输出配置
type DiagnosticsConfig struct {
	// Color 是否使用 ANSI 颜色
	Color bool `toml:"color"`

	// Hints 是否输出修复建议
	Hints bool `toml:"hints"`

	// WarningsAsErrors 警告按错误处理（W0001 也会使 check 失败）
	WarningsAsErrors bool `toml:"warnings_as_errors"`

	// JSON 以 JSON 格式输出诊断（供编辑器等工具消费）
	JSON bool `toml:"json"`
}

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别: debug / info / warn / error
	Level string `toml:"level"`
}

// EvalConfig 求值配置
type EvalConfig struct {
	// Trace 是否输出状态机转移 trace
	Trace bool `toml:"trace"`

	// Hierarchy 异常类型层级，"Child < Parent" 形式
	Hierarchy []string `toml:"hierarchy"`
}

// Default 默认配置
func Default() *Config {
	return &Config{
		Diagnostics: DiagnosticsConfig{
			Color: true,
			Hints: true,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Load 从文件加载配置
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// LoadOrDefault 加载配置，文件不存在时返回默认配置
func LoadOrDefault(path string) *Config {
	config, err := Load(path)
	if err != nil {
		return Default()
	}
	return config
}

// Save 保存配置到文件
func (c *Config) Save(path string) error {
	// 生成带注释的配置文件内容
	content := generateConfigWithComments(c)

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// generateConfigWithComments 生成带注释的配置文件内容
func generateConfigWithComments(c *Config) string {
	var sb strings.Builder

	sb.WriteString("[diagnostics]\n")
	sb.WriteString("# 是否使用 ANSI 颜色\n")
	sb.WriteString(fmt.Sprintf("color = %t\n\n", c.Diagnostics.Color))
	sb.WriteString("# 是否输出修复建议\n")
	sb.WriteString(fmt.Sprintf("hints = %t\n\n", c.Diagnostics.Hints))
	sb.WriteString("# 警告按错误处理\n")
	sb.WriteString(fmt.Sprintf("warnings_as_errors = %t\n\n", c.Diagnostics.WarningsAsErrors))
	sb.WriteString("# 以 JSON 格式输出诊断\n")
	sb.WriteString(fmt.Sprintf("json = %t\n\n", c.Diagnostics.JSON))

	sb.WriteString("[log]\n")
	sb.WriteString("# 日志级别: debug / info / warn / error\n")
	sb.WriteString(fmt.Sprintf("level = %q\n\n", c.Log.Level))

	sb.WriteString("[eval]\n")
	sb.WriteString("# 是否输出状态机转移 trace\n")
	sb.WriteString(fmt.Sprintf("trace = %t\n\n", c.Eval.Trace))
	sb.WriteString("# 异常类型层级，\"Child < Parent\" 形式\n")
	sb.WriteString("hierarchy = [\n")
	for _, h := range c.Eval.Hierarchy {
		sb.WriteString(fmt.Sprintf("    %q,\n", h))
	}
	sb.WriteString("]\n")

	return sb.String()
}

// ParseHierarchy 解析 "Child < Parent" 形式的层级条目
//
// 返回 (child, parent, ok)。
func ParseHierarchy(entry string) (string, string, bool) {
	parts := strings.SplitN(entry, "<", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	child := strings.TrimSpace(parts[0])
	parent := strings.TrimSpace(parts[1])
	if child == "" || parent == "" {
		return "", "", false
	}
	return child, parent, true
}

// BuildLogger 按配置构建 zap 日志器
func (c *Config) BuildLogger() (*zap.Logger, error) {
	level := zapcore.WarnLevel
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn", "":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("unknown log level %q", c.Log.Level)
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	if c.Eval.Trace {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}
