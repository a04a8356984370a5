package errors

import (
	"github.com/segmentio/encoding/json"
)

// ============================================================================
// 诊断 JSON 输出（供外部工具消费）
// ============================================================================

// jsonDiagnostic 诊断的 JSON 形式
type jsonDiagnostic struct {
	Code    string   `json:"code"`
	Level   string   `json:"level"`
	Message string   `json:"message"`
	File    string   `json:"file"`
	Line    int      `json:"line"`
	Column  int      `json:"column"`
	Hints   []string `json:"hints,omitempty"`
	Notes   []string `json:"notes,omitempty"`
}

// MarshalDiagnostics 将诊断列表编码为 JSON
func MarshalDiagnostics(diags []*CompileError) ([]byte, error) {
	out := make([]jsonDiagnostic, 0, len(diags))
	for _, d := range diags {
		out = append(out, jsonDiagnostic{
			Code:    d.Code,
			Level:   d.Level.String(),
			Message: d.Message,
			File:    d.File,
			Line:    d.Line,
			Column:  d.Column,
			Hints:   d.Hints,
			Notes:   d.Notes,
		})
	}
	return json.MarshalIndent(out, "", "  ")
}
