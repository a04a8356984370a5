package treejson

import (
	"github.com/segmentio/encoding/json"

	"github.com/tangzhangming/tryelse/internal/eval"
)

// ============================================================================
// 完成结果 JSON 输出
// ============================================================================

// jsonOutcome 完成结果的 JSON 形式
type jsonOutcome struct {
	Kind      string `json:"kind"`
	Exception string `json:"exception,omitempty"` // thrown 时的异常类型
	Message   string `json:"message,omitempty"`
	Exit      string `json:"exit,omitempty"` // exit 时的跳转种类
	Label     string `json:"label,omitempty"`
	Value     string `json:"value,omitempty"` // return 值的字符串形式
}

// EncodeOutcome 将完成结果编码为 JSON
func EncodeOutcome(out eval.Outcome) ([]byte, error) {
	jo := jsonOutcome{Kind: out.Kind.String()}
	switch out.Kind {
	case eval.OutcomeThrown:
		jo.Exception = out.Ex.TypeName
		jo.Message = out.Ex.Message
	case eval.OutcomeExit:
		jo.Exit = out.Exit.Kind.String()
		switch out.Exit.Kind {
		case eval.ExitReturn:
			jo.Value = out.Exit.Value.String()
		case eval.ExitGoto:
			jo.Label = out.Exit.Target
		default:
			jo.Label = out.Exit.Label
		}
	}
	return json.MarshalIndent(jo, "", "  ")
}
