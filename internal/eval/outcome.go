package eval

import (
	"fmt"

	"github.com/tangzhangming/tryelse/internal/token"
)

// ============================================================================
// 完成结果 (CompletionOutcome)
// ============================================================================
//
// Outcome 描述一个代码块如何结束：正常、抛出异常、或非局部跳转
// (return/break/continue/goto)。它是块与求值器之间交换的瞬时值，
// 每次执行新建一个，被求值器消费后即丢弃，没有身份和生命周期。
//
// ============================================================================

// OutcomeKind 完成结果种类
type OutcomeKind int

const (
	OutcomeNormal OutcomeKind = iota // 正常完成
	OutcomeThrown                    // 抛出异常
	OutcomeExit                      // 非局部跳转
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeNormal:
		return "normal"
	case OutcomeThrown:
		return "thrown"
	case OutcomeExit:
		return "exit"
	default:
		return "unknown"
	}
}

// ExitKind 非局部跳转种类
type ExitKind int

const (
	ExitReturn   ExitKind = iota // return
	ExitBreak                    // break (可带标签)
	ExitContinue                 // continue (可带标签)
	ExitGoto                     // goto
)

func (k ExitKind) String() string {
	switch k {
	case ExitReturn:
		return "return"
	case ExitBreak:
		return "break"
	case ExitContinue:
		return "continue"
	case ExitGoto:
		return "goto"
	default:
		return "unknown"
	}
}

// ExitInfo 非局部跳转的细节
type ExitInfo struct {
	Kind   ExitKind
	Label  string // break/continue 的标签，可为空
	Target string // goto 的目标标签
	Value  Value  // return 的返回值
}

// Outcome 完成结果
type Outcome struct {
	Kind OutcomeKind
	Ex   *Exception // Kind == OutcomeThrown 时有效
	Exit ExitInfo   // Kind == OutcomeExit 时有效
}

// NormalOutcome 正常完成
func NormalOutcome() Outcome {
	return Outcome{Kind: OutcomeNormal}
}

// ThrownOutcome 抛出异常
func ThrownOutcome(ex *Exception) Outcome {
	return Outcome{Kind: OutcomeThrown, Ex: ex}
}

// ReturnOutcome return 跳转
func ReturnOutcome(v Value) Outcome {
	return Outcome{Kind: OutcomeExit, Exit: ExitInfo{Kind: ExitReturn, Value: v}}
}

// BreakOutcome break 跳转
func BreakOutcome(label string) Outcome {
	return Outcome{Kind: OutcomeExit, Exit: ExitInfo{Kind: ExitBreak, Label: label}}
}

// ContinueOutcome continue 跳转
func ContinueOutcome(label string) Outcome {
	return Outcome{Kind: OutcomeExit, Exit: ExitInfo{Kind: ExitContinue, Label: label}}
}

// GotoOutcome goto 跳转
func GotoOutcome(target string) Outcome {
	return Outcome{Kind: OutcomeExit, Exit: ExitInfo{Kind: ExitGoto, Target: target}}
}

// IsNormal 是否正常完成
func (o Outcome) IsNormal() bool { return o.Kind == OutcomeNormal }

// String 返回完成结果的字符串表示（用于调试和 trace 日志）
func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeNormal:
		return "normal"
	case OutcomeThrown:
		return fmt.Sprintf("thrown(%s)", o.Ex.TypeName)
	case OutcomeExit:
		switch o.Exit.Kind {
		case ExitReturn:
			return fmt.Sprintf("exit(return %s)", o.Exit.Value)
		case ExitGoto:
			return fmt.Sprintf("exit(goto %s)", o.Exit.Target)
		default:
			if o.Exit.Label != "" {
				return fmt.Sprintf("exit(%s %s)", o.Exit.Kind, o.Exit.Label)
			}
			return fmt.Sprintf("exit(%s)", o.Exit.Kind)
		}
	default:
		return "unknown"
	}
}

// ============================================================================
// 异常值与类型层级
// ============================================================================

// Exception 运行期异常值
type Exception struct {
	TypeName string         // 异常类型名
	Message  string         // 异常消息
	Pos      token.Position // 抛出位置
}

func (e *Exception) String() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.TypeName, e.Message)
	}
	return e.TypeName
}

// Hierarchy 异常类型层级：子类型名 -> 父类型名
//
// catch 匹配使用 supertype-or-equal 规则：声明类型等于抛出类型，
// 或沿层级上溯可达声明类型。宿主按需注册链条，未注册的类型只做
// 精确匹配。
type Hierarchy map[string]string

// NewHierarchy 创建空层级
func NewHierarchy() Hierarchy {
	return make(Hierarchy)
}

// Register 注册一条子类型关系
func (h Hierarchy) Register(child, parent string) {
	h[child] = parent
}

// Matches 声明类型是否为抛出类型的 supertype-or-equal
func (h Hierarchy) Matches(declared, thrown string) bool {
	for t := thrown; t != ""; {
		if t == declared {
			return true
		}
		next := h[t]
		if next == t {
			break // 自环保护
		}
		t = next
	}
	return false
}
