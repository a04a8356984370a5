// Package errors 提供 try/else 前端的诊断系统
package errors

// ============================================================================
// 诊断级别
// ============================================================================

// Level 诊断级别
type Level int

const (
	LevelError   Level = iota // 错误
	LevelWarning              // 警告
	LevelNote                 // 提示
	LevelHelp                 // 帮助
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelNote:
		return "note"
	case LevelHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ============================================================================
// 编译期诊断码 (E/W 开头)
// ============================================================================

const (
	// W0001-W0099: 绑定警告
	W0001 = "W0001" // else 绑定有歧义 (AmbiguousTryElseBinding)

	// E0600-E0699: try 语句形状错误
	E0600 = "E0600" // try 语句缺少 catch/else/finally 子句
	E0601 = "E0601" // 重复的 catch-all 子句
	E0602 = "E0602" // catch-all 不是最后一个子句
	E0603 = "E0603" // catch-all 之后的 catch 不可达
)

// ============================================================================
// 运行时诊断码 (R 开头)
// ============================================================================

const (
	// R0600-R0699: 完成语义错误
	R0600 = "R0600" // 未处理的异常
	R0601 = "R0601" // goto 目标标签未定义
	R0602 = "R0602" // break/continue 在循环外
)

// codeMessages 诊断码默认消息
var codeMessages = map[string]string{
	W0001: "'else' after brace-less 'try' is ambiguous",
	E0600: "'try' statement has no catch, else or finally clause",
	E0601: "duplicate catch-all clause",
	E0602: "catch-all clause must be the last catch",
	E0603: "catch clause is unreachable after a catch-all",
	R0600: "unhandled exception",
	R0601: "goto target label is not defined",
	R0602: "break or continue outside of a loop",
}

// MessageFor 返回诊断码的默认消息
func MessageFor(code string) string {
	if msg, ok := codeMessages[code]; ok {
		return msg
	}
	return "unknown diagnostic"
}
