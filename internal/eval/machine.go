package eval

import (
	"go.uber.org/zap"
)

// ============================================================================
// try 语句的完成状态机
// ============================================================================
//
// 状态流转: RunTry → {RunCatch | RunElse | RunFinally} → RunFinally → Done
//
// 所有转移都是当前块产生的 Outcome 的确定性函数。RunFinally（如存在）
// 无条件是 Done 之前的最后一步。状态机以 Protect 组合子的形式暴露，
// 没有原生 try/else 语法的宿主也能用显式的 Outcome 值穿过
// try/catch/finally 组合子获得相同的保证。
//
// ============================================================================

// State 状态机状态
type State int

const (
	StateRunTry     State = iota // 执行 try 块
	StateRunCatch                // 执行匹配到的 catch 子句
	StateRunElse                 // 执行 else 子句
	StateRunFinally              // 执行 finally 子句
	StateDone                    // 完成
)

func (s State) String() string {
	switch s {
	case StateRunTry:
		return "RunTry"
	case StateRunCatch:
		return "RunCatch"
	case StateRunElse:
		return "RunElse"
	case StateRunFinally:
		return "RunFinally"
	case StateDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// BlockFn 执行一个块并产生它的完成结果
//
// error 表示宿主求值故障（不是被求值语言的异常），会中止整个语句。
type BlockFn func() (Outcome, error)

// CatchFn 执行 catch 体，ex 为匹配到的异常
type CatchFn func(ex *Exception) (Outcome, error)

// CatchHandler 一个 catch 子句：声明类型加处理体
type CatchHandler struct {
	Type string // 声明的异常类型，空串表示 catch-all
	Body CatchFn
}

// IsCatchAll 是否为 catch-all
func (h CatchHandler) IsCatchAll() bool { return h.Type == "" }

// Machine try 完成状态机
type Machine struct {
	hierarchy Hierarchy
	log       *zap.Logger
}

// MachineOption Machine 选项
type MachineOption func(*Machine)

// WithHierarchy 设置异常类型层级
func WithHierarchy(h Hierarchy) MachineOption {
	return func(m *Machine) {
		m.hierarchy = h
	}
}

// WithMachineLogger 设置状态转移 trace 日志
func WithMachineLogger(log *zap.Logger) MachineOption {
	return func(m *Machine) {
		m.log = log
	}
}

// NewMachine 创建状态机
func NewMachine(opts ...MachineOption) *Machine {
	m := &Machine{
		hierarchy: NewHierarchy(),
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Protect 执行一条完整的 try/catch/else/finally 语句
//
// 语义（每条路径恰好产生一个最终 Outcome，绝不静默丢弃）：
//
//  1. 执行 try 块。抛出时按源码顺序找第一个 supertype-or-equal 的
//     catch；没有匹配则异常作为待定结果外传。正常完成时进入 else
//     （如存在）。非局部跳转不询问 catch 和 else。
//  2. catch 体的结果（无论是什么）成为待定结果；else 即使存在也
//     永远不在 catch 之后执行。
//  3. else 体只在 try 块正常完成时执行；其中抛出的异常不会与本语句
//     自己的 catch 匹配，越过本语句向外传播。
//  4. finally（如存在）恰好执行一次。finally 正常完成则保留待定
//     结果；finally 自己抛出或非局部跳转则替换待定结果（屏蔽规则）。
//
// finally 通过 defer 执行：即使某个块的宿主求值出错，finally 也不会
// 被跳过。
func (m *Machine) Protect(tryFn BlockFn, catches []CatchHandler, elseFn, finallyFn BlockFn) (out Outcome, err error) {
	if finallyFn != nil {
		defer func() {
			m.trace(StateRunFinally, out)
			fo, ferr := finallyFn()
			if ferr != nil {
				if err == nil {
					err = ferr
				}
				return
			}
			if err == nil && !fo.IsNormal() {
				// 屏蔽规则：finally 的非正常结果替换待定结果
				m.log.Debug("finally masked pending outcome",
					zap.Stringer("pending", out),
					zap.Stringer("final", fo))
				out = fo
			}
			m.trace(StateDone, out)
		}()
	}

	out, err = tryFn()
	if err != nil {
		return out, err
	}
	m.trace(StateRunTry, out)

	switch out.Kind {
	case OutcomeThrown:
		if handler, ok := m.match(catches, out.Ex); ok {
			out, err = handler.Body(out.Ex)
			if err != nil {
				return out, err
			}
			m.trace(StateRunCatch, out)
		}
		// 无匹配: 异常作为待定结果外传，等待 finally

	case OutcomeNormal:
		if elseFn != nil {
			out, err = elseFn()
			if err != nil {
				return out, err
			}
			m.trace(StateRunElse, out)
		}

	case OutcomeExit:
		// 非局部跳转: 不进 catch、不进 else，直接等待 finally
	}

	if finallyFn == nil {
		m.trace(StateDone, out)
	}
	return out, err
}

// match 按源码顺序找第一个匹配的 catch 子句
func (m *Machine) match(catches []CatchHandler, ex *Exception) (CatchHandler, bool) {
	for _, h := range catches {
		if h.IsCatchAll() || m.hierarchy.Matches(h.Type, ex.TypeName) {
			return h, true
		}
	}
	return CatchHandler{}, false
}

// trace 记录一次状态转移
func (m *Machine) trace(state State, out Outcome) {
	m.log.Debug("try state",
		zap.Stringer("state", state),
		zap.Stringer("outcome", out))
}
