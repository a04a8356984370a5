// Package eval 实现语句树的完成语义求值
//
// 求值是严格顺序、单线程、单趟的：前一个块产生 Outcome 之前下一个
// 子句不会开始，没有并行、取消或挂起点。try 语句的求值委托给
// Machine（见 machine.go），树遍历本身只负责把语句映射为 Outcome。
package eval

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/tangzhangming/tryelse/internal/ast"
	"github.com/tangzhangming/tryelse/internal/errors"
	"github.com/tangzhangming/tryelse/internal/token"
)

// Evaluator 语句树求值器
//
// 树在解析/消歧后是只读的，同一棵树可以反复求值（例如在宿主循环里）。
type Evaluator struct {
	hierarchy Hierarchy
	machine   *Machine
	log       *zap.Logger
}

// Option Evaluator 选项
type Option func(*Evaluator)

// WithExceptionHierarchy 设置异常类型层级
func WithExceptionHierarchy(h Hierarchy) Option {
	return func(ev *Evaluator) {
		ev.hierarchy = h
	}
}

// WithLogger 设置 trace 日志
func WithLogger(log *zap.Logger) Option {
	return func(ev *Evaluator) {
		ev.log = log
	}
}

// New 创建求值器
func New(opts ...Option) *Evaluator {
	ev := &Evaluator{
		hierarchy: NewHierarchy(),
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(ev)
	}
	ev.machine = NewMachine(
		WithHierarchy(ev.hierarchy),
		WithMachineLogger(ev.log),
	)
	return ev
}

// Machine 返回底层状态机（供没有语句树、只有闭包的宿主直接使用）
func (ev *Evaluator) Machine() *Machine { return ev.machine }

// Run 执行顶层语句序列并返回对外完成结果
//
// return 和未处理的异常是合法的对外结果，由调用方消费；
// 跑到顶层仍未解析的 goto 和循环外的 break/continue 是错误。
func (ev *Evaluator) Run(stmts []ast.Statement, env *Env) (Outcome, error) {
	out, err := ev.execSeq(stmts, env)
	if err != nil {
		return out, err
	}

	if out.Kind == OutcomeExit {
		switch out.Exit.Kind {
		case ExitGoto:
			return out, &errors.RuntimeError{
				Code:    errors.R0601,
				Message: fmt.Sprintf("%s: %q", errors.MessageFor(errors.R0601), out.Exit.Target),
			}
		case ExitBreak, ExitContinue:
			return out, &errors.RuntimeError{
				Code:    errors.R0602,
				Message: errors.MessageFor(errors.R0602),
			}
		}
	}
	return out, nil
}

// ============================================================================
// 语句执行
// ============================================================================

// ExecStmt 执行单条语句并返回它的完成结果
func (ev *Evaluator) ExecStmt(stmt ast.Statement, env *Env) (Outcome, error) {
	switch s := stmt.(type) {
	case *ast.BlockStmt:
		return ev.execSeq(s.Statements, env)

	case *ast.ExprStmt:
		_, err := ev.evalExpr(s.Expr, env)
		return NormalOutcome(), err

	case *ast.AssignStmt:
		v, err := ev.evalExpr(s.Value, env)
		if err != nil {
			return NormalOutcome(), err
		}
		env.Set(s.Target.Name, v)
		return NormalOutcome(), nil

	case *ast.IfStmt:
		cond, err := ev.evalExpr(s.Condition, env)
		if err != nil {
			return NormalOutcome(), err
		}
		if cond.IsTruthy() {
			return ev.ExecStmt(s.Then, env)
		}
		if s.Else != nil {
			return ev.ExecStmt(s.Else, env)
		}
		return NormalOutcome(), nil

	case *ast.WhileStmt:
		return ev.execLoop(s, "", env)

	case *ast.LabeledStmt:
		if loop, ok := s.Stmt.(*ast.WhileStmt); ok {
			return ev.execLoop(loop, s.Label.Literal, env)
		}
		return ev.ExecStmt(s.Stmt, env)

	case *ast.BreakStmt:
		return BreakOutcome(s.Label), nil

	case *ast.ContinueStmt:
		return ContinueOutcome(s.Label), nil

	case *ast.ReturnStmt:
		if s.Value == nil {
			return ReturnOutcome(NullValue()), nil
		}
		v, err := ev.evalExpr(s.Value, env)
		if err != nil {
			return NormalOutcome(), err
		}
		return ReturnOutcome(v), nil

	case *ast.GotoStmt:
		return GotoOutcome(s.Target), nil

	case *ast.ThrowStmt:
		v, err := ev.evalExpr(s.Exception, env)
		if err != nil {
			return NormalOutcome(), err
		}
		var ex *Exception
		if v.Ex != nil {
			// 复制一份再打抛出位置，变量里存着的异常值不受影响
			cp := *v.Ex
			ex = &cp
		} else {
			// 抛出非异常值时包一层
			ex = &Exception{TypeName: "Exception", Message: v.String()}
		}
		ex.Pos = s.ThrowToken.Pos
		return ThrownOutcome(ex), nil

	case *ast.TryStmt:
		return ev.execTry(s, env)

	default:
		return NormalOutcome(), fmt.Errorf("eval: unsupported statement %T", stmt)
	}
}

// execSeq 执行语句序列
//
// goto 在当前序列内解析：目标标签在本层时直接跳转，否则作为
// 非局部跳转向外传播，由外层序列（或顶层 Run）处理。
func (ev *Evaluator) execSeq(stmts []ast.Statement, env *Env) (Outcome, error) {
	var labels map[string]int
	for i, s := range stmts {
		if l, ok := s.(*ast.LabeledStmt); ok {
			if labels == nil {
				labels = make(map[string]int)
			}
			labels[l.Label.Literal] = i
		}
	}

	i := 0
	for i < len(stmts) {
		out, err := ev.ExecStmt(stmts[i], env)
		if err != nil {
			return out, err
		}
		if out.Kind == OutcomeExit && out.Exit.Kind == ExitGoto {
			if idx, ok := labels[out.Exit.Target]; ok {
				i = idx
				continue
			}
		}
		if !out.IsNormal() {
			return out, nil
		}
		i++
	}
	return NormalOutcome(), nil
}

// execLoop 执行 while 循环，消费无标签或标签匹配的 break/continue
func (ev *Evaluator) execLoop(s *ast.WhileStmt, label string, env *Env) (Outcome, error) {
	for {
		cond, err := ev.evalExpr(s.Condition, env)
		if err != nil {
			return NormalOutcome(), err
		}
		if !cond.IsTruthy() {
			return NormalOutcome(), nil
		}

		out, err := ev.ExecStmt(s.Body, env)
		if err != nil {
			return out, err
		}

		if out.Kind == OutcomeExit {
			switch out.Exit.Kind {
			case ExitBreak:
				if out.Exit.Label == "" || out.Exit.Label == label {
					return NormalOutcome(), nil
				}
			case ExitContinue:
				if out.Exit.Label == "" || out.Exit.Label == label {
					continue
				}
			}
		}
		if !out.IsNormal() {
			return out, nil
		}
	}
}

// execTry 执行 try 语句：把各子句包成闭包后交给状态机
func (ev *Evaluator) execTry(s *ast.TryStmt, env *Env) (Outcome, error) {
	tryFn := func() (Outcome, error) {
		return ev.ExecStmt(s.Try, env)
	}

	catches := make([]CatchHandler, 0, len(s.Catches))
	for _, c := range s.Catches {
		c := c
		handler := CatchHandler{
			Body: func(ex *Exception) (Outcome, error) {
				catchEnv := env
				if c.Variable != nil {
					// catch 参数绑定在子环境中，不泄漏到外层
					catchEnv = NewChildEnv(env)
					catchEnv.Define(c.Variable.Name, ExceptionValue(ex))
				}
				return ev.ExecStmt(c.Body, catchEnv)
			},
		}
		if c.Type != nil {
			handler.Type = c.Type.Name
		}
		catches = append(catches, handler)
	}

	var elseFn, finallyFn BlockFn
	if s.Else != nil {
		elseFn = func() (Outcome, error) {
			return ev.ExecStmt(s.Else.Body, env)
		}
	}
	if s.Finally != nil {
		finallyFn = func() (Outcome, error) {
			return ev.ExecStmt(s.Finally.Body, env)
		}
	}

	return ev.machine.Protect(tryFn, catches, elseFn, finallyFn)
}

// ============================================================================
// 表达式求值
// ============================================================================

// evalExpr 求值表达式
func (ev *Evaluator) evalExpr(expr ast.Expression, env *Env) (Value, error) {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		return IntValue(e.Value), nil

	case *ast.StringLiteral:
		return StringValue(e.Value), nil

	case *ast.BoolLiteral:
		return BoolValue(e.Value), nil

	case *ast.NullLiteral:
		return NullValue(), nil

	case *ast.Variable:
		v, _ := env.Get(e.Name)
		return v, nil

	case *ast.BinaryExpr:
		return ev.evalBinary(e, env)

	case *ast.NewExpr:
		ex := &Exception{TypeName: e.Type.Name, Pos: e.NewToken.Pos}
		if e.Message != nil {
			msg, err := ev.evalExpr(e.Message, env)
			if err != nil {
				return NullValue(), err
			}
			ex.Message = msg.Str
		}
		return ExceptionValue(ex), nil

	default:
		return NullValue(), fmt.Errorf("eval: unsupported expression %T", expr)
	}
}

// evalBinary 求值比较表达式
func (ev *Evaluator) evalBinary(e *ast.BinaryExpr, env *Env) (Value, error) {
	left, err := ev.evalExpr(e.Left, env)
	if err != nil {
		return NullValue(), err
	}
	right, err := ev.evalExpr(e.Right, env)
	if err != nil {
		return NullValue(), err
	}

	switch e.Operator.Type {
	case token.EQ:
		return BoolValue(left.Equals(right)), nil
	case token.NE:
		return BoolValue(!left.Equals(right)), nil
	}

	// 大小比较仅对整数有定义
	if left.Kind != ValueInt || right.Kind != ValueInt {
		return BoolValue(false), nil
	}
	switch e.Operator.Type {
	case token.LT:
		return BoolValue(left.Int < right.Int), nil
	case token.LE:
		return BoolValue(left.Int <= right.Int), nil
	case token.GT:
		return BoolValue(left.Int > right.Int), nil
	case token.GE:
		return BoolValue(left.Int >= right.Int), nil
	}
	return BoolValue(false), nil
}
