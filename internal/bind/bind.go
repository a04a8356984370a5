// Package bind 实现 try/else 的解析期绑定消歧
//
// 当无大括号的 try 作为 if 分支出现、其后紧跟 else 时，该 else 既可能
// 属于 if 也可能属于 try（TryElseStatement）。本包固定采用
// nearest-enclosing 规则：else 永远绑定到最近的 if，从不绑定到 try，
// 以保持扩展前既有代码的行为，同时必须对每处冲突发出 W0001 警告。
package bind

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/tangzhangming/tryelse/internal/ast"
	"github.com/tangzhangming/tryelse/internal/errors"
	"github.com/tangzhangming/tryelse/internal/token"
)

// Resolver 绑定消歧器
//
// 对已解析的语句树做一次只读遍历：报告 else 绑定冲突，并检查 try
// 语句的子句形状。树本身不会被修改，外部解析器已经按 nearest-enclosing
// 规则完成了挂接。
type Resolver struct {
	rep *errors.Reporter
	log *zap.Logger
}

// Option Resolver 选项
type Option func(*Resolver)

// WithLogger 设置调试日志
func WithLogger(log *zap.Logger) Option {
	return func(r *Resolver) {
		r.log = log
	}
}

// New 创建绑定消歧器
func New(rep *errors.Reporter, opts ...Option) *Resolver {
	r := &Resolver{
		rep: rep,
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve 遍历语句树，报告绑定冲突和 try 形状错误
//
// 遍历是后序的：嵌套的 if/try 对从最内层向外逐个判定，
// 每处冲突单独产生一条 W0001，不做聚合。
func (r *Resolver) Resolve(stmts []ast.Statement) {
	for _, stmt := range stmts {
		r.resolveStmt(stmt)
	}
}

func (r *Resolver) resolveStmt(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.BlockStmt:
		r.Resolve(s.Statements)

	case *ast.IfStmt:
		r.resolveStmt(s.Then)
		if s.Else != nil {
			r.resolveStmt(s.Else)
		}
		r.checkDanglingElse(s)

	case *ast.WhileStmt:
		r.resolveStmt(s.Body)

	case *ast.LabeledStmt:
		r.resolveStmt(s.Stmt)

	case *ast.TryStmt:
		r.resolveStmt(s.Try)
		for _, catch := range s.Catches {
			r.resolveStmt(catch.Body)
		}
		if s.Else != nil {
			r.resolveStmt(s.Else.Body)
		}
		if s.Finally != nil {
			r.resolveStmt(s.Finally.Body)
		}
		r.checkTryShape(s)
	}
}

// ============================================================================
// else 绑定冲突
// ============================================================================

// checkDanglingElse 检查 if 的 else 是否与无大括号 try 产生绑定冲突
func (r *Resolver) checkDanglingElse(s *ast.IfStmt) {
	if s.Else == nil {
		return
	}

	// 显式 { } 分支没有歧义
	if _, braced := s.Then.(*ast.BlockStmt); braced {
		return
	}

	try := trailingTry(s.Then)
	if try == nil || !elseEligible(try) {
		return
	}

	pos := s.ElseToken.Pos
	diag := &errors.CompileError{
		Code:      errors.W0001,
		Level:     errors.LevelWarning,
		Message:   errors.MessageFor(errors.W0001),
		File:      pos.Filename,
		Line:      pos.Line,
		Column:    pos.Column,
		EndColumn: pos.Column + len("else"),
		Notes: []string{
			fmt.Sprintf("'else' binds to the 'if' at %s, not the 'try' at %s",
				s.IfToken.Pos, try.TryToken.Pos),
		},
		Hints: []string{
			"wrap the 'try' statement in '{ }' to make the binding explicit",
		},
	}
	r.rep.Report(diag)

	r.log.Debug("resolved dangling else",
		zap.String("if", s.IfToken.Pos.String()),
		zap.String("try", try.TryToken.Pos.String()),
		zap.String("else", pos.String()),
		zap.String("binding", "if"))
}

// trailingTry 返回语句文本末尾处的 try 语句，没有则返回 nil
//
// 一条无大括号语句链的末尾 token 序列决定了后续 else 能否被 try 吸收：
// 途经的 labeled 语句和 if/else 分支都要穿透，catch/else 体本身又可能
// 以另一个 try 结束。
func trailingTry(stmt ast.Statement) *ast.TryStmt {
	switch s := stmt.(type) {
	case *ast.TryStmt:
		// finally 在语法上位于 TryElseStatement 之后，
		// 其后的 else 不可能再属于这个 try
		if s.Finally != nil {
			return trailingTry(s.Finally.Body)
		}
		// 已有 else 的 try 不能再吸收第二个 else
		if s.Else != nil {
			return trailingTry(s.Else.Body)
		}
		if len(s.Catches) > 0 {
			last := s.Catches[len(s.Catches)-1]
			if inner := trailingTry(last.Body); inner != nil && elseEligible(inner) {
				return inner
			}
		}
		return s

	case *ast.LabeledStmt:
		return trailingTry(s.Stmt)

	case *ast.IfStmt:
		if s.Else != nil {
			return trailingTry(s.Else)
		}
		return trailingTry(s.Then)
	}

	// 其余语句（block、while、简单语句）以 } 或 ; 结束，挡住绑定
	return nil
}

// elseEligible try 是否可能吸收后续的 else token
//
// 冲突只在 try 带 catch、且自身还没有 else/finally 时出现：
// 裸 try 块若把 else 让给 if，自己会变成非法形状，贪心解析器
// 必然已把 else 给了 try，不构成冲突。
func elseEligible(try *ast.TryStmt) bool {
	return len(try.Catches) > 0 && try.Else == nil && try.Finally == nil
}

// ============================================================================
// try 形状检查
// ============================================================================

// checkTryShape 检查 try 语句的子句形状
func (r *Resolver) checkTryShape(s *ast.TryStmt) {
	if !s.HasClauses() {
		r.report(errors.E0600, s.TryToken.Pos, len("try"), nil)
		return
	}

	seenCatchAll := -1
	for i, catch := range s.Catches {
		if seenCatchAll < 0 {
			if catch.IsCatchAll() && i != len(s.Catches)-1 {
				r.report(errors.E0602, catch.CatchToken.Pos, len("catch"), []string{
					"move the catch-all clause after all typed catch clauses",
				})
				seenCatchAll = i
			}
			continue
		}
		if catch.IsCatchAll() {
			r.report(errors.E0601, catch.CatchToken.Pos, len("catch"), nil)
		} else {
			r.report(errors.E0603, catch.CatchToken.Pos, len("catch"), []string{
				fmt.Sprintf("the catch-all at %s already matches every exception",
					s.Catches[seenCatchAll].CatchToken.Pos),
			})
		}
	}
}

// report 报告一条错误级诊断
func (r *Resolver) report(code string, pos token.Position, length int, hints []string) {
	r.rep.Report(&errors.CompileError{
		Code:      code,
		Level:     errors.LevelError,
		Message:   errors.MessageFor(code),
		File:      pos.Filename,
		Line:      pos.Line,
		Column:    pos.Column,
		EndColumn: pos.Column + length,
		Hints:     hints,
	})
}
