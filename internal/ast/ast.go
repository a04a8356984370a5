package ast

import (
	"strings"

	"github.com/tangzhangming/tryelse/internal/token"
)

// Node 是所有 AST 节点的基接口
type Node interface {
	Pos() token.Position // 返回节点在源代码中的位置
	End() token.Position // 返回节点结束位置
	String() string      // 返回节点的字符串表示（用于调试）
}

// Expression 表示一个表达式节点
type Expression interface {
	Node
	exprNode()
}

// Statement 表示一个语句节点
type Statement interface {
	Node
	stmtNode()
}

// TypeNode 表示类型节点
type TypeNode interface {
	Node
	typeNode()
}

// ============================================================================
// 类型节点
// ============================================================================

// SimpleType 简单类型 (异常类型名，如 Exception、IOError)
type SimpleType struct {
	Token token.Token // 类型 token
	Name  string      // 类型名称
}

func (t *SimpleType) Pos() token.Position { return t.Token.Pos }
func (t *SimpleType) End() token.Position { return t.Token.Pos }
func (t *SimpleType) String() string      { return t.Name }
func (t *SimpleType) typeNode()           {}

// ============================================================================
// 表达式节点
// ============================================================================

// IntegerLiteral 整数字面量
type IntegerLiteral struct {
	Token token.Token
	Value int64
}

func (e *IntegerLiteral) Pos() token.Position { return e.Token.Pos }
func (e *IntegerLiteral) End() token.Position { return e.Token.Pos }
func (e *IntegerLiteral) String() string      { return e.Token.Literal }
func (e *IntegerLiteral) exprNode()           {}

// StringLiteral 字符串字面量
type StringLiteral struct {
	Token token.Token
	Value string
}

func (e *StringLiteral) Pos() token.Position { return e.Token.Pos }
func (e *StringLiteral) End() token.Position { return e.Token.Pos }
func (e *StringLiteral) String() string      { return "\"" + e.Value + "\"" }
func (e *StringLiteral) exprNode()           {}

// BoolLiteral 布尔字面量
type BoolLiteral struct {
	Token token.Token
	Value bool
}

func (e *BoolLiteral) Pos() token.Position { return e.Token.Pos }
func (e *BoolLiteral) End() token.Position { return e.Token.Pos }
func (e *BoolLiteral) String() string {
	if e.Value {
		return "true"
	}
	return "false"
}
func (e *BoolLiteral) exprNode() {}

// NullLiteral null 字面量
type NullLiteral struct {
	Token token.Token
}

func (e *NullLiteral) Pos() token.Position { return e.Token.Pos }
func (e *NullLiteral) End() token.Position { return e.Token.Pos }
func (e *NullLiteral) String() string      { return "null" }
func (e *NullLiteral) exprNode()           {}

// Variable 变量引用 ($name)
type Variable struct {
	Token token.Token // VARIABLE token
	Name  string      // 变量名 (不含 $ 前缀)
}

func (e *Variable) Pos() token.Position { return e.Token.Pos }
func (e *Variable) End() token.Position { return e.Token.Pos }
func (e *Variable) String() string      { return "$" + e.Name }
func (e *Variable) exprNode()           {}

// BinaryExpr 二元表达式 (仅比较运算，用于条件)
type BinaryExpr struct {
	Left     Expression
	Operator token.Token // ==, !=, <, <=, >, >=
	Right    Expression
}

func (e *BinaryExpr) Pos() token.Position { return e.Left.Pos() }
func (e *BinaryExpr) End() token.Position { return e.Right.End() }
func (e *BinaryExpr) String() string {
	return e.Left.String() + " " + e.Operator.Literal + " " + e.Right.String()
}
func (e *BinaryExpr) exprNode() {}

// NewExpr 异常构造表达式 (new TypeName(message))
type NewExpr struct {
	NewToken token.Token
	Type     *SimpleType
	Message  Expression // 可为 nil
	RParen   token.Token
}

func (e *NewExpr) Pos() token.Position { return e.NewToken.Pos }
func (e *NewExpr) End() token.Position { return e.RParen.Pos }
func (e *NewExpr) String() string {
	if e.Message != nil {
		return "new " + e.Type.Name + "(" + e.Message.String() + ")"
	}
	return "new " + e.Type.Name + "()"
}
func (e *NewExpr) exprNode() {}

// ============================================================================
// 语句节点
// ============================================================================

// BlockStmt 代码块（显式 { } 界定）
type BlockStmt struct {
	LBrace     token.Token
	Statements []Statement
	RBrace     token.Token
}

func (s *BlockStmt) Pos() token.Position { return s.LBrace.Pos }
func (s *BlockStmt) End() token.Position { return s.RBrace.Pos }
func (s *BlockStmt) String() string {
	var stmts []string
	for _, stmt := range s.Statements {
		stmts = append(stmts, stmt.String())
	}
	return "{ " + strings.Join(stmts, " ") + " }"
}
func (s *BlockStmt) stmtNode() {}

// ExprStmt 表达式语句
type ExprStmt struct {
	Expr      Expression
	Semicolon token.Token
}

func (s *ExprStmt) Pos() token.Position { return s.Expr.Pos() }
func (s *ExprStmt) End() token.Position { return s.Semicolon.Pos }
func (s *ExprStmt) String() string      { return s.Expr.String() + ";" }
func (s *ExprStmt) stmtNode()           {}

// AssignStmt 赋值语句 ($x = expr)
type AssignStmt struct {
	Target    *Variable
	Operator  token.Token // = token
	Value     Expression
	Semicolon token.Token
}

func (s *AssignStmt) Pos() token.Position { return s.Target.Pos() }
func (s *AssignStmt) End() token.Position { return s.Semicolon.Pos }
func (s *AssignStmt) String() string {
	return s.Target.String() + " = " + s.Value.String() + ";"
}
func (s *AssignStmt) stmtNode() {}

// IfStmt if 语句
//
// Then 和 Else 是任意语句：*BlockStmt 表示源码带显式 { }，
// 其他节点表示无大括号的单语句分支。消歧器依赖这个区别。
type IfStmt struct {
	IfToken   token.Token
	Condition Expression
	Then      Statement
	ElseToken token.Token // else token（Else 为 nil 时无意义）
	Else      Statement   // 可为 nil
}

func (s *IfStmt) Pos() token.Position { return s.IfToken.Pos }
func (s *IfStmt) End() token.Position {
	if s.Else != nil {
		return s.Else.End()
	}
	return s.Then.End()
}
func (s *IfStmt) String() string { return "if (...) ..." }
func (s *IfStmt) stmtNode()      {}

// WhileStmt while 语句
type WhileStmt struct {
	WhileToken token.Token
	Condition  Expression
	Body       *BlockStmt
}

func (s *WhileStmt) Pos() token.Position { return s.WhileToken.Pos }
func (s *WhileStmt) End() token.Position { return s.Body.End() }
func (s *WhileStmt) String() string      { return "while (...) {...}" }
func (s *WhileStmt) stmtNode()           {}

// LabeledStmt 带标签的语句 (label: stmt)
type LabeledStmt struct {
	Label token.Token // IDENT token
	Colon token.Token
	Stmt  Statement
}

func (s *LabeledStmt) Pos() token.Position { return s.Label.Pos }
func (s *LabeledStmt) End() token.Position { return s.Stmt.End() }
func (s *LabeledStmt) String() string      { return s.Label.Literal + ": " + s.Stmt.String() }
func (s *LabeledStmt) stmtNode()           {}

// BreakStmt break 语句
type BreakStmt struct {
	BreakToken token.Token
	Label      string // 可为空 (无标签 break)
	Semicolon  token.Token
}

func (s *BreakStmt) Pos() token.Position { return s.BreakToken.Pos }
func (s *BreakStmt) End() token.Position { return s.Semicolon.Pos }
func (s *BreakStmt) String() string {
	if s.Label != "" {
		return "break " + s.Label + ";"
	}
	return "break;"
}
func (s *BreakStmt) stmtNode() {}

// ContinueStmt continue 语句
type ContinueStmt struct {
	ContinueToken token.Token
	Label         string // 可为空 (无标签 continue)
	Semicolon     token.Token
}

func (s *ContinueStmt) Pos() token.Position { return s.ContinueToken.Pos }
func (s *ContinueStmt) End() token.Position { return s.Semicolon.Pos }
func (s *ContinueStmt) String() string {
	if s.Label != "" {
		return "continue " + s.Label + ";"
	}
	return "continue;"
}
func (s *ContinueStmt) stmtNode() {}

// ReturnStmt return 语句
type ReturnStmt struct {
	ReturnToken token.Token
	Value       Expression // 可为 nil
	Semicolon   token.Token
}

func (s *ReturnStmt) Pos() token.Position { return s.ReturnToken.Pos }
func (s *ReturnStmt) End() token.Position { return s.Semicolon.Pos }
func (s *ReturnStmt) String() string {
	if s.Value == nil {
		return "return;"
	}
	return "return " + s.Value.String() + ";"
}
func (s *ReturnStmt) stmtNode() {}

// GotoStmt goto 语句
type GotoStmt struct {
	GotoToken token.Token
	Target    string // 标签名
	Semicolon token.Token
}

func (s *GotoStmt) Pos() token.Position { return s.GotoToken.Pos }
func (s *GotoStmt) End() token.Position { return s.Semicolon.Pos }
func (s *GotoStmt) String() string      { return "goto " + s.Target + ";" }
func (s *GotoStmt) stmtNode()           {}

// ThrowStmt throw 语句
type ThrowStmt struct {
	ThrowToken token.Token
	Exception  Expression
	Semicolon  token.Token
}

func (s *ThrowStmt) Pos() token.Position { return s.ThrowToken.Pos }
func (s *ThrowStmt) End() token.Position { return s.Semicolon.Pos }
func (s *ThrowStmt) String() string      { return "throw ...;" }
func (s *ThrowStmt) stmtNode()           {}

// ============================================================================
// try 语句
// ============================================================================

// TryStmt try-catch-else-finally 语句
//
// 语法（else 为本语言的 try 扩展）:
//
//	try ScopeStatement Catches
//	try ScopeStatement Catches FinallyStatement
//	try ScopeStatement TryElseStatement
//	try ScopeStatement Catches TryElseStatement
//	try ScopeStatement Catches TryElseStatement FinallyStatement
//	try ScopeStatement FinallyStatement
type TryStmt struct {
	TryToken token.Token
	Try      Statement      // try 块
	Catches  []*CatchClause // 按源码顺序
	Else     *ElseClause    // 可为 nil
	Finally  *FinallyClause // 可为 nil
}

// CatchClause catch 子句
//
// Type 为 nil 表示 catch-all（语法中的 LastCatch），只能出现在末尾。
type CatchClause struct {
	CatchToken token.Token
	Type       *SimpleType // 可为 nil (catch-all)
	Variable   *Variable   // 可为 nil (catch-all 无参数)
	Body       Statement
}

// IsCatchAll 是否为 catch-all 子句
func (c *CatchClause) IsCatchAll() bool { return c.Type == nil }

// ElseClause else 子句（仅当 try 块正常完成时进入）
type ElseClause struct {
	ElseToken token.Token
	Body      Statement
}

// FinallyClause finally 子句（每次执行恰好进入一次）
type FinallyClause struct {
	FinallyToken token.Token
	Body         Statement
}

func (s *TryStmt) Pos() token.Position { return s.TryToken.Pos }
func (s *TryStmt) End() token.Position {
	if s.Finally != nil {
		return s.Finally.Body.End()
	}
	if s.Else != nil {
		return s.Else.Body.End()
	}
	if len(s.Catches) > 0 {
		return s.Catches[len(s.Catches)-1].Body.End()
	}
	return s.Try.End()
}
func (s *TryStmt) String() string { return "try {...} ..." }
func (s *TryStmt) stmtNode()      {}

// HasClauses try 语句是否至少有一个 catch/else/finally 子句
//
// 裸 try 块没有意义，消歧器会对其报 E0600。
func (s *TryStmt) HasClauses() bool {
	return len(s.Catches) > 0 || s.Else != nil || s.Finally != nil
}

// ============================================================================
// AST 遍历
// ============================================================================

// Visitor AST 访问函数，返回 false 停止遍历当前子树
type Visitor func(node Node) bool

// Walk 遍历 AST 节点
func Walk(node Node, visitor Visitor) {
	if node == nil {
		return
	}

	if !visitor(node) {
		return
	}

	switch n := node.(type) {
	case *BlockStmt:
		for _, stmt := range n.Statements {
			Walk(stmt, visitor)
		}

	case *ExprStmt:
		Walk(n.Expr, visitor)

	case *AssignStmt:
		Walk(n.Target, visitor)
		Walk(n.Value, visitor)

	case *IfStmt:
		Walk(n.Condition, visitor)
		Walk(n.Then, visitor)
		if n.Else != nil {
			Walk(n.Else, visitor)
		}

	case *WhileStmt:
		Walk(n.Condition, visitor)
		Walk(n.Body, visitor)

	case *LabeledStmt:
		Walk(n.Stmt, visitor)

	case *ReturnStmt:
		if n.Value != nil {
			Walk(n.Value, visitor)
		}

	case *ThrowStmt:
		Walk(n.Exception, visitor)

	case *TryStmt:
		Walk(n.Try, visitor)
		for _, catch := range n.Catches {
			if catch.Type != nil {
				Walk(catch.Type, visitor)
			}
			if catch.Variable != nil {
				Walk(catch.Variable, visitor)
			}
			Walk(catch.Body, visitor)
		}
		if n.Else != nil {
			Walk(n.Else.Body, visitor)
		}
		if n.Finally != nil {
			Walk(n.Finally.Body, visitor)
		}

	case *BinaryExpr:
		Walk(n.Left, visitor)
		Walk(n.Right, visitor)

	case *NewExpr:
		Walk(n.Type, visitor)
		if n.Message != nil {
			Walk(n.Message, visitor)
		}
	}
}
