// Package treejson 实现语句树的 JSON 外部格式
//
// 词法分析和完整解析由外部前端负责，前端把已解析的语句树编码为
// kind 标签的 JSON 文档交给本引擎。格式带版本号，未知的 kind 一律
// 报错而不是忽略。
package treejson

import (
	"fmt"

	"github.com/segmentio/encoding/json"

	"github.com/tangzhangming/tryelse/internal/ast"
	"github.com/tangzhangming/tryelse/internal/token"
)

// FormatVersion 当前格式版本
const FormatVersion = 1

// ============================================================================
// JSON 节点
// ============================================================================

// document 顶层文档
type document struct {
	Version    int        `json:"version"`
	Statements []stmtNode `json:"statements"`
}

// stmtNode 语句的 JSON 形式（kind 决定有效字段）
type stmtNode struct {
	Kind string `json:"kind"`

	// 位置（可选，供诊断定位）
	Line int `json:"line,omitempty"`
	Col  int `json:"col,omitempty"`

	// block
	Stmts []stmtNode `json:"stmts,omitempty"`

	// assign
	Target string    `json:"target,omitempty"`
	Value  *exprNode `json:"value,omitempty"`

	// if / while
	Cond     *exprNode `json:"cond,omitempty"`
	Then     *stmtNode `json:"then,omitempty"`
	Else     *stmtNode `json:"else,omitempty"`
	ElseLine int       `json:"elseLine,omitempty"`
	ElseCol  int       `json:"elseCol,omitempty"`
	Body     *stmtNode `json:"body,omitempty"`

	// labeled / break / continue / goto
	Label string    `json:"label,omitempty"`
	Stmt  *stmtNode `json:"stmt,omitempty"`

	// expr / throw / return
	Expr *exprNode `json:"expr,omitempty"`

	// try
	Try     *stmtNode   `json:"try,omitempty"`
	Catches []catchNode `json:"catches,omitempty"`
	TryElse *stmtNode   `json:"tryElse,omitempty"`
	Finally *stmtNode   `json:"finally,omitempty"`
}

// catchNode catch 子句的 JSON 形式
type catchNode struct {
	Type string    `json:"type,omitempty"` // 空串 = catch-all
	Var  string    `json:"var,omitempty"`
	Body *stmtNode `json:"body"`
	Line int       `json:"line,omitempty"`
	Col  int       `json:"col,omitempty"`
}

// exprNode 表达式的 JSON 形式
type exprNode struct {
	Kind    string    `json:"kind"`
	Int     int64     `json:"int,omitempty"`
	Str     string    `json:"str,omitempty"`
	Bool    bool      `json:"bool,omitempty"`
	Name    string    `json:"name,omitempty"` // 变量名 / 异常类型名
	Op      string    `json:"op,omitempty"`
	Left    *exprNode `json:"left,omitempty"`
	Right   *exprNode `json:"right,omitempty"`
	Message *exprNode `json:"message,omitempty"`
	Line    int       `json:"line,omitempty"`
	Col     int       `json:"col,omitempty"`
}

// ============================================================================
// 解码
// ============================================================================

// decoder 携带文件名的解码上下文
type decoder struct {
	file string
}

// Decode 解码 JSON 语句树
//
// file 仅用于合成位置信息，便于诊断定位。
func Decode(file string, data []byte) ([]ast.Statement, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("treejson: invalid document: %w", err)
	}
	if doc.Version != FormatVersion {
		return nil, fmt.Errorf("treejson: unsupported format version %d", doc.Version)
	}

	d := &decoder{file: file}
	stmts := make([]ast.Statement, 0, len(doc.Statements))
	for i := range doc.Statements {
		s, err := d.stmt(&doc.Statements[i])
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	return stmts, nil
}

// tok 合成一个 token
func (d *decoder) tok(t token.TokenType, literal string, line, col int) token.Token {
	return token.Token{
		Type:    t,
		Literal: literal,
		Pos:     token.Position{Filename: d.file, Line: line, Column: col},
	}
}

// stmt 解码一条语句
func (d *decoder) stmt(n *stmtNode) (ast.Statement, error) {
	switch n.Kind {
	case "block":
		stmts := make([]ast.Statement, 0, len(n.Stmts))
		for i := range n.Stmts {
			s, err := d.stmt(&n.Stmts[i])
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, s)
		}
		return &ast.BlockStmt{
			LBrace:     d.tok(token.LBRACE, "{", n.Line, n.Col),
			Statements: stmts,
			RBrace:     d.tok(token.RBRACE, "}", n.Line, n.Col),
		}, nil

	case "assign":
		if n.Value == nil {
			return nil, fmt.Errorf("treejson: assign without value")
		}
		value, err := d.expr(n.Value)
		if err != nil {
			return nil, err
		}
		return &ast.AssignStmt{
			Target: &ast.Variable{
				Token: d.tok(token.VARIABLE, "$"+n.Target, n.Line, n.Col),
				Name:  n.Target,
			},
			Operator:  d.tok(token.ASSIGN, "=", n.Line, n.Col),
			Value:     value,
			Semicolon: d.tok(token.SEMICOLON, ";", n.Line, n.Col),
		}, nil

	case "if":
		if n.Cond == nil || n.Then == nil {
			return nil, fmt.Errorf("treejson: if requires cond and then")
		}
		cond, err := d.expr(n.Cond)
		if err != nil {
			return nil, err
		}
		then, err := d.stmt(n.Then)
		if err != nil {
			return nil, err
		}
		stmt := &ast.IfStmt{
			IfToken:   d.tok(token.IF, "if", n.Line, n.Col),
			Condition: cond,
			Then:      then,
		}
		if n.Else != nil {
			elseStmt, err := d.stmt(n.Else)
			if err != nil {
				return nil, err
			}
			stmt.ElseToken = d.tok(token.ELSE, "else", n.ElseLine, n.ElseCol)
			stmt.Else = elseStmt
		}
		return stmt, nil

	case "while":
		if n.Cond == nil || n.Body == nil {
			return nil, fmt.Errorf("treejson: while requires cond and body")
		}
		cond, err := d.expr(n.Cond)
		if err != nil {
			return nil, err
		}
		body, err := d.stmt(n.Body)
		if err != nil {
			return nil, err
		}
		block, ok := body.(*ast.BlockStmt)
		if !ok {
			return nil, fmt.Errorf("treejson: while body must be a block")
		}
		return &ast.WhileStmt{
			WhileToken: d.tok(token.WHILE, "while", n.Line, n.Col),
			Condition:  cond,
			Body:       block,
		}, nil

	case "labeled":
		if n.Stmt == nil {
			return nil, fmt.Errorf("treejson: labeled without stmt")
		}
		inner, err := d.stmt(n.Stmt)
		if err != nil {
			return nil, err
		}
		return &ast.LabeledStmt{
			Label: d.tok(token.IDENT, n.Label, n.Line, n.Col),
			Colon: d.tok(token.COLON, ":", n.Line, n.Col),
			Stmt:  inner,
		}, nil

	case "break":
		return &ast.BreakStmt{
			BreakToken: d.tok(token.BREAK, "break", n.Line, n.Col),
			Label:      n.Label,
			Semicolon:  d.tok(token.SEMICOLON, ";", n.Line, n.Col),
		}, nil

	case "continue":
		return &ast.ContinueStmt{
			ContinueToken: d.tok(token.CONTINUE, "continue", n.Line, n.Col),
			Label:         n.Label,
			Semicolon:     d.tok(token.SEMICOLON, ";", n.Line, n.Col),
		}, nil

	case "return":
		stmt := &ast.ReturnStmt{
			ReturnToken: d.tok(token.RETURN, "return", n.Line, n.Col),
			Semicolon:   d.tok(token.SEMICOLON, ";", n.Line, n.Col),
		}
		if n.Expr != nil {
			value, err := d.expr(n.Expr)
			if err != nil {
				return nil, err
			}
			stmt.Value = value
		}
		return stmt, nil

	case "goto":
		return &ast.GotoStmt{
			GotoToken: d.tok(token.GOTO, "goto", n.Line, n.Col),
			Target:    n.Label,
			Semicolon: d.tok(token.SEMICOLON, ";", n.Line, n.Col),
		}, nil

	case "throw":
		if n.Expr == nil {
			return nil, fmt.Errorf("treejson: throw without expr")
		}
		ex, err := d.expr(n.Expr)
		if err != nil {
			return nil, err
		}
		return &ast.ThrowStmt{
			ThrowToken: d.tok(token.THROW, "throw", n.Line, n.Col),
			Exception:  ex,
			Semicolon:  d.tok(token.SEMICOLON, ";", n.Line, n.Col),
		}, nil

	case "expr":
		if n.Expr == nil {
			return nil, fmt.Errorf("treejson: expr statement without expr")
		}
		expr, err := d.expr(n.Expr)
		if err != nil {
			return nil, err
		}
		return &ast.ExprStmt{
			Expr:      expr,
			Semicolon: d.tok(token.SEMICOLON, ";", n.Line, n.Col),
		}, nil

	case "try":
		return d.tryStmt(n)

	default:
		return nil, fmt.Errorf("treejson: unknown statement kind %q", n.Kind)
	}
}

// tryStmt 解码 try 语句
func (d *decoder) tryStmt(n *stmtNode) (ast.Statement, error) {
	if n.Try == nil {
		return nil, fmt.Errorf("treejson: try without try block")
	}
	tryBlock, err := d.stmt(n.Try)
	if err != nil {
		return nil, err
	}

	stmt := &ast.TryStmt{
		TryToken: d.tok(token.TRY, "try", n.Line, n.Col),
		Try:      tryBlock,
	}

	for i := range n.Catches {
		c := &n.Catches[i]
		if c.Body == nil {
			return nil, fmt.Errorf("treejson: catch without body")
		}
		body, err := d.stmt(c.Body)
		if err != nil {
			return nil, err
		}
		clause := &ast.CatchClause{
			CatchToken: d.tok(token.CATCH, "catch", c.Line, c.Col),
			Body:       body,
		}
		if c.Type != "" {
			clause.Type = &ast.SimpleType{
				Token: d.tok(token.IDENT, c.Type, c.Line, c.Col),
				Name:  c.Type,
			}
		}
		if c.Var != "" {
			clause.Variable = &ast.Variable{
				Token: d.tok(token.VARIABLE, "$"+c.Var, c.Line, c.Col),
				Name:  c.Var,
			}
		}
		stmt.Catches = append(stmt.Catches, clause)
	}

	if n.TryElse != nil {
		body, err := d.stmt(n.TryElse)
		if err != nil {
			return nil, err
		}
		stmt.Else = &ast.ElseClause{
			ElseToken: d.tok(token.ELSE, "else", n.TryElse.Line, n.TryElse.Col),
			Body:      body,
		}
	}
	if n.Finally != nil {
		body, err := d.stmt(n.Finally)
		if err != nil {
			return nil, err
		}
		stmt.Finally = &ast.FinallyClause{
			FinallyToken: d.tok(token.FINALLY, "finally", n.Finally.Line, n.Finally.Col),
			Body:         body,
		}
	}
	return stmt, nil
}

// expr 解码表达式
func (d *decoder) expr(n *exprNode) (ast.Expression, error) {
	switch n.Kind {
	case "int":
		return &ast.IntegerLiteral{
			Token: d.tok(token.INT, fmt.Sprintf("%d", n.Int), n.Line, n.Col),
			Value: n.Int,
		}, nil

	case "string":
		return &ast.StringLiteral{
			Token: d.tok(token.STRING, n.Str, n.Line, n.Col),
			Value: n.Str,
		}, nil

	case "bool":
		tt := token.FALSE
		if n.Bool {
			tt = token.TRUE
		}
		return &ast.BoolLiteral{
			Token: d.tok(tt, "", n.Line, n.Col),
			Value: n.Bool,
		}, nil

	case "null":
		return &ast.NullLiteral{
			Token: d.tok(token.NULL, "null", n.Line, n.Col),
		}, nil

	case "var":
		return &ast.Variable{
			Token: d.tok(token.VARIABLE, "$"+n.Name, n.Line, n.Col),
			Name:  n.Name,
		}, nil

	case "binary":
		if n.Left == nil || n.Right == nil {
			return nil, fmt.Errorf("treejson: binary requires left and right")
		}
		left, err := d.expr(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := d.expr(n.Right)
		if err != nil {
			return nil, err
		}
		opType, ok := binaryOps[n.Op]
		if !ok {
			return nil, fmt.Errorf("treejson: unknown binary operator %q", n.Op)
		}
		return &ast.BinaryExpr{
			Left:     left,
			Operator: d.tok(opType, n.Op, n.Line, n.Col),
			Right:    right,
		}, nil

	case "new":
		expr := &ast.NewExpr{
			NewToken: d.tok(token.NEW, "new", n.Line, n.Col),
			Type: &ast.SimpleType{
				Token: d.tok(token.IDENT, n.Name, n.Line, n.Col),
				Name:  n.Name,
			},
			RParen: d.tok(token.RPAREN, ")", n.Line, n.Col),
		}
		if n.Message != nil {
			msg, err := d.expr(n.Message)
			if err != nil {
				return nil, err
			}
			expr.Message = msg
		}
		return expr, nil

	default:
		return nil, fmt.Errorf("treejson: unknown expression kind %q", n.Kind)
	}
}

// binaryOps 二元运算符映射
var binaryOps = map[string]token.TokenType{
	"==": token.EQ,
	"!=": token.NE,
	"<":  token.LT,
	"<=": token.LE,
	">":  token.GT,
	">=": token.GE,
}
