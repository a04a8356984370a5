package token

import "fmt"

// ============================================================================
// Token 类型定义
// ============================================================================
//
// 本包只保留语句树需要引用的 token 种类。词法分析由外部前端完成，
// 树节点持有 token 仅用于位置信息和原始字面量。
//
// ============================================================================

// TokenType 表示 Token 的类型
type TokenType int

const (
	// ----------------------------------------------------------
	// 特殊标记
	// ----------------------------------------------------------
	ILLEGAL TokenType = iota // 非法字符
	EOF                      // 文件结束

	// ----------------------------------------------------------
	// 字面量
	// ----------------------------------------------------------
	IDENT    // 标识符 (类型名、标签名等)
	VARIABLE // 变量 ($开头)
	INT      // 整数字面量
	STRING   // 字符串字面量

	// ----------------------------------------------------------
	// 运算符
	// ----------------------------------------------------------
	ASSIGN // =
	EQ     // ==
	NE     // !=
	LT     // <
	LE     // <=
	GT     // >
	GE     // >=

	// ----------------------------------------------------------
	// 分隔符
	// ----------------------------------------------------------
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	SEMICOLON // ;
	COLON     // :

	// ----------------------------------------------------------
	// 关键字
	// ----------------------------------------------------------
	IF       // if
	ELSE     // else
	WHILE    // while
	TRY      // try
	CATCH    // catch
	FINALLY  // finally
	THROW    // throw
	RETURN   // return
	BREAK    // break
	CONTINUE // continue
	GOTO     // goto
	NEW      // new
	TRUE     // true
	FALSE    // false
	NULL     // null
)

// tokenNames token 类型名称（用于调试输出）
var tokenNames = map[TokenType]string{
	ILLEGAL:   "ILLEGAL",
	EOF:       "EOF",
	IDENT:     "IDENT",
	VARIABLE:  "VARIABLE",
	INT:       "INT",
	STRING:    "STRING",
	ASSIGN:    "=",
	EQ:        "==",
	NE:        "!=",
	LT:        "<",
	LE:        "<=",
	GT:        ">",
	GE:        ">=",
	LPAREN:    "(",
	RPAREN:    ")",
	LBRACE:    "{",
	RBRACE:    "}",
	SEMICOLON: ";",
	COLON:     ":",
	IF:        "if",
	ELSE:      "else",
	WHILE:     "while",
	TRY:       "try",
	CATCH:     "catch",
	FINALLY:   "finally",
	THROW:     "throw",
	RETURN:    "return",
	BREAK:     "break",
	CONTINUE:  "continue",
	GOTO:      "goto",
	NEW:       "new",
	TRUE:      "true",
	FALSE:     "false",
	NULL:      "null",
}

// String 返回 TokenType 的字符串表示
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// ============================================================================
// Position - 源代码位置
// ============================================================================

// Position 源代码位置
type Position struct {
	Filename string // 文件名
	Line     int    // 行号 (从1开始)
	Column   int    // 列号 (从1开始)
	Offset   int    // 字节偏移量 (从0开始)
}

// String 返回位置的字符串表示，格式为 "filename:line:column"
func (p Position) String() string {
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// IsValid 检查位置是否有效
func (p Position) IsValid() bool {
	return p.Line > 0
}

// ============================================================================
// Token
// ============================================================================

// Token 词法单元
type Token struct {
	Type    TokenType // Token 类型
	Literal string    // 原始字面量
	Pos     Position  // 位置信息
}

// String 返回 Token 的字符串表示（用于调试）
func (t Token) String() string {
	if t.Literal != "" {
		return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
	}
	return t.Type.String()
}
