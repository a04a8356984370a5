package bind

import (
	"testing"

	"github.com/tangzhangming/tryelse/internal/ast"
	"github.com/tangzhangming/tryelse/internal/errors"
	"github.com/tangzhangming/tryelse/internal/token"
)

// ============================================================================
// 测试用 AST 构造辅助
// ============================================================================

func tkAt(tt token.TokenType, lit string, line, col int) token.Token {
	return token.Token{Type: tt, Literal: lit, Pos: token.Position{Filename: "test.sola", Line: line, Column: col}}
}

func tk(tt token.TokenType, lit string) token.Token {
	return tkAt(tt, lit, 1, 1)
}

func block(stmts ...ast.Statement) *ast.BlockStmt {
	return &ast.BlockStmt{
		LBrace:     tk(token.LBRACE, "{"),
		Statements: stmts,
		RBrace:     tk(token.RBRACE, "}"),
	}
}

func emptyAssign() *ast.AssignStmt {
	return &ast.AssignStmt{
		Target:    &ast.Variable{Token: tk(token.VARIABLE, "$x"), Name: "x"},
		Operator:  tk(token.ASSIGN, "="),
		Value:     &ast.IntegerLiteral{Token: tk(token.INT, "0"), Value: 0},
		Semicolon: tk(token.SEMICOLON, ";"),
	}
}

func catchClause(typeName string) *ast.CatchClause {
	c := &ast.CatchClause{
		CatchToken: tk(token.CATCH, "catch"),
		Body:       block(),
	}
	if typeName != "" {
		c.Type = &ast.SimpleType{Token: tk(token.IDENT, typeName), Name: typeName}
		c.Variable = &ast.Variable{Token: tk(token.VARIABLE, "$e"), Name: "e"}
	}
	return c
}

func tryWithCatch(typeNames ...string) *ast.TryStmt {
	s := &ast.TryStmt{
		TryToken: tk(token.TRY, "try"),
		Try:      block(),
	}
	for _, name := range typeNames {
		s.Catches = append(s.Catches, catchClause(name))
	}
	return s
}

func ifElse(then, elseStmt ast.Statement) *ast.IfStmt {
	return &ast.IfStmt{
		IfToken:   tk(token.IF, "if"),
		Condition: &ast.BoolLiteral{Token: tk(token.TRUE, "true"), Value: true},
		Then:      then,
		ElseToken: tkAt(token.ELSE, "else", 3, 1),
		Else:      elseStmt,
	}
}

func resolve(stmts ...ast.Statement) *errors.Reporter {
	rep := errors.NewReporter()
	New(rep).Resolve(stmts)
	return rep
}

func countCode(diags []*errors.CompileError, code string) int {
	n := 0
	for _, d := range diags {
		if d.Code == code {
			n++
		}
	}
	return n
}

// ============================================================================
// else 绑定冲突
// ============================================================================

// 场景 E: 无大括号的 if (c) try {...} catch(E){} else {...}
// → else 绑定到 if，产生一条 W0001
func TestBracelessTryElseEmitsWarning(t *testing.T) {
	stmt := ifElse(tryWithCatch("E"), block())

	rep := resolve(stmt)
	if rep.HasErrors() {
		t.Fatalf("expected no errors, got %v", rep.Errors())
	}
	if n := countCode(rep.Warnings(), errors.W0001); n != 1 {
		t.Fatalf("expected exactly one W0001, got %d", n)
	}

	w := rep.Warnings()[0]
	if w.Line != 3 || w.Column != 1 {
		t.Errorf("diagnostic should point at the else token, got %d:%d", w.Line, w.Column)
	}
	if len(w.Notes) == 0 {
		t.Error("diagnostic must name the chosen binding")
	}
}

func TestBracedThenNoWarning(t *testing.T) {
	// if (c) { try {...} catch(E){} } else {...} — 显式 { } 没有歧义
	stmt := ifElse(block(tryWithCatch("E")), block())

	rep := resolve(stmt)
	if n := countCode(rep.Warnings(), errors.W0001); n != 0 {
		t.Errorf("expected no W0001 for braced branch, got %d", n)
	}
}

func TestIfWithoutElseNoWarning(t *testing.T) {
	stmt := &ast.IfStmt{
		IfToken:   tk(token.IF, "if"),
		Condition: &ast.BoolLiteral{Token: tk(token.TRUE, "true"), Value: true},
		Then:      tryWithCatch("E"),
	}

	rep := resolve(stmt)
	if n := countCode(rep.Warnings(), errors.W0001); n != 0 {
		t.Errorf("expected no W0001 without an else, got %d", n)
	}
}

func TestTryWithFinallyCannotAbsorbElse(t *testing.T) {
	// if (c) try {...} catch(E){} finally {...} else {...}
	// finally 之后的 else 在语法上只能属于 if，无冲突
	try := tryWithCatch("E")
	try.Finally = &ast.FinallyClause{FinallyToken: tk(token.FINALLY, "finally"), Body: block()}
	stmt := ifElse(try, block())

	rep := resolve(stmt)
	if n := countCode(rep.Warnings(), errors.W0001); n != 0 {
		t.Errorf("expected no W0001 when try has finally, got %d", n)
	}
}

func TestTryWithOwnElseCannotAbsorbSecondElse(t *testing.T) {
	// try 已有 else 时，后续 else 只能属于 if
	try := tryWithCatch("E")
	try.Else = &ast.ElseClause{ElseToken: tk(token.ELSE, "else"), Body: block()}
	stmt := ifElse(try, block())

	rep := resolve(stmt)
	if n := countCode(rep.Warnings(), errors.W0001); n != 0 {
		t.Errorf("expected no W0001 when try already has an else, got %d", n)
	}
}

func TestBareTryWithoutCatchesNoConflict(t *testing.T) {
	// 无 catch 的 try 若把 else 让给 if 自己就成了非法形状，
	// 贪心解析器必然已把 else 给 try，这里不构成冲突
	try := &ast.TryStmt{TryToken: tk(token.TRY, "try"), Try: block()}
	try.Finally = &ast.FinallyClause{FinallyToken: tk(token.FINALLY, "finally"), Body: block()}
	stmt := ifElse(try, block())

	rep := resolve(stmt)
	if n := countCode(rep.Warnings(), errors.W0001); n != 0 {
		t.Errorf("expected no W0001 for try without catches, got %d", n)
	}
}

func TestNestedConflictsEmitOneWarningEach(t *testing.T) {
	// if (a) if (b) try{}catch(E){} else {} else {}
	// 内外两个 if 各有一处冲突，各产生一条 W0001
	inner := ifElse(tryWithCatch("E"), tryWithCatch("F"))
	outer := ifElse(inner, block())

	rep := resolve(outer)
	if n := countCode(rep.Warnings(), errors.W0001); n != 2 {
		t.Errorf("expected one W0001 per conflict, got %d", n)
	}
}

func TestLabeledTryStillConflicts(t *testing.T) {
	// if (c) l: try {...} catch(E){} else {...} — label 不阻断绑定
	labeled := &ast.LabeledStmt{
		Label: tk(token.IDENT, "l"),
		Colon: tk(token.COLON, ":"),
		Stmt:  tryWithCatch("E"),
	}
	stmt := ifElse(labeled, block())

	rep := resolve(stmt)
	if n := countCode(rep.Warnings(), errors.W0001); n != 1 {
		t.Errorf("expected one W0001 through a labeled statement, got %d", n)
	}
}

func TestTrailingTryInsideLastCatchBody(t *testing.T) {
	// if (c) try{}catch(E) try{}catch(F){} else {} — 末尾 catch 体内
	// 又以一个可吸收 else 的 try 结束，依旧是一处冲突
	outer := tryWithCatch()
	outer.Catches = []*ast.CatchClause{{
		CatchToken: tk(token.CATCH, "catch"),
		Type:       &ast.SimpleType{Token: tk(token.IDENT, "E"), Name: "E"},
		Variable:   &ast.Variable{Token: tk(token.VARIABLE, "$e"), Name: "e"},
		Body:       tryWithCatch("F"),
	}}
	stmt := ifElse(outer, block())

	rep := resolve(stmt)
	if n := countCode(rep.Warnings(), errors.W0001); n != 1 {
		t.Errorf("expected one W0001, got %d", n)
	}
}

// ============================================================================
// try 形状检查
// ============================================================================

func TestBareTryShapeError(t *testing.T) {
	try := &ast.TryStmt{TryToken: tk(token.TRY, "try"), Try: block()}

	rep := resolve(try)
	if n := countCode(rep.Errors(), errors.E0600); n != 1 {
		t.Errorf("expected one E0600 for a bare try, got %d", n)
	}
}

func TestCatchAllMustBeLast(t *testing.T) {
	try := tryWithCatch("", "E")

	rep := resolve(try)
	if n := countCode(rep.Errors(), errors.E0602); n != 1 {
		t.Errorf("expected one E0602, got %d", n)
	}
	if n := countCode(rep.Errors(), errors.E0603); n != 1 {
		t.Errorf("expected one E0603 for the unreachable typed catch, got %d", n)
	}
}

func TestDuplicateCatchAll(t *testing.T) {
	try := tryWithCatch("", "")

	rep := resolve(try)
	if n := countCode(rep.Errors(), errors.E0601); n != 1 {
		t.Errorf("expected one E0601, got %d", n)
	}
}

func TestValidTryShapesNoErrors(t *testing.T) {
	tests := []struct {
		name string
		try  *ast.TryStmt
	}{
		{"typed catches then catch-all", tryWithCatch("E", "F", "")},
		{"single catch-all", tryWithCatch("")},
		{"catches only", tryWithCatch("E")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := resolve(tt.try)
			if rep.HasErrors() {
				t.Errorf("expected no shape errors, got %v", rep.Errors())
			}
		})
	}
}

func TestShapeCheckedInsideNestedBlocks(t *testing.T) {
	// 形状检查要深入嵌套块
	bare := &ast.TryStmt{TryToken: tk(token.TRY, "try"), Try: block()}
	loop := &ast.WhileStmt{
		WhileToken: tk(token.WHILE, "while"),
		Condition:  &ast.BoolLiteral{Token: tk(token.TRUE, "true"), Value: true},
		Body:       block(block(bare)),
	}

	rep := resolve(loop)
	if n := countCode(rep.Errors(), errors.E0600); n != 1 {
		t.Errorf("expected E0600 inside nested blocks, got %d", n)
	}
}
