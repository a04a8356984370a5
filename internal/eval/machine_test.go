package eval

import (
	"errors"
	"testing"
)

// normalFn 返回正常完成的块
func normalFn(ran *int) BlockFn {
	return func() (Outcome, error) {
		*ran++
		return NormalOutcome(), nil
	}
}

// throwFn 返回抛出指定类型异常的块
func throwFn(typeName string, ran *int) BlockFn {
	return func() (Outcome, error) {
		*ran++
		return ThrownOutcome(&Exception{TypeName: typeName}), nil
	}
}

func TestProtectElseRunsOnlyAfterNormalTry(t *testing.T) {
	m := NewMachine()

	var tryRan, elseRan int
	out, err := m.Protect(normalFn(&tryRan), nil, normalFn(&elseRan), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.IsNormal() {
		t.Errorf("expected normal outcome, got %s", out)
	}
	if tryRan != 1 || elseRan != 1 {
		t.Errorf("expected try and else to run once, got try=%d else=%d", tryRan, elseRan)
	}
}

func TestProtectElseOutcomeBecomesPending(t *testing.T) {
	m := NewMachine()

	var tryRan int
	elseFn := func() (Outcome, error) {
		return ThrownOutcome(&Exception{TypeName: "F"}), nil
	}

	out, err := m.Protect(normalFn(&tryRan), nil, elseFn, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Kind != OutcomeThrown || out.Ex.TypeName != "F" {
		t.Errorf("expected thrown(F), got %s", out)
	}
}

func TestProtectElseThrowNotMatchedBySiblingCatches(t *testing.T) {
	// else 中抛出的异常不得与本语句自己的 catch 匹配
	m := NewMachine()

	var tryRan, catchRan int
	catches := []CatchHandler{{
		Type: "F",
		Body: func(ex *Exception) (Outcome, error) {
			catchRan++
			return NormalOutcome(), nil
		},
	}}
	elseFn := func() (Outcome, error) {
		return ThrownOutcome(&Exception{TypeName: "F"}), nil
	}

	out, err := m.Protect(normalFn(&tryRan), catches, elseFn, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if catchRan != 0 {
		t.Errorf("catch must not run for an exception thrown in else, ran %d times", catchRan)
	}
	if out.Kind != OutcomeThrown || out.Ex.TypeName != "F" {
		t.Errorf("expected thrown(F) to propagate, got %s", out)
	}
}

func TestProtectCatchSuppressesElse(t *testing.T) {
	m := NewMachine()

	tests := []struct {
		name         string
		catchOutcome Outcome
	}{
		{"catch completes normally", NormalOutcome()},
		{"catch throws", ThrownOutcome(&Exception{TypeName: "G"})},
		{"catch returns", ReturnOutcome(IntValue(1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tryRan, elseRan int
			catches := []CatchHandler{{
				Type: "E",
				Body: func(ex *Exception) (Outcome, error) {
					return tt.catchOutcome, nil
				},
			}}

			out, err := m.Protect(throwFn("E", &tryRan), catches, normalFn(&elseRan), nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if elseRan != 0 {
				t.Errorf("else must never run after a catch, ran %d times", elseRan)
			}
			if out.Kind != tt.catchOutcome.Kind {
				t.Errorf("expected catch outcome %s to become pending, got %s", tt.catchOutcome, out)
			}
		})
	}
}

func TestProtectCatchMatchOrder(t *testing.T) {
	h := NewHierarchy()
	h.Register("IOError", "Exception")
	m := NewMachine(WithHierarchy(h))

	var tryRan int
	var matched []string
	mkCatch := func(typeName string) CatchHandler {
		return CatchHandler{
			Type: typeName,
			Body: func(ex *Exception) (Outcome, error) {
				matched = append(matched, typeName)
				return NormalOutcome(), nil
			},
		}
	}

	// 源码顺序优先：IOError 先于 Exception 声明时匹配 IOError
	catches := []CatchHandler{mkCatch("IOError"), mkCatch("Exception")}
	if _, err := m.Protect(throwFn("IOError", &tryRan), catches, nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matched) != 1 || matched[0] != "IOError" {
		t.Errorf("expected IOError catch to match first, got %v", matched)
	}

	// supertype-or-equal：只有 Exception 时由它接住 IOError
	matched = nil
	catches = []CatchHandler{mkCatch("Exception")}
	if _, err := m.Protect(throwFn("IOError", &tryRan), catches, nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matched) != 1 || matched[0] != "Exception" {
		t.Errorf("expected Exception catch to match by hierarchy, got %v", matched)
	}
}

func TestProtectCatchAllMatchesEverything(t *testing.T) {
	m := NewMachine()

	var tryRan, caught int
	catches := []CatchHandler{{
		Body: func(ex *Exception) (Outcome, error) {
			caught++
			return NormalOutcome(), nil
		},
	}}

	out, err := m.Protect(throwFn("Whatever", &tryRan), catches, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if caught != 1 {
		t.Errorf("expected catch-all to match, caught=%d", caught)
	}
	if !out.IsNormal() {
		t.Errorf("expected normal outcome, got %s", out)
	}
}

func TestProtectUnmatchedThrowPropagates(t *testing.T) {
	m := NewMachine()

	var tryRan, finallyRan int
	catches := []CatchHandler{{
		Type: "Other",
		Body: func(ex *Exception) (Outcome, error) {
			t.Fatal("catch must not match")
			return NormalOutcome(), nil
		},
	}}

	out, err := m.Protect(throwFn("E", &tryRan), catches, nil, normalFn(&finallyRan))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Kind != OutcomeThrown || out.Ex.TypeName != "E" {
		t.Errorf("expected thrown(E) to propagate, got %s", out)
	}
	if finallyRan != 1 {
		t.Errorf("finally must still run, ran %d times", finallyRan)
	}
}

func TestProtectExitBypassesCatchAndElse(t *testing.T) {
	m := NewMachine()

	exits := []Outcome{
		ReturnOutcome(IntValue(1)),
		BreakOutcome(""),
		ContinueOutcome("outer"),
		GotoOutcome("done"),
	}

	for _, exit := range exits {
		exit := exit
		t.Run(exit.String(), func(t *testing.T) {
			var catchRan, elseRan, finallyRan int
			tryFn := func() (Outcome, error) { return exit, nil }
			catches := []CatchHandler{{
				Body: func(ex *Exception) (Outcome, error) {
					catchRan++
					return NormalOutcome(), nil
				},
			}}

			out, err := m.Protect(tryFn, catches, normalFn(&elseRan), normalFn(&finallyRan))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if catchRan != 0 || elseRan != 0 {
				t.Errorf("catch/else must not run on non-local exit, catch=%d else=%d", catchRan, elseRan)
			}
			if finallyRan != 1 {
				t.Errorf("finally must run exactly once, ran %d times", finallyRan)
			}
			if out.Kind != OutcomeExit || out.Exit.Kind != exit.Exit.Kind {
				t.Errorf("expected %s, got %s", exit, out)
			}
		})
	}
}

func TestProtectFinallyRunsExactlyOncePerPendingKind(t *testing.T) {
	m := NewMachine()

	tests := []struct {
		name  string
		tryFn func(ran *int) BlockFn
	}{
		{"normal", normalFn},
		{"thrown", func(ran *int) BlockFn { return throwFn("E", ran) }},
		{"exit", func(ran *int) BlockFn {
			return func() (Outcome, error) {
				*ran++
				return ReturnOutcome(NullValue()), nil
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tryRan, finallyRan int
			if _, err := m.Protect(tt.tryFn(&tryRan), nil, nil, normalFn(&finallyRan)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if finallyRan != 1 {
				t.Errorf("finally ran %d times, want exactly 1", finallyRan)
			}
		})
	}
}

func TestProtectFinallyMasksPendingOutcome(t *testing.T) {
	m := NewMachine()

	var tryRan int
	tests := []struct {
		name    string
		tryFn   BlockFn
		finally Outcome
	}{
		{"finally throw masks pending throw", throwFn("E", &tryRan), ThrownOutcome(&Exception{TypeName: "F"})},
		{"finally throw masks pending return", func() (Outcome, error) { return ReturnOutcome(IntValue(1)), nil }, ThrownOutcome(&Exception{TypeName: "F"})},
		{"finally break masks pending throw", throwFn("E", &tryRan), BreakOutcome("")},
		{"finally return masks normal", normalFn(&tryRan), ReturnOutcome(IntValue(7))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			finallyFn := func() (Outcome, error) { return tt.finally, nil }
			out, err := m.Protect(tt.tryFn, nil, nil, finallyFn)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.Kind != tt.finally.Kind {
				t.Errorf("expected finally outcome %s to mask pending, got %s", tt.finally, out)
			}
		})
	}
}

func TestProtectFinallyNormalPreservesPending(t *testing.T) {
	m := NewMachine()

	var tryRan, finallyRan int
	out, err := m.Protect(throwFn("E", &tryRan), nil, nil, normalFn(&finallyRan))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Kind != OutcomeThrown || out.Ex.TypeName != "E" {
		t.Errorf("finally completing normally must preserve pending thrown(E), got %s", out)
	}
}

func TestProtectFinallyRunsOnHostError(t *testing.T) {
	// 宿主求值故障也不能跳过 finally
	m := NewMachine()

	hostErr := errors.New("host fault")
	tryFn := func() (Outcome, error) { return NormalOutcome(), hostErr }

	var finallyRan int
	_, err := m.Protect(tryFn, nil, nil, normalFn(&finallyRan))
	if !errors.Is(err, hostErr) {
		t.Errorf("expected host error to propagate, got %v", err)
	}
	if finallyRan != 1 {
		t.Errorf("finally ran %d times, want exactly 1", finallyRan)
	}
}

func TestHierarchyMatches(t *testing.T) {
	h := NewHierarchy()
	h.Register("FileNotFound", "IOError")
	h.Register("IOError", "Exception")

	tests := []struct {
		declared string
		thrown   string
		want     bool
	}{
		{"IOError", "IOError", true},
		{"IOError", "FileNotFound", true},
		{"Exception", "FileNotFound", true},
		{"FileNotFound", "IOError", false},
		{"IOError", "Exception", false},
		{"Other", "FileNotFound", false},
	}

	for _, tt := range tests {
		if got := h.Matches(tt.declared, tt.thrown); got != tt.want {
			t.Errorf("Matches(%s, %s) = %v, want %v", tt.declared, tt.thrown, got, tt.want)
		}
	}
}

func TestStateString(t *testing.T) {
	states := map[State]string{
		StateRunTry:     "RunTry",
		StateRunCatch:   "RunCatch",
		StateRunElse:    "RunElse",
		StateRunFinally: "RunFinally",
		StateDone:       "Done",
	}
	for state, want := range states {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}
