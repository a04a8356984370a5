package eval

import (
	"fmt"
	"strconv"
)

// ============================================================================
// 运行期值
// ============================================================================

// ValueKind 值种类
type ValueKind int

const (
	ValueNull   ValueKind = iota // null
	ValueInt                     // 整数
	ValueBool                    // 布尔
	ValueString                  // 字符串
	ValueExc                     // 异常对象
)

// Value 运行期值
type Value struct {
	Kind ValueKind
	Int  int64
	Bool bool
	Str  string
	Ex   *Exception
}

// NullValue null 值
func NullValue() Value { return Value{Kind: ValueNull} }

// IntValue 整数值
func IntValue(i int64) Value { return Value{Kind: ValueInt, Int: i} }

// BoolValue 布尔值
func BoolValue(b bool) Value { return Value{Kind: ValueBool, Bool: b} }

// StringValue 字符串值
func StringValue(s string) Value { return Value{Kind: ValueString, Str: s} }

// ExceptionValue 异常对象值
func ExceptionValue(ex *Exception) Value { return Value{Kind: ValueExc, Ex: ex} }

// IsTruthy 条件判断的真值规则
func (v Value) IsTruthy() bool {
	switch v.Kind {
	case ValueNull:
		return false
	case ValueInt:
		return v.Int != 0
	case ValueBool:
		return v.Bool
	case ValueString:
		return v.Str != ""
	default:
		return true
	}
}

// Equals 值相等比较
func (v Value) Equals(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case ValueNull:
		return true
	case ValueInt:
		return v.Int == other.Int
	case ValueBool:
		return v.Bool == other.Bool
	case ValueString:
		return v.Str == other.Str
	case ValueExc:
		return v.Ex == other.Ex
	default:
		return false
	}
}

// String 返回值的字符串表示
func (v Value) String() string {
	switch v.Kind {
	case ValueNull:
		return "null"
	case ValueInt:
		return strconv.FormatInt(v.Int, 10)
	case ValueBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case ValueString:
		return fmt.Sprintf("%q", v.Str)
	case ValueExc:
		return v.Ex.String()
	default:
		return "unknown"
	}
}

// ============================================================================
// 变量环境
// ============================================================================

// Env 词法作用域环境
//
// try/catch/else/finally 各子句共享 try 语句所在的环境，catch 参数
// 绑定在子环境中。赋值写入最近声明该变量的环境，未声明过则写入当前环境。
type Env struct {
	vars   map[string]Value
	parent *Env
}

// NewEnv 创建顶层环境
func NewEnv() *Env {
	return &Env{vars: make(map[string]Value)}
}

// NewChildEnv 创建子环境
func NewChildEnv(parent *Env) *Env {
	return &Env{vars: make(map[string]Value), parent: parent}
}

// Get 读取变量，未定义返回 (null, false)
func (e *Env) Get(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.vars[name]; ok {
			return v, true
		}
	}
	return NullValue(), false
}

// Define 在当前环境中定义变量
func (e *Env) Define(name string, v Value) {
	e.vars[name] = v
}

// Set 赋值：写入最近声明该变量的环境，未声明则写入当前环境
func (e *Env) Set(name string, v Value) {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.vars[name]; ok {
			env.vars[name] = v
			return
		}
	}
	e.vars[name] = v
}
