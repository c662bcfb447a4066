package filters

import (
	"fmt"
	"math"
	"strings"
)

// Variables that a filter can refer to.
// Each of them describes a part of a single tag/pattern evaluation.
const (
	VarTag     = "tag"
	VarPattern = "pattern"
	VarCapture = "capture"
)

func IsKnownVarname(varname string) bool {
	switch varname {
	case VarTag, VarPattern, VarCapture:
		return true
	default:
		return false
	}
}

type Info struct {
	// Vars lists referenced variables in the order of their first use.
	// Expr.Num of a var method is an index into this slice.
	Vars []string

	OpTab *OperationsTable
}

func (info *Info) String() string {
	parts := make([]string, 0, len(info.Vars))
	for _, varname := range info.Vars {
		parts = append(parts, "$"+varname)
	}
	return strings.Join(parts, " ")
}

type Expr struct {
	Op   Operation
	Num  int32
	Args []*Expr
	Str  string
}

type OperationsTable struct {
	opByVarFunc map[string]Operation
	nameByOp    map[Operation]string
}

func NewOperationTable(varFuncs map[string]Operation) *OperationsTable {
	tab := &OperationsTable{
		opByVarFunc: make(map[string]Operation),
		nameByOp:    make(map[Operation]string),
	}
	for funcName, op := range varFuncs {
		tab.opByVarFunc[funcName] = op
		tab.nameByOp[op] = funcName
	}
	return tab
}

// Parse compiles a filter expression like
//
//	$capture.IsNumeric() && $tag.Text() != "os:Linux"
//
// An empty string yields a Nop expression that accepts everything.
func Parse(tab *OperationsTable, s string) (*Expr, Info, error) {
	p := filterParser{tab: tab}
	return p.Parse(s)
}

func Sprint(info *Info, e *Expr) string {
	parts := make([]string, 0, len(e.Args))
	if e.Str != "" {
		parts = append(parts, fmt.Sprintf("%q", e.Str))
	}
	for _, arg := range e.Args {
		parts = append(parts, Sprint(info, arg))
	}
	opString := ""
	if e.Op.IsBuiltin() {
		opString = e.Op.String()
	} else {
		opString = "%" + info.OpTab.nameByOp[e.Op]
	}
	if len(parts) == 0 {
		return opString
	}
	return "(" + opString + " " + strings.Join(parts, " ") + ")"
}

// Walk visits e and its arguments in depth-first order.
// Returning false from the callback skips the children of that node.
func Walk(e *Expr, callback func(e *Expr) bool) {
	if !callback(e) {
		return
	}
	for _, arg := range e.Args {
		Walk(arg, callback)
	}
}

type Operation uint32

func (op Operation) IsBuiltin() bool {
	return op > opLastBuiltin || op == OpInvalid
}

func (op Operation) String() string {
	switch op {
	case OpInvalid:
		return "Invalid"
	case OpNop:
		return "Nop"
	case OpString:
		return "String"
	case OpNot:
		return "Not"
	case OpAnd:
		return "And"
	case OpOr:
		return "Or"
	case OpEq:
		return "Eq"
	case OpNotEq:
		return "NotEq"
	default:
		return fmt.Sprintf("Operation(%d)", uint32(op))
	}
}

const (
	OpInvalid Operation = 0

	// OpNop = do nothing (should be optimized-away, unless it's a top level op)
	OpNop Operation = math.MaxUint32 - iota

	// OpString is a string literal that holds the value inside $Str.
	OpString

	// OpNot = !$Args[0]
	OpNot

	// OpAnd = $Args[0] && $Args[1]
	OpAnd

	// OpOr = $Args[0] || $Args[1]
	OpOr

	// OpEq = $Args[0] == $Args[1]
	OpEq

	// OpNotEq = $Args[0] != $Args[1]
	OpNotEq

	opLastBuiltin
)
