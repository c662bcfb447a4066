package main

import (
	"fmt"
	"strconv"

	"github.com/blang/semver/v4"

	"github.com/quasilyte/buzz"
	"github.com/quasilyte/buzz/filters"
)

const (
	opVarIsEmpty filters.Operation = iota + 1
	opVarIsNumeric
	opVarIsSemver
	opVarText
)

func newFilterOpTab() *filters.OperationsTable {
	return filters.NewOperationTable(map[string]filters.Operation{
		"IsEmpty":   opVarIsEmpty,
		"IsNumeric": opVarIsNumeric,
		"IsSemver":  opVarIsSemver,
		"Text":      opVarText,
	})
}

func isStringOp(op filters.Operation) bool {
	return op == filters.OpString || op == opVarText
}

// checkFilter reports type errors, like using $tag.Text() as a condition
// or comparing two conditions.
func checkFilter(e *filters.Expr, wantBool bool) error {
	if wantBool && isStringOp(e.Op) {
		return fmt.Errorf("%s is not a condition", describeFilterExpr(e))
	}
	if !wantBool && !isStringOp(e.Op) {
		return fmt.Errorf("%s is not a string", describeFilterExpr(e))
	}
	switch e.Op {
	case filters.OpNot, filters.OpAnd, filters.OpOr:
		for _, arg := range e.Args {
			if err := checkFilter(arg, true); err != nil {
				return err
			}
		}
	case filters.OpEq, filters.OpNotEq:
		for _, arg := range e.Args {
			if err := checkFilter(arg, false); err != nil {
				return err
			}
		}
	}
	return nil
}

func describeFilterExpr(e *filters.Expr) string {
	switch e.Op {
	case filters.OpString:
		return strconv.Quote(e.Str)
	case opVarText:
		return "$" + e.Str + ".Text()"
	default:
		if e.Op.IsBuiltin() {
			return e.Op.String() + " expression"
		}
		return "$" + e.Str + " predicate"
	}
}

func applyFilter(f *filters.Expr, res buzz.Result) bool {
	switch f.Op {
	case filters.OpNop:
		return true

	case filters.OpNot:
		return !applyFilter(f.Args[0], res)

	case filters.OpAnd:
		return applyFilter(f.Args[0], res) && applyFilter(f.Args[1], res)

	case filters.OpOr:
		return applyFilter(f.Args[0], res) || applyFilter(f.Args[1], res)

	case filters.OpEq:
		return evalFilterString(f.Args[0], res) == evalFilterString(f.Args[1], res)
	case filters.OpNotEq:
		return evalFilterString(f.Args[0], res) != evalFilterString(f.Args[1], res)

	case opVarIsEmpty:
		return resultVarText(res, f.Str) == ""
	case opVarIsNumeric:
		return isNumeric(resultVarText(res, f.Str))
	case opVarIsSemver:
		_, err := semver.ParseTolerant(resultVarText(res, f.Str))
		return err == nil

	default:
		// Rejected by checkFilter.
		return false
	}
}

func evalFilterString(f *filters.Expr, res buzz.Result) string {
	if f.Op == opVarText {
		return resultVarText(res, f.Str)
	}
	return f.Str
}

func resultVarText(res buzz.Result, varname string) string {
	switch varname {
	case filters.VarTag:
		return res.Tag
	case filters.VarPattern:
		return res.Pattern.Text()
	case filters.VarCapture:
		return res.CaptureText()
	default:
		return ""
	}
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
