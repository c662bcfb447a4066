package filters

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
	"strings"

	"github.com/go-toolsmith/astequal"
)

const mangledPatternVar = "__vAR_"

func preprocess(s string) string {
	s = strings.TrimSpace(s)
	return strings.ReplaceAll(s, "$", mangledPatternVar)
}

func isPatternVar(s string) bool { return strings.HasPrefix(s, mangledPatternVar) }

func patternVarName(s string) string { return strings.TrimPrefix(s, mangledPatternVar) }

type filterParser struct {
	info Info

	tab *OperationsTable

	varnameToID map[string]int32
}

func (p *filterParser) Parse(s string) (*Expr, Info, error) {
	s = preprocess(s)
	if s == "" {
		return &Expr{Op: OpNop}, p.info, nil
	}

	root, err := parser.ParseExpr(s)
	if err != nil {
		return nil, Info{}, err
	}

	p.varnameToID = make(map[string]int32)
	p.info.OpTab = p.tab

	e, err := p.convertExpr(root)
	if err != nil {
		return nil, p.info, err
	}
	if e.Op == OpString {
		return nil, p.info, fmt.Errorf("string literal %q is not a condition", e.Str)
	}

	return e, p.info, nil
}

func (p *filterParser) internVar(varname string) int32 {
	id, ok := p.varnameToID[varname]
	if !ok {
		id = int32(len(p.info.Vars))
		p.info.Vars = append(p.info.Vars, varname)
		p.varnameToID[varname] = id
	}
	return id
}

func (p *filterParser) convertExpr(root ast.Expr) (*Expr, error) {
	switch root := root.(type) {
	case *ast.UnaryExpr:
		return p.convertUnaryExpr(root)
	case *ast.BinaryExpr:
		return p.convertBinaryExpr(root)
	case *ast.ParenExpr:
		return p.convertExpr(root.X)
	case *ast.CallExpr:
		return p.convertCallExpr(root)
	case *ast.BasicLit:
		return p.convertBasicLit(root)
	default:
		return nil, fmt.Errorf("convert expr: unsupported %T", root)
	}
}

func (p *filterParser) convertBasicLit(root *ast.BasicLit) (*Expr, error) {
	switch root.Kind {
	case token.STRING:
		val, err := strconv.Unquote(root.Value)
		return &Expr{Op: OpString, Str: val}, err
	default:
		return nil, fmt.Errorf("convert basic lit: unsupported %s", root.Kind)
	}
}

func (p *filterParser) convertCallExpr(root *ast.CallExpr) (*Expr, error) {
	if selector, ok := root.Fun.(*ast.SelectorExpr); ok {
		return p.convertMethodCallExpr(root, selector)
	}
	return nil, fmt.Errorf("convert call expr: unsupported %v function", root.Fun)
}

func (p *filterParser) convertMethodCallExpr(root *ast.CallExpr, selector *ast.SelectorExpr) (*Expr, error) {
	var object string
	ident, ok := selector.X.(*ast.Ident)
	if ok {
		object = ident.Name
	}
	if !isPatternVar(object) {
		return nil, fmt.Errorf("convert method expr: unsupported %T object", selector.X)
	}

	varName := patternVarName(object)
	if !IsKnownVarname(varName) {
		return nil, fmt.Errorf("convert method expr: unknown variable $%s", varName)
	}
	op, ok := p.tab.opByVarFunc[selector.Sel.Name]
	if !ok {
		return nil, fmt.Errorf("convert method expr: unsupported %s method", selector.Sel.Name)
	}
	if len(root.Args) != 0 {
		return nil, fmt.Errorf("convert method expr: %s method expects no arguments", selector.Sel.Name)
	}
	id := p.internVar(varName)
	return &Expr{Op: op, Num: id, Str: varName}, nil
}

func (p *filterParser) convertUnaryExpr(root *ast.UnaryExpr) (*Expr, error) {
	switch root.Op {
	case token.NOT:
		x, err := p.convertExpr(root.X)
		if err != nil {
			return nil, err
		}
		return &Expr{Op: OpNot, Args: []*Expr{x}}, nil

	default:
		return nil, fmt.Errorf("convert unary expr: unsupported %s", root.Op)
	}
}

func (p *filterParser) convertBinaryExpr(root *ast.BinaryExpr) (*Expr, error) {
	if _, ok := root.X.(*ast.BasicLit); ok {
		if _, ok := root.Y.(*ast.BasicLit); !ok {
			switch root.Op {
			case token.EQL:
				return p.convertBinaryExprXY(token.EQL, root.Y, root.X)
			case token.NEQ:
				return p.convertBinaryExprXY(token.NEQ, root.Y, root.X)
			}
		}
	}

	return p.convertBinaryExprXY(root.Op, root.X, root.Y)
}

func (p *filterParser) convertBinaryExprXY(op token.Token, x, y ast.Expr) (*Expr, error) {
	switch op {
	case token.LAND, token.LOR:
		// x && x and x || x are both just x.
		if astequal.Expr(unparen(x), unparen(y)) {
			return p.convertExpr(x)
		}
	}

	lhs, err := p.convertExpr(x)
	if err != nil {
		return nil, err
	}
	rhs, err := p.convertExpr(y)
	if err != nil {
		return nil, err
	}

	switch op {
	case token.LAND:
		return &Expr{Op: OpAnd, Args: []*Expr{lhs, rhs}}, nil
	case token.LOR:
		return &Expr{Op: OpOr, Args: []*Expr{lhs, rhs}}, nil

	case token.EQL:
		return &Expr{Op: OpEq, Args: []*Expr{lhs, rhs}}, nil
	case token.NEQ:
		return &Expr{Op: OpNotEq, Args: []*Expr{lhs, rhs}}, nil
	}

	return nil, fmt.Errorf("convert binary expr: unsupported %s", op)
}

func unparen(e ast.Expr) ast.Expr {
	for {
		paren, ok := e.(*ast.ParenExpr)
		if !ok {
			return e
		}
		e = paren.X
	}
}
