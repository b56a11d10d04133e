package macro

import (
	"strings"

	"go.starlark.net/syntax"
)

// FunctionDoc describes an exported macro function.
type FunctionDoc struct {
	Name      string
	Params    []string // "x" or "x=default"
	Docstring string
	Line      int
}

// Signature returns the function as name(params).
func (f *FunctionDoc) Signature() string {
	return f.Name + "(" + strings.Join(f.Params, ", ") + ")"
}

// parseDocs reads function signatures and docstrings without executing the
// file.
func parseDocs(filename string, content []byte) ([]*FunctionDoc, error) {
	f, err := syntax.Parse(filename, content, 0)
	if err != nil {
		return nil, err
	}

	var docs []*FunctionDoc
	for _, stmt := range f.Stmts {
		def, ok := stmt.(*syntax.DefStmt)
		if !ok || strings.HasPrefix(def.Name.Name, "_") {
			continue
		}
		docs = append(docs, &FunctionDoc{
			Name:      def.Name.Name,
			Params:    params(def.Params),
			Docstring: docstring(def.Body),
			Line:      int(def.Name.NamePos.Line),
		})
	}
	return docs, nil
}

func params(exprs []syntax.Expr) []string {
	var out []string
	for _, param := range exprs {
		switch p := param.(type) {
		case *syntax.Ident:
			out = append(out, p.Name)
		case *syntax.BinaryExpr:
			if ident, ok := p.X.(*syntax.Ident); ok && p.Op == syntax.EQ {
				out = append(out, ident.Name+"="+exprString(p.Y))
			}
		case *syntax.UnaryExpr:
			if ident, ok := p.X.(*syntax.Ident); ok {
				switch p.Op {
				case syntax.STAR:
					out = append(out, "*"+ident.Name)
				case syntax.STARSTAR:
					out = append(out, "**"+ident.Name)
				}
			}
		}
	}
	return out
}

// docstring returns the leading string literal of a function body.
func docstring(body []syntax.Stmt) string {
	if len(body) == 0 {
		return ""
	}
	expr, ok := body[0].(*syntax.ExprStmt)
	if !ok {
		return ""
	}
	lit, ok := expr.X.(*syntax.Literal)
	if !ok || lit.Token != syntax.STRING {
		return ""
	}
	s, _ := lit.Value.(string)
	return strings.TrimSpace(s)
}

func exprString(expr syntax.Expr) string {
	switch e := expr.(type) {
	case *syntax.Literal:
		return e.Raw
	case *syntax.Ident:
		return e.Name
	case *syntax.UnaryExpr:
		if e.Op == syntax.MINUS {
			return "-" + exprString(e.X)
		}
		return exprString(e.X)
	default:
		return "..."
	}
}
