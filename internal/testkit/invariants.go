// Package testkit holds checks shared by tests of packages that produce
// syntax: the expression parser, the manifest reader and the fuzz harnesses.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"stark/internal/source"
	"stark/internal/syntax"
)

// CheckExprSpans runs the span invariants of a parsed expression:
// 1) every node span is non-empty and lies inside within
// 2) every child span lies inside the span of its parent
// 3) type spans of operands and call receivers lie inside their node
// Parentheses are not nodes, so a parent may be wider than the union of its
// children. A within of source.NoSpan skips the checks: the parser does
// not compute spans then.
func CheckExprSpans(e syntax.Expr, within source.Span) error {
	if within == source.NoSpan {
		return nil
	}
	return checkExpr(e, within)
}

func checkExpr(e syntax.Expr, parent source.Span) error {
	if e == nil {
		return fmt.Errorf("nil expression inside %v", parent)
	}
	sp := e.NodeSpan()
	if err := inside(sp, parent); err != nil {
		return fmt.Errorf("%T: %w", e, err)
	}
	switch x := e.(type) {
	case *syntax.TypedExpr:
		return checkType(x.Type, sp)
	case *syntax.UnaryExpr:
		return checkExpr(x.Operand, sp)
	case *syntax.BinaryExpr:
		if err := checkExpr(x.Left, sp); err != nil {
			return err
		}
		if err := checkExpr(x.Right, sp); err != nil {
			return err
		}
		if x.Left.NodeSpan().Start >= x.Right.NodeSpan().Start {
			return fmt.Errorf("binary operands out of order: %v, %v", x.Left.NodeSpan(), x.Right.NodeSpan())
		}
	case *syntax.CallExpr:
		if err := checkType(x.Receiver, sp); err != nil {
			return err
		}
		for _, a := range x.Args {
			if err := checkExpr(a, sp); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkType(t *syntax.TypeSyntax, parent source.Span) error {
	if t == nil {
		return fmt.Errorf("nil type inside %v", parent)
	}
	if err := inside(t.Span, parent); err != nil {
		return fmt.Errorf("type %s: %w", t, err)
	}
	if t.Elem != nil {
		if err := checkType(t.Elem, t.Span); err != nil {
			return err
		}
	}
	for _, a := range t.Args {
		if err := checkType(a, t.Span); err != nil {
			return err
		}
	}
	return nil
}

func inside(sp, parent source.Span) error {
	if sp.End <= sp.Start {
		return fmt.Errorf("empty span %v", sp)
	}
	if sp.File != parent.File {
		return fmt.Errorf("span %v points to file %d, want %d", sp, sp.File, parent.File)
	}
	if sp.Start < parent.Start || sp.End > parent.End {
		return fmt.Errorf("span %v is outside %v", sp, parent)
	}
	return nil
}

// CheckDeclSpans checks that every located span of decls points into f and
// stays within its content, and that method bodies pass CheckExprSpans
// against their own span. Spans left at source.NoSpan are allowed: a
// declaration without a location is reported without one.
func CheckDeclSpans(decls []*syntax.TypeDecl, f *source.File) error {
	if f == nil {
		return fmt.Errorf("nil file")
	}
	size, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	whole := source.Span{File: f.ID, Start: 0, End: size}
	located := func(what string, sp source.Span) error {
		if sp == source.NoSpan {
			return nil
		}
		if sp.End < sp.Start {
			return fmt.Errorf("%s: inverted span %v", what, sp)
		}
		if sp.File != f.ID || sp.End > size {
			return fmt.Errorf("%s: span %v is outside %v", what, sp, whole)
		}
		return nil
	}
	for _, d := range decls {
		if err := located(d.FullName(), d.Span); err != nil {
			return err
		}
		if err := located(d.FullName()+" name", d.NameSpan); err != nil {
			return err
		}
		for _, m := range d.Members {
			if err := located(d.FullName()+"."+m.Name, m.Span); err != nil {
				return err
			}
		}
		for _, fd := range d.Fields {
			if err := located(d.FullName()+"."+fd.Name, fd.Span); err != nil {
				return err
			}
		}
		for _, md := range d.Methods {
			what := d.FullName() + "." + md.Name
			if err := located(what, md.Span); err != nil {
				return err
			}
			for _, pd := range md.Params {
				if err := located(what+"("+pd.Name+")", pd.Span); err != nil {
					return err
				}
			}
			if md.Body == nil {
				continue
			}
			body := md.Body.NodeSpan()
			if err := located(what+" body", body); err != nil {
				return err
			}
			if err := CheckExprSpans(md.Body, body); err != nil {
				return fmt.Errorf("%s body: %w", what, err)
			}
		}
	}
	return nil
}
