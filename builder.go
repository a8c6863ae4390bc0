package sqlorm

import (
	"strings"

	"github.com/levlavryniuk/sqlorm/internal/errs"
	"github.com/levlavryniuk/sqlorm/model"
)

// builder is embedded by every statement builder. It accumulates the SQL
// text and the ordered parameter list, and renders filter trees through the
// active dialect.
type builder struct {
	sb     strings.Builder
	args   []any
	model  *model.Model
	d      Dialect
	quoter byte
	// qualifier, when set, prefixes every column reference with a quoted
	// table name. Joined statements set it to keep shared column names
	// unambiguous.
	qualifier string
}

func (b *builder) quote(name string) {
	b.sb.WriteByte(b.quoter)
	b.sb.WriteString(name)
	b.sb.WriteByte(b.quoter)
}

// buildColumn resolves a Go field name against the model and writes the
// quoted column name. An unknown name is a configuration error.
func (b *builder) buildColumn(fdName string) error {
	fd, ok := b.model.FieldMap[fdName]
	if !ok {
		return errs.NewErrUnknownField(fdName)
	}
	if b.qualifier != "" {
		b.quote(b.qualifier)
		b.sb.WriteByte('.')
	}
	b.quote(fd.ColName)
	return nil
}

// bindArg appends one parameter and writes its placeholder. Booleans pass
// through the dialect so SQLite binds 0/1 while Postgres binds natively.
func (b *builder) bindArg(val any) {
	if b.args == nil {
		b.args = make([]any, 0, 8)
	}
	if bv, ok := val.(bool); ok {
		val = b.d.boolValue(bv)
	}
	b.args = append(b.args, val)
	b.d.placeholder(&b.sb, len(b.args))
}

// addArgs appends parameters without writing placeholders, for fragments
// that carry their own markers (raw expressions).
func (b *builder) addArgs(args ...any) {
	if b.args == nil {
		b.args = make([]any, 0, 8)
	}
	for _, a := range args {
		if bv, ok := a.(bool); ok {
			a = b.d.boolValue(bv)
		}
		b.args = append(b.args, a)
	}
}

// buildPredicates renders a filter list joined by AND, in insertion order.
// Insertion order decides parameter positions, not the logical result.
func (b *builder) buildPredicates(ps []Predicate) error {
	for i, p := range ps {
		if i > 0 {
			b.sb.WriteString(" AND ")
		}
		if err := b.buildPredicate(p); err != nil {
			return err
		}
	}
	return nil
}

// buildPredicate renders one condition, enforcing operand arity per
// operator before anything reaches the driver.
func (b *builder) buildPredicate(p Predicate) error {
	if err := b.buildExpression(p.left); err != nil {
		return err
	}
	if p.op == "" {
		// Raw fragment used as a predicate, nothing to append.
		return nil
	}

	switch p.op {
	case opIsNull, opIsNotNull:
		b.sb.WriteByte(' ')
		b.sb.WriteString(p.op.String())
		return nil
	case opIN, opNotIN:
		vs, ok := p.right.(valueList)
		if !ok {
			return errs.NewErrUnsupportedExpressionType(p.right)
		}
		if len(vs.vals) == 0 {
			return errs.ErrEmptyInList
		}
		b.sb.WriteByte(' ')
		b.sb.WriteString(p.op.String())
		b.sb.WriteString(" (")
		for i, v := range vs.vals {
			if i > 0 {
				b.sb.WriteByte(',')
			}
			b.bindArg(v)
		}
		b.sb.WriteByte(')')
		return nil
	case opBetween, opNotBetween:
		vs, ok := p.right.(valueList)
		if !ok || len(vs.vals) != 2 {
			return errs.NewErrUnsupportedExpressionType(p.right)
		}
		b.sb.WriteByte(' ')
		b.sb.WriteString(p.op.String())
		b.sb.WriteByte(' ')
		b.bindArg(vs.vals[0])
		b.sb.WriteString(" AND ")
		b.bindArg(vs.vals[1])
		return nil
	default:
		b.sb.WriteByte(' ')
		b.sb.WriteString(p.op.String())
		b.sb.WriteByte(' ')
		return b.buildExpression(p.right)
	}
}

// buildExpression renders a statement fragment.
func (b *builder) buildExpression(e Expression) error {
	if e == nil {
		return nil
	}
	switch expr := e.(type) {
	case Column:
		return b.buildColumn(expr.name)
	case value:
		b.bindArg(expr.val)
	case RawExpr:
		b.sb.WriteString(expr.raw)
		if len(expr.args) != 0 {
			b.addArgs(expr.args...)
		}
	case MathExpr:
		if err := b.buildExpression(expr.left); err != nil {
			return err
		}
		b.sb.WriteString(expr.op.String())
		return b.buildExpression(expr.right)
	case Aggregate:
		return b.buildAggregate(expr, false)
	case Predicate:
		return b.buildPredicate(expr)
	default:
		return errs.NewErrUnsupportedExpressionType(expr)
	}
	return nil
}

func (b *builder) buildAggregate(a Aggregate, useAlias bool) error {
	b.sb.WriteString(a.fn)
	b.sb.WriteByte('(')
	if err := b.buildColumn(a.arg); err != nil {
		return err
	}
	b.sb.WriteByte(')')
	if useAlias {
		b.buildAs(a.alias)
	}
	return nil
}

func (b *builder) buildAs(alias string) {
	if alias != "" {
		b.sb.WriteString(" AS ")
		b.quote(alias)
	}
}
