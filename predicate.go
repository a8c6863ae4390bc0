package sqlorm

type op string

const (
	opEQ   op = "="
	opNE   op = "<>"
	opGT   op = ">"
	opGE   op = ">="
	opLT   op = "<"
	opLE   op = "<="
	opLIKE op = "LIKE"

	opIN         op = "IN"
	opNotIN      op = "NOT IN"
	opBetween    op = "BETWEEN"
	opNotBetween op = "NOT BETWEEN"
	opIsNull     op = "IS NULL"
	opIsNotNull  op = "IS NOT NULL"

	opAND op = "AND"

	opAdd   op = "+"
	opMulti op = "*"
)

func (o op) String() string {
	return string(o)
}

// Expression is a fragment of a statement: a column, a bound value, a
// predicate or a raw snippet.
type Expression interface {
	expr()
}

// exprOf wraps plain values so that both columns and literals can appear on
// the right-hand side of a predicate.
func exprOf(e any) Expression {
	switch exp := e.(type) {
	case Expression:
		return exp
	default:
		return valueOf(exp)
	}
}

// Predicate is one filter condition. Predicates accumulated in a builder
// are combined with AND in insertion order; there is no OR combinator and
// no grouping.
type Predicate struct {
	left  Expression
	op    op
	right Expression
}

func (Predicate) expr() {}

// And combines two predicates. The order only affects parameter positions,
// not the logical result.
func (p Predicate) And(r Predicate) Predicate {
	return Predicate{
		left:  p,
		op:    opAND,
		right: r,
	}
}
