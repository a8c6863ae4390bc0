package sqlorm

// value is a single bound parameter.
type value struct {
	val any
}

func (v value) expr() {}

func valueOf(val any) value {
	return value{val: val}
}

// valueList carries the operands of multi-value operators. IN/NOT IN render
// it as a parenthesized placeholder list, BETWEEN as two placeholders.
type valueList struct {
	vals []any
}

func (v valueList) expr() {}

// RawExpr is a raw SQL fragment the ORM passes through untouched.
type RawExpr struct {
	raw  string
	args []any
}

func (r RawExpr) selectable() {}

func (r RawExpr) expr() {}

// AsPredicate lets a raw fragment stand in as a filter condition.
func (r RawExpr) AsPredicate() Predicate {
	return Predicate{
		left: r,
	}
}

// Raw creates a RawExpr.
func Raw(expr string, args ...any) RawExpr {
	return RawExpr{
		raw:  expr,
		args: args,
	}
}

type binaryExpr struct {
	left  Expression
	op    op
	right Expression
}

func (b binaryExpr) expr() {}

// MathExpr is an arithmetic expression over a column, used in UPDATE
// assignments such as Assign("Age", C("Age").Add(1)).
type MathExpr binaryExpr

func (m MathExpr) Add(val any) MathExpr {
	return MathExpr{
		left:  m,
		op:    opAdd,
		right: valueOf(val),
	}
}

func (m MathExpr) Multi(val any) MathExpr {
	return MathExpr{
		left:  m,
		op:    opMulti,
		right: valueOf(val),
	}
}

func (m MathExpr) expr() {}
