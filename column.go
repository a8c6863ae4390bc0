package sqlorm

// Column is a typed filter-builder handle for one mapped field, addressed
// by its Go field name: C("Id").EQ(12).
type Column struct {
	name  string
	alias string
}

func (c Column) expr() {}

func (c Column) selectable() {}

func (c Column) assign() {}

func C(name string) Column {
	return Column{name: name}
}

// As sets a projection alias. Value receiver so every call yields a fresh
// handle.
func (c Column) As(alias string) Column {
	return Column{
		name:  c.name,
		alias: alias,
	}
}

// EQ e.g. C("Id").EQ(12)
func (c Column) EQ(arg any) Predicate {
	return Predicate{
		left:  c,
		op:    opEQ,
		right: exprOf(arg),
	}
}

func (c Column) NE(arg any) Predicate {
	return Predicate{
		left:  c,
		op:    opNE,
		right: exprOf(arg),
	}
}

func (c Column) GT(arg any) Predicate {
	return Predicate{
		left:  c,
		op:    opGT,
		right: exprOf(arg),
	}
}

func (c Column) GE(arg any) Predicate {
	return Predicate{
		left:  c,
		op:    opGE,
		right: exprOf(arg),
	}
}

func (c Column) LT(arg any) Predicate {
	return Predicate{
		left:  c,
		op:    opLT,
		right: exprOf(arg),
	}
}

func (c Column) LE(arg any) Predicate {
	return Predicate{
		left:  c,
		op:    opLE,
		right: exprOf(arg),
	}
}

// Like passes its pattern through unmodified; wildcard syntax is the
// caller's responsibility.
func (c Column) Like(pattern any) Predicate {
	return Predicate{
		left:  c,
		op:    opLIKE,
		right: exprOf(pattern),
	}
}

// In renders a placeholder list sized to vals. An empty list is rejected at
// build time, before any statement is sent.
func (c Column) In(vals ...any) Predicate {
	return Predicate{
		left:  c,
		op:    opIN,
		right: valueList{vals: vals},
	}
}

func (c Column) NotIn(vals ...any) Predicate {
	return Predicate{
		left:  c,
		op:    opNotIN,
		right: valueList{vals: vals},
	}
}

func (c Column) Between(start, end any) Predicate {
	return Predicate{
		left:  c,
		op:    opBetween,
		right: valueList{vals: []any{start, end}},
	}
}

func (c Column) NotBetween(start, end any) Predicate {
	return Predicate{
		left:  c,
		op:    opNotBetween,
		right: valueList{vals: []any{start, end}},
	}
}

func (c Column) IsNull() Predicate {
	return Predicate{
		left: c,
		op:   opIsNull,
	}
}

func (c Column) IsNotNull() Predicate {
	return Predicate{
		left: c,
		op:   opIsNotNull,
	}
}

func (c Column) Add(delta any) MathExpr {
	return MathExpr{
		left:  c,
		op:    opAdd,
		right: valueOf(delta),
	}
}

func (c Column) Multi(delta any) MathExpr {
	return MathExpr{
		left:  c,
		op:    opMulti,
		right: valueOf(delta),
	}
}
