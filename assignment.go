package sqlorm

// Assignable marks expressions usable in assignment position, i.e. in
// UPDATE SET and upsert DO UPDATE SET clauses.
type Assignable interface {
	assign()
}

type Assignment struct {
	column string
	val    Expression
}

// Assign e.g. Assign("FirstName", "Tom") -> SET "first_name"=?
func Assign(column string, val any) Assignment {
	v, ok := val.(Expression)
	if !ok {
		v = value{val: val}
	}
	return Assignment{
		column: column,
		val:    v,
	}
}

func (a Assignment) assign() {}
