package model

import "reflect"

// Option is a function type that modifies a Model.
type Option func(model *Model) error

// TimestampRole marks a column for automatic stamping by the persistence
// engine.
type TimestampRole uint8

const (
	RoleNone TimestampRole = iota
	RoleCreatedAt
	RoleUpdatedAt
	RoleDeletedAt
)

// RelationKind is the flavour of a relation descriptor.
type RelationKind uint8

const (
	BelongsTo RelationKind = iota
	HasMany
	HasOne
)

func (k RelationKind) String() string {
	switch k {
	case BelongsTo:
		return "belongs_to"
	case HasMany:
		return "has_many"
	case HasOne:
		return "has_one"
	}
	return "unknown"
}

// Model is the parsed metadata of one mapped struct. It is immutable after
// registration and safe for concurrent reads.
type Model struct {
	TableName string
	// Fields holds the column-mapped fields in struct declaration order.
	// Relation container fields are not columns and live in Relations.
	Fields    []*Field
	FieldMap  map[string]*Field // keyed by Go field name, e.g. ItemId
	ColumnMap map[string]*Field // keyed by column name, e.g. item_id
	PK        *Field
	Relations map[string]*Relation
}

// Field describes one mapped column.
type Field struct {
	ColName string
	GoName  string
	Type    reflect.Type
	// Index is the field's position within the struct.
	Index int
	// Offset is the field offset relative to the struct start address,
	// used by the unsafe valuer.
	Offset uintptr

	IsPK bool
	// AutoPK marks a database-assigned auto-increment key. The column is
	// omitted from INSERT statements and a zero value means "not yet
	// persisted". External keys (pk=external) are assigned by the caller
	// or generated client-side before the first save.
	AutoPK    bool
	IsUnique  bool
	Timestamp TimestampRole
}

// Relation describes a foreign-key navigation declared on a Rel[T] or
// RelMany[T] struct field.
type Relation struct {
	Kind RelationKind
	// Name is the relation name used by With and Load.
	Name string
	// FieldName is the Go field holding the loaded result.
	FieldName string
	// Target is the related entity's struct type.
	Target reflect.Type
	// LocalField and ForeignField are Go field names of the join columns,
	// LocalField on the owning struct, ForeignField on the target.
	LocalField   string
	ForeignField string
}

// RelationRef is implemented by the relation result containers so the
// registry can recognise them and discover the target type without
// depending on the root package.
type RelationRef interface {
	RelationTarget() reflect.Type
	RelationIsMany() bool
}

// Tag keys understood by the registry. Everything lives under the orm tag:
// orm:"column=item_id,pk" etc.
const (
	tagORMName = "orm"

	tagKeyColumn   = "column"
	tagKeyPK       = "pk"
	tagKeyUnique   = "unique"
	tagKeyCreated  = "created_at"
	tagKeyUpdated  = "updated_at"
	tagKeyDeleted  = "deleted_at"
	tagKeyRelation = "relation"
	tagKeyRelName  = "name"
	tagKeyRelOn    = "on"
	tagKeyIgnore   = "-"

	pkExternal = "external"
)

// TableName lets an entity override the table name derived from its
// struct name.
type TableName interface {
	TableName() string
}
