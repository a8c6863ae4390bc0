package model

import (
	"reflect"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/levlavryniuk/sqlorm/internal/errs"
)

type Registry interface {
	Get(val any) (*Model, error)
	Register(val any, opts ...Option) (*Model, error)
}

// registry caches parsed models keyed by reflect.Type. sync.Map fits the
// access pattern: written once per type, read on every query.
type registry struct {
	models sync.Map
}

func NewRegistry() Registry {
	return &registry{}
}

// Get fetches the model for a value, parsing and caching it on first use.
func (r *registry) Get(val any) (*Model, error) {
	typ := reflect.TypeOf(val)
	m, ok := r.models.Load(typ)
	if ok {
		return m.(*Model), nil
	}
	return r.Register(val)
}

// Register parses a model, applies the options and stores it.
// Parsing failures are configuration errors: they surface here, before any
// statement is ever sent to a database.
func (r *registry) Register(val any, opts ...Option) (*Model, error) {
	m, err := r.parseModel(val)
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if err = opt(m); err != nil {
			return nil, err
		}
	}
	r.models.Store(reflect.TypeOf(val), m)
	return m, nil
}

var timeType = reflect.TypeOf(time.Time{})

// parseModel reads the struct tags of a *T and builds its Model.
func (r *registry) parseModel(val any) (*Model, error) {
	typ := reflect.TypeOf(val)
	// Only a one-level pointer to struct is accepted: *User, not User or **User.
	if typ.Kind() != reflect.Ptr || typ.Elem().Kind() != reflect.Struct {
		return nil, errs.ErrPointerOnly
	}
	typ = typ.Elem()

	numField := typ.NumField()
	m := &Model{
		Fields:    make([]*Field, 0, numField),
		FieldMap:  make(map[string]*Field, numField),
		ColumnMap: make(map[string]*Field, numField),
		Relations: make(map[string]*Relation, 2),
	}

	for i := 0; i < numField; i++ {
		fdStruct := typ.Field(i)
		tags, err := r.parseTag(fdStruct.Tag)
		if err != nil {
			return nil, err
		}
		if _, ok := tags[tagKeyIgnore]; ok {
			continue
		}

		if kind, ok := tags[tagKeyRelation]; ok {
			rel, err := r.parseRelation(fdStruct, kind, tags)
			if err != nil {
				return nil, err
			}
			m.Relations[rel.Name] = rel
			continue
		}

		// Anonymous helper embeds (e.g. the persisted-flag tracker) are
		// not columns unless explicitly tagged with a column name.
		if fdStruct.Anonymous && tags[tagKeyColumn] == "" {
			continue
		}

		colName := tags[tagKeyColumn]
		if colName == "" {
			colName = underscoreName(fdStruct.Name)
		}

		f := &Field{
			ColName: colName,
			GoName:  fdStruct.Name,
			Type:    fdStruct.Type,
			Index:   i,
			Offset:  fdStruct.Offset,
		}

		if pk, ok := tags[tagKeyPK]; ok {
			f.IsPK = true
			f.IsUnique = true
			f.AutoPK = pk != pkExternal
			if m.PK != nil {
				return nil, errs.NewErrMultiplePrimaryKeys(typ.Name())
			}
			m.PK = f
		}
		if _, ok := tags[tagKeyUnique]; ok {
			f.IsUnique = true
		}
		switch {
		case hasTag(tags, tagKeyCreated):
			f.Timestamp = RoleCreatedAt
		case hasTag(tags, tagKeyUpdated):
			f.Timestamp = RoleUpdatedAt
		case hasTag(tags, tagKeyDeleted):
			f.Timestamp = RoleDeletedAt
		}
		if f.Timestamp != RoleNone && f.Type != timeType {
			return nil, errs.NewErrInvalidTimestampField(f.GoName)
		}

		m.Fields = append(m.Fields, f)
		m.FieldMap[fdStruct.Name] = f
		m.ColumnMap[colName] = f
	}

	if m.PK == nil {
		return nil, errs.NewErrMissingPrimaryKey(typ.Name())
	}

	// Join columns named in relation descriptors must exist. A typo here
	// is a programming error and must never reach a live database.
	for _, rel := range m.Relations {
		if _, ok := m.FieldMap[rel.LocalField]; !ok {
			return nil, errs.NewErrUnknownField(rel.LocalField)
		}
	}

	var tableName string
	if tn, ok := val.(TableName); ok {
		tableName = tn.TableName()
	}
	if tableName == "" {
		tableName = underscoreName(typ.Name())
	}
	m.TableName = tableName

	return m, nil
}

// parseRelation reads a relation container field such as
//
//	Posts RelMany[Post] `orm:"relation=has_many,on=Id:UserId"`
//
// The target type comes from the container's type parameter; the join
// columns from the on tag.
func (r *registry) parseRelation(fd reflect.StructField, kind string, tags map[string]string) (*Relation, error) {
	ref, ok := reflect.Zero(fd.Type).Interface().(RelationRef)
	if !ok {
		return nil, errs.NewErrInvalidRelationField(fd.Name)
	}

	rel := &Relation{
		FieldName: fd.Name,
		Target:    ref.RelationTarget(),
	}

	switch kind {
	case "belongs_to":
		rel.Kind = BelongsTo
	case "has_many":
		rel.Kind = HasMany
	case "has_one":
		rel.Kind = HasOne
	default:
		return nil, errs.NewErrInvalidTagContent(tagKeyRelation + "=" + kind)
	}
	if (rel.Kind == HasMany) != ref.RelationIsMany() {
		return nil, errs.NewErrInvalidRelationField(fd.Name)
	}

	rel.Name = tags[tagKeyRelName]
	if rel.Name == "" {
		rel.Name = underscoreName(fd.Name)
	}

	on := tags[tagKeyRelOn]
	parts := strings.Split(on, ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, errs.NewErrInvalidRelationOn(on)
	}
	rel.LocalField, rel.ForeignField = parts[0], parts[1]

	return rel, nil
}

// parseTag splits an orm struct tag into key-value pairs. Bare items such
// as pk or unique map to an empty value.
func (r *registry) parseTag(tag reflect.StructTag) (map[string]string, error) {
	ormTag := tag.Get(tagORMName)
	if ormTag == "" {
		// Return an empty map so that the caller doesn't need to check for nil.
		return map[string]string{}, nil
	}

	res := make(map[string]string, 4)
	pairs := strings.Split(ormTag, ",")
	for _, pair := range pairs {
		kv := strings.SplitN(pair, "=", 2)
		key := strings.TrimSpace(kv[0])
		if key == "" {
			return nil, errs.NewErrInvalidTagContent(pair)
		}
		switch len(kv) {
		case 1:
			res[key] = ""
		case 2:
			if kv[1] == "" {
				return nil, errs.NewErrInvalidTagContent(pair)
			}
			res[key] = kv[1]
		}
	}
	return res, nil
}

func hasTag(tags map[string]string, key string) bool {
	_, ok := tags[key]
	return ok
}

// underscoreName converts a Go name to snake case: UserName -> user_name.
func underscoreName(name string) string {
	var buf []byte
	for i, v := range name {
		if unicode.IsUpper(v) {
			if i != 0 {
				buf = append(buf, '_')
			}
			buf = append(buf, byte(unicode.ToLower(v)))
		} else {
			buf = append(buf, byte(v))
		}
	}
	return string(buf)
}

// WithTableName overrides the table name of a Model.
func WithTableName(tableName string) Option {
	return func(model *Model) error {
		model.TableName = tableName
		return nil
	}
}

// WithColumnName overrides the column name of one field.
func WithColumnName(field, columnName string) Option {
	return func(model *Model) error {
		fd, ok := model.FieldMap[field]
		if !ok {
			return errs.NewErrUnknownField(field)
		}
		delete(model.ColumnMap, fd.ColName)
		fd.ColName = columnName
		model.ColumnMap[columnName] = fd
		return nil
	}
}
