package sqlorm

import (
	"context"
	"reflect"

	"github.com/google/uuid"

	"github.com/levlavryniuk/sqlorm/internal/errs"
	"github.com/levlavryniuk/sqlorm/model"
)

// Saver is the persistence engine for one entity type. Save decides
// between INSERT and UPDATE, stamps timestamp-role columns and hands back
// the database-confirmed row; the caller's in-memory instance is never
// authoritative after a save. Delete removes a row by primary key,
// soft-deleting when the entity declares a deleted_at column.
type Saver[T any] struct {
	builder
	core
	sess Session

	entity *T
	insert bool
	remove bool

	q *Query
}

func NewSaver[T any](sess Session) *Saver[T] {
	c := sess.getCore()
	return &Saver[T]{
		builder: builder{
			d:      c.dialect,
			quoter: c.dialect.quoter(),
		},
		core: c,
		sess: sess,
	}
}

// Save persists the entity and returns the stored row, including
// database-assigned values such as auto-increment keys.
//
// Insert vs update: entities embedding Tracked carry an explicit
// persisted flag, which is the only reliable rule for externally assigned
// keys. Without the flag the zero-value rule applies: a zero primary key
// means insert. A zero uuid.UUID key on an external-key entity is filled
// with a fresh v4 before the insert.
func (s *Saver[T]) Save(ctx context.Context, entity *T) (*T, error) {
	if entity == nil {
		return nil, errs.ErrSaveNilEntity
	}
	var err error
	if s.model, err = s.r.Get(entity); err != nil {
		return nil, err
	}
	s.entity = entity

	elem := reflect.ValueOf(entity).Elem()
	s.insert = !s.persisted(entity, elem)

	now := reflect.ValueOf(s.clock())
	pk := s.model.PK
	if s.insert {
		if !pk.AutoPK && pk.Type == uuidType && elem.Field(pk.Index).IsZero() {
			elem.Field(pk.Index).Set(reflect.ValueOf(uuid.New()))
		}
		s.stamp(elem, now, model.RoleCreatedAt, model.RoleUpdatedAt)
	} else {
		s.stamp(elem, now, model.RoleUpdatedAt)
	}

	typ := "UPDATE"
	if s.insert {
		typ = "INSERT"
	}
	res := s.run(ctx, &QueryContext{
		Type:    typ,
		Builder: s,
		Model:   s.model,
	}, s.saveHandler)
	if res.Err != nil {
		return nil, res.Err
	}
	return res.Result.(*T), nil
}

// Delete removes the entity's row by primary key. An entity declaring a
// deleted_at timestamp column is soft-deleted: that column is stamped with
// the current clock instead of issuing DELETE, and the entity's field is
// set to the same instant. Entities without the column are removed
// physically.
func (s *Saver[T]) Delete(ctx context.Context, entity *T) error {
	if entity == nil {
		return errs.ErrDeleteNilEntity
	}
	var err error
	if s.model, err = s.r.Get(entity); err != nil {
		return err
	}
	s.entity = entity
	s.remove = true

	if fd := s.deletedField(); fd != nil {
		reflect.ValueOf(entity).Elem().Field(fd.Index).Set(reflect.ValueOf(s.clock()))
	}

	res := s.run(ctx, &QueryContext{
		Type:    "DELETE",
		Builder: s,
		Model:   s.model,
	}, s.deleteHandler)
	return res.Err
}

func (s *Saver[T]) deletedField() *model.Field {
	for _, fd := range s.model.Fields {
		if fd.Timestamp == model.RoleDeletedAt {
			return fd
		}
	}
	return nil
}

var uuidType = reflect.TypeOf(uuid.UUID{})

func (s *Saver[T]) persisted(entity *T, elem reflect.Value) bool {
	if pf, ok := any(entity).(persistedFlag); ok {
		return pf.Persisted()
	}
	return !elem.Field(s.model.PK.Index).IsZero()
}

func (s *Saver[T]) stamp(elem reflect.Value, now reflect.Value, roles ...model.TimestampRole) {
	for _, fd := range s.model.Fields {
		for _, role := range roles {
			if fd.Timestamp == role {
				elem.Field(fd.Index).Set(now)
			}
		}
	}
}

// Build renders the write statement: INSERT omitting an auto-increment
// key, or UPDATE of every non-key column filtered by the primary key.
// RETURNING * is appended when the dialect supports it. The delete path
// renders either the deleted_at stamp or a plain DELETE, never RETURNING.
func (s *Saver[T]) Build() (*Query, error) {
	if s.q != nil {
		return s.q, nil
	}

	elem := reflect.ValueOf(s.entity).Elem()
	pk := s.model.PK

	if s.remove {
		if fd := s.deletedField(); fd != nil {
			s.sb.WriteString("UPDATE ")
			s.quote(s.model.TableName)
			s.sb.WriteString(" SET ")
			s.quote(fd.ColName)
			s.sb.WriteByte('=')
			s.bindArg(elem.Field(fd.Index).Interface())
		} else {
			s.sb.WriteString("DELETE FROM ")
			s.quote(s.model.TableName)
		}
		s.sb.WriteString(" WHERE ")
		s.quote(pk.ColName)
		s.sb.WriteString(" = ")
		s.bindArg(elem.Field(pk.Index).Interface())
		s.sb.WriteByte(';')
		s.q = &Query{
			SQL:  s.sb.String(),
			Args: s.args,
		}
		return s.q, nil
	}

	if s.insert {
		s.sb.WriteString("INSERT INTO ")
		s.quote(s.model.TableName)
		s.sb.WriteString(" (")
		fields := s.insertFields()
		for i, fd := range fields {
			if i > 0 {
				s.sb.WriteByte(',')
			}
			s.quote(fd.ColName)
		}
		s.sb.WriteString(") VALUES (")
		for i, fd := range fields {
			if i > 0 {
				s.sb.WriteByte(',')
			}
			s.bindArg(elem.Field(fd.Index).Interface())
		}
		s.sb.WriteByte(')')
	} else {
		s.sb.WriteString("UPDATE ")
		s.quote(s.model.TableName)
		s.sb.WriteString(" SET ")
		first := true
		for _, fd := range s.model.Fields {
			if fd.IsPK || fd.Timestamp == model.RoleCreatedAt {
				continue
			}
			if !first {
				s.sb.WriteByte(',')
			}
			first = false
			s.quote(fd.ColName)
			s.sb.WriteByte('=')
			s.bindArg(elem.Field(fd.Index).Interface())
		}
		s.sb.WriteString(" WHERE ")
		s.quote(pk.ColName)
		s.sb.WriteString(" = ")
		s.bindArg(elem.Field(pk.Index).Interface())
	}

	if s.dialect.supportsReturning() {
		s.sb.WriteString(" RETURNING *")
	}
	s.sb.WriteByte(';')
	s.q = &Query{
		SQL:  s.sb.String(),
		Args: s.args,
	}
	return s.q, nil
}

func (s *Saver[T]) insertFields() []*model.Field {
	fields := make([]*model.Field, 0, len(s.model.Fields))
	for _, fd := range s.model.Fields {
		if fd.AutoPK {
			continue
		}
		fields = append(fields, fd)
	}
	return fields
}

func (s *Saver[T]) deleteHandler(ctx context.Context, qc *QueryContext) *QueryResult {
	q, err := s.Build()
	if err != nil {
		return &QueryResult{Err: err}
	}
	res, err := s.sess.execContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return &QueryResult{Err: errs.NewErrFailedStatement(q.SQL, err)}
	}
	return &QueryResult{Result: res}
}

func (s *Saver[T]) saveHandler(ctx context.Context, qc *QueryContext) *QueryResult {
	q, err := s.Build()
	if err != nil {
		return &QueryResult{Err: err}
	}

	if s.dialect.supportsReturning() {
		rows, err := s.sess.queryContext(ctx, q.SQL, q.Args...)
		if err != nil {
			return &QueryResult{Err: errs.NewErrFailedStatement(q.SQL, err)}
		}
		defer rows.Close()
		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return &QueryResult{Err: err}
			}
			return &QueryResult{Err: errs.ErrNoRows}
		}
		tp := new(T)
		if err := s.valCreator(tp, s.model).SetColumns(rows); err != nil {
			return &QueryResult{Err: err}
		}
		markPersisted(tp)
		return &QueryResult{Result: tp}
	}

	// No native RETURNING: execute the write, then re-fetch the row by
	// primary key so the caller still sees the database-computed values.
	res, err := s.sess.execContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return &QueryResult{Err: errs.NewErrFailedStatement(q.SQL, err)}
	}
	pk := s.model.PK
	var id any
	if s.insert && pk.AutoPK {
		if id, err = res.LastInsertId(); err != nil {
			return &QueryResult{Err: err}
		}
	} else {
		id = reflect.ValueOf(s.entity).Elem().Field(pk.Index).Interface()
	}
	tp, err := NewSelector[T](s.sess).Where(C(pk.GoName).EQ(id)).Get(ctx)
	if err != nil {
		return &QueryResult{Err: err}
	}
	return &QueryResult{Result: tp}
}
