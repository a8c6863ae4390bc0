package sqlorm

import (
	"context"
	"reflect"

	"github.com/levlavryniuk/sqlorm/internal/errs"
	"github.com/levlavryniuk/sqlorm/model"
)

// Load lazily fetches the named relations onto an already-loaded entity.
// Every call is an independent round trip; nothing is cached between
// calls. A foreign key with no matching row yields the loaded-absent state
// for single relations and a loaded-empty collection for has_many, never
// an error. Loading the same relation lazily or eagerly yields identical
// contents; only the fetch strategy differs.
func Load(ctx context.Context, sess Session, entity any, relations ...string) error {
	c := sess.getCore()
	m, err := c.r.Get(entity)
	if err != nil {
		return err
	}
	owner := reflect.ValueOf(entity)
	for _, name := range relations {
		rel, ok := m.Relations[name]
		if !ok {
			return errs.NewErrUnknownRelation(name)
		}
		if err = fetchRelation(ctx, sess, c, m, rel, []reflect.Value{owner}); err != nil {
			return err
		}
	}
	return nil
}

// staticQuery exposes an already-rendered statement to middlewares.
type staticQuery struct {
	q *Query
}

func (s staticQuery) Build() (*Query, error) {
	return s.q, nil
}

// fetchRelation runs one relation query for a set of owners and stitches
// the decoded rows back onto them by join-column value. With one owner
// this is the lazy path; with many it is the batched half of an eager
// has_many load, always sequenced after the base query that produced the
// owners.
func fetchRelation(ctx context.Context, sess Session, c core, ownerModel *model.Model, rel *model.Relation, owners []reflect.Value) error {
	tm, err := c.r.Get(reflect.New(rel.Target).Interface())
	if err != nil {
		return err
	}
	localFd, ok := ownerModel.FieldMap[rel.LocalField]
	if !ok {
		return errs.NewErrUnknownField(rel.LocalField)
	}
	foreignFd, ok := tm.FieldMap[rel.ForeignField]
	if !ok {
		return errs.NewErrUnknownField(rel.ForeignField)
	}

	keys := make([]any, len(owners))
	for i, o := range owners {
		keys[i] = o.Elem().Field(localFd.Index).Interface()
	}

	b := builder{
		d:      c.dialect,
		quoter: c.dialect.quoter(),
		model:  tm,
	}
	b.sb.WriteString("SELECT * FROM ")
	b.quote(tm.TableName)
	b.sb.WriteString(" WHERE ")
	b.quote(foreignFd.ColName)
	if len(keys) == 1 {
		b.sb.WriteString(" = ")
		b.bindArg(keys[0])
	} else {
		b.sb.WriteString(" IN (")
		for i, k := range keys {
			if i > 0 {
				b.sb.WriteByte(',')
			}
			b.bindArg(k)
		}
		b.sb.WriteByte(')')
	}
	b.sb.WriteByte(';')
	q := &Query{SQL: b.sb.String(), Args: b.args}

	res := c.run(ctx, &QueryContext{
		Type:    "SELECT",
		Builder: staticQuery{q: q},
		Model:   tm,
	}, func(ctx context.Context, qc *QueryContext) *QueryResult {
		rows, err := sess.queryContext(ctx, q.SQL, q.Args...)
		if err != nil {
			return &QueryResult{Err: errs.NewErrFailedStatement(q.SQL, err)}
		}
		defer rows.Close()

		// Related rows grouped by foreign-key value, preserving the
		// order the database returned them.
		grouped := make(map[any][]reflect.Value, len(owners))
		for rows.Next() {
			rp := reflect.New(rel.Target)
			if err := c.valCreator(rp.Interface(), tm).SetColumns(rows); err != nil {
				return &QueryResult{Err: err}
			}
			markPersisted(rp.Interface())
			key := rp.Elem().Field(foreignFd.Index).Interface()
			grouped[key] = append(grouped[key], rp.Elem())
		}
		if err := rows.Err(); err != nil {
			return &QueryResult{Err: err}
		}
		return &QueryResult{Result: grouped}
	})
	if res.Err != nil {
		return res.Err
	}
	grouped := res.Result.(map[any][]reflect.Value)

	for i, o := range owners {
		container := o.Elem().FieldByName(rel.FieldName).Addr()
		matches := grouped[keys[i]]
		switch rel.Kind {
		case model.HasMany:
			slice := reflect.MakeSlice(reflect.SliceOf(rel.Target), 0, len(matches))
			for _, m := range matches {
				slice = reflect.Append(slice, m)
			}
			container.MethodByName("SetRelatedSlice").
				Call([]reflect.Value{slice})
		default:
			if len(matches) == 0 {
				container.MethodByName("SetAbsent").Call(nil)
				continue
			}
			container.MethodByName("SetRelated").
				Call([]reflect.Value{matches[0]})
		}
	}
	return nil
}
