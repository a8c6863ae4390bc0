package sqlorm

import (
	"context"

	"github.com/levlavryniuk/sqlorm/internal/errs"
)

// Updater builds an UPDATE with explicit assignments. Like Inserter it is
// the low-level surface; Saver drives it for whole-entity updates.
type Updater[T any] struct {
	builder
	core
	sess Session

	val     *T
	assigns []Assignable
	where   []Predicate

	q *Query
}

func NewUpdater[T any](sess Session) *Updater[T] {
	c := sess.getCore()
	return &Updater[T]{
		builder: builder{
			d:      c.dialect,
			quoter: c.dialect.quoter(),
		},
		core: c,
		sess: sess,
	}
}

// Update sets the entity the column assignables read their values from.
func (u *Updater[T]) Update(t *T) *Updater[T] {
	u.val = t
	return u
}

func (u *Updater[T]) Set(assigns ...Assignable) *Updater[T] {
	u.assigns = assigns
	return u
}

func (u *Updater[T]) Where(ps ...Predicate) *Updater[T] {
	u.where = append(u.where, ps...)
	return u
}

func (u *Updater[T]) Build() (*Query, error) {
	if u.q != nil {
		return u.q, nil
	}
	if len(u.assigns) == 0 {
		return nil, errs.ErrNoUpdatedColumns
	}

	var err error
	if u.model == nil {
		if u.model, err = u.r.Get(new(T)); err != nil {
			return nil, err
		}
	}
	if u.val == nil {
		u.val = new(T)
	}

	u.sb.WriteString("UPDATE ")
	u.quote(u.model.TableName)
	u.sb.WriteString(" SET ")
	val := u.valCreator(u.val, u.model)
	for i, a := range u.assigns {
		if i > 0 {
			u.sb.WriteByte(',')
		}
		switch assign := a.(type) {
		case Column:
			if err = u.buildColumn(assign.name); err != nil {
				return nil, err
			}
			u.sb.WriteByte('=')
			arg, err := val.Field(assign.name)
			if err != nil {
				return nil, err
			}
			u.bindArg(arg)
		case Assignment:
			if err = u.buildColumn(assign.column); err != nil {
				return nil, err
			}
			u.sb.WriteByte('=')
			if err = u.buildExpression(assign.val); err != nil {
				return nil, err
			}
		default:
			return nil, errs.NewErrUnsupportedAssignableType(a)
		}
	}

	if len(u.where) > 0 {
		u.sb.WriteString(" WHERE ")
		if err = u.buildPredicates(u.where); err != nil {
			return nil, err
		}
	}

	u.sb.WriteByte(';')
	u.q = &Query{
		SQL:  u.sb.String(),
		Args: u.args,
	}
	return u.q, nil
}

func (u *Updater[T]) Exec(ctx context.Context) Result {
	m, err := u.r.Get(new(T))
	if err != nil {
		return Result{err: err}
	}
	u.model = m
	res := u.run(ctx, &QueryContext{
		Type:    "UPDATE",
		Builder: u,
		Model:   m,
	}, func(ctx context.Context, qc *QueryContext) *QueryResult {
		return execHandler(ctx, u.sess, u)
	})
	return resultOf(res)
}
