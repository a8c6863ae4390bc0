package sqlorm

import (
	"context"
	"database/sql"
	"reflect"

	"github.com/levlavryniuk/sqlorm/internal/errs"
	"github.com/levlavryniuk/sqlorm/internal/valuer"
	"github.com/levlavryniuk/sqlorm/model"
)

// Selector builds and executes one SELECT statement. A Selector is owned by
// a single call chain and consumed by its terminal call; it is not safe for
// concurrent use and must not be reused.
type Selector[T any] struct {
	builder
	core
	sess Session

	table   string
	where   []Predicate
	having  []Predicate
	columns []Selectable
	groupBy []Column
	orderBy []OrderBy
	offset  int
	limit   int

	withRels []string
	// joins and batch are resolved relation descriptors, split by fetch
	// strategy: single relations join, collections batch.
	joins []*eagerJoin
	batch []*eagerJoin

	q        *Query
	executed bool
}

// eagerJoin pairs a relation descriptor with its target's metadata.
type eagerJoin struct {
	rel  *model.Relation
	meta *model.Model
}

func NewSelector[T any](sess Session) *Selector[T] {
	c := sess.getCore()
	return &Selector[T]{
		builder: builder{
			d:      c.dialect,
			quoter: c.dialect.quoter(),
		},
		core: c,
		sess: sess,
	}
}

// Select narrows the projection. Terminal calls must then use ScanOne or
// ScanAll with a decode target matching column order and count.
func (s *Selector[T]) Select(cols ...Selectable) *Selector[T] {
	s.columns = cols
	return s
}

// From overrides the table fragment verbatim; the caller quotes it.
func (s *Selector[T]) From(tbl string) *Selector[T] {
	s.table = tbl
	return s
}

// Where appends filter conditions; successive calls accumulate, all joined
// with AND in insertion order.
func (s *Selector[T]) Where(ps ...Predicate) *Selector[T] {
	s.where = append(s.where, ps...)
	return s
}

func (s *Selector[T]) GroupBy(cols ...Column) *Selector[T] {
	s.groupBy = cols
	return s
}

func (s *Selector[T]) Having(ps ...Predicate) *Selector[T] {
	s.having = append(s.having, ps...)
	return s
}

func (s *Selector[T]) OrderBy(obs ...OrderBy) *Selector[T] {
	s.orderBy = obs
	return s
}

func (s *Selector[T]) Limit(n int) *Selector[T] {
	s.limit = n
	return s
}

func (s *Selector[T]) Offset(n int) *Selector[T] {
	s.offset = n
	return s
}

// With marks relations for eager loading. belongs_to and has_one render as
// LEFT JOINs on the statement itself; has_many issues one batched follow-up
// query per relation after the base rows are decoded.
func (s *Selector[T]) With(relations ...string) *Selector[T] {
	s.withRels = append(s.withRels, relations...)
	return s
}

// Build renders the statement once and caches it, so middlewares can call
// Build without re-rendering.
func (s *Selector[T]) Build() (*Query, error) {
	if s.q != nil {
		return s.q, nil
	}

	var err error
	if s.model == nil {
		if s.model, err = s.r.Get(new(T)); err != nil {
			return nil, err
		}
	}
	if err = s.resolveRelations(); err != nil {
		return nil, err
	}
	// A narrowed projection starves the relation decode: joins lose their
	// column blocks, batches lose the local key values. Both are rejected.
	if (len(s.joins) > 0 || len(s.batch) > 0) && len(s.columns) > 0 {
		return nil, errs.ErrSelectWithEager
	}
	if len(s.joins) > 0 {
		// Joined columns are decoded positionally, so base columns are
		// qualified to keep shared names unambiguous.
		s.qualifier = s.model.TableName
	}

	s.sb.WriteString("SELECT ")
	if err = s.buildColumns(); err != nil {
		return nil, err
	}
	s.sb.WriteString(" FROM ")
	if s.table == "" {
		s.quote(s.model.TableName)
	} else {
		s.sb.WriteString(s.table)
	}

	for _, j := range s.joins {
		if err = s.buildJoin(j); err != nil {
			return nil, err
		}
	}

	if len(s.where) > 0 {
		s.sb.WriteString(" WHERE ")
		if err = s.buildPredicates(s.where); err != nil {
			return nil, err
		}
	}

	if len(s.groupBy) > 0 {
		s.sb.WriteString(" GROUP BY ")
		for i, c := range s.groupBy {
			if i > 0 {
				s.sb.WriteByte(',')
			}
			if err = s.buildColumn(c.name); err != nil {
				return nil, err
			}
		}
	}

	if len(s.having) > 0 {
		s.sb.WriteString(" HAVING ")
		if err = s.buildPredicates(s.having); err != nil {
			return nil, err
		}
	}

	if len(s.orderBy) > 0 {
		s.sb.WriteString(" ORDER BY ")
		if err = s.buildOrderBy(); err != nil {
			return nil, err
		}
	}

	if s.limit > 0 {
		s.sb.WriteString(" LIMIT ")
		s.bindArg(s.limit)
	} else if s.offset > 0 {
		s.dialect.buildDefaultLimit(&s.sb)
	}
	if s.offset > 0 {
		s.sb.WriteString(" OFFSET ")
		s.bindArg(s.offset)
	}

	s.sb.WriteByte(';')
	s.q = &Query{
		SQL:  s.sb.String(),
		Args: s.args,
	}
	return s.q, nil
}

// resolveRelations maps With names onto relation descriptors and fetches
// the target models. Unknown names fail here, before execution.
func (s *Selector[T]) resolveRelations() error {
	for _, name := range s.withRels {
		rel, ok := s.model.Relations[name]
		if !ok {
			return errs.NewErrUnknownRelation(name)
		}
		meta, err := s.r.Get(reflect.New(rel.Target).Interface())
		if err != nil {
			return err
		}
		j := &eagerJoin{rel: rel, meta: meta}
		if rel.Kind == model.HasMany {
			s.batch = append(s.batch, j)
		} else {
			s.joins = append(s.joins, j)
		}
	}
	return nil
}

func (s *Selector[T]) buildColumns() error {
	if len(s.joins) > 0 {
		// Explicit qualified projection: all base columns first, then
		// each joined relation's columns, in metadata order. The decode
		// side relies on exactly this order.
		for i, fd := range s.model.Fields {
			if i > 0 {
				s.sb.WriteByte(',')
			}
			s.quote(s.model.TableName)
			s.sb.WriteByte('.')
			s.quote(fd.ColName)
		}
		for _, j := range s.joins {
			for _, fd := range j.meta.Fields {
				s.sb.WriteByte(',')
				s.quote(j.meta.TableName)
				s.sb.WriteByte('.')
				s.quote(fd.ColName)
			}
		}
		return nil
	}

	if len(s.columns) == 0 {
		s.sb.WriteByte('*')
		return nil
	}
	for i, c := range s.columns {
		if i > 0 {
			s.sb.WriteByte(',')
		}
		switch val := c.(type) {
		case Column:
			if err := s.buildColumn(val.name); err != nil {
				return err
			}
			s.buildAs(val.alias)
		case Aggregate:
			if err := s.buildAggregate(val, true); err != nil {
				return err
			}
		case RawExpr:
			s.sb.WriteString(val.raw)
			if len(val.args) != 0 {
				s.addArgs(val.args...)
			}
		default:
			return errs.NewErrUnsupportedSelectable(c)
		}
	}
	return nil
}

func (s *Selector[T]) buildJoin(j *eagerJoin) error {
	local, ok := s.model.FieldMap[j.rel.LocalField]
	if !ok {
		return errs.NewErrUnknownField(j.rel.LocalField)
	}
	foreign, ok := j.meta.FieldMap[j.rel.ForeignField]
	if !ok {
		return errs.NewErrUnknownField(j.rel.ForeignField)
	}
	s.sb.WriteString(" LEFT JOIN ")
	s.quote(j.meta.TableName)
	s.sb.WriteString(" ON ")
	s.quote(s.model.TableName)
	s.sb.WriteByte('.')
	s.quote(local.ColName)
	s.sb.WriteString(" = ")
	s.quote(j.meta.TableName)
	s.sb.WriteByte('.')
	s.quote(foreign.ColName)
	return nil
}

func (s *Selector[T]) buildOrderBy() error {
	for i, ob := range s.orderBy {
		if i > 0 {
			s.sb.WriteByte(',')
		}
		if err := s.buildColumn(ob.col); err != nil {
			return err
		}
		s.sb.WriteByte(' ')
		s.sb.WriteString(ob.order)
	}
	return nil
}

// Get executes the statement and decodes the first row. Zero rows is the
// absent-value outcome ErrNoRows, distinct from a failed statement.
func (s *Selector[T]) Get(ctx context.Context) (*T, error) {
	if s.executed {
		return nil, errs.ErrBuilderConsumed
	}
	s.executed = true

	var err error
	if s.model == nil {
		if s.model, err = s.r.Get(new(T)); err != nil {
			return nil, err
		}
	}

	res := s.run(ctx, &QueryContext{
		Type:    "SELECT",
		Builder: s,
		Model:   s.model,
	}, s.getHandler)
	if res.Err != nil {
		return nil, res.Err
	}
	return res.Result.(*T), nil
}

func (s *Selector[T]) getHandler(ctx context.Context, qc *QueryContext) *QueryResult {
	tps, err := s.fetch(ctx, true)
	if err != nil {
		return &QueryResult{Err: err}
	}
	if len(tps) == 0 {
		return &QueryResult{Err: errs.ErrNoRows}
	}
	return &QueryResult{Result: tps[0]}
}

// GetMulti executes the statement and decodes every row, in the order the
// database returned them. No implicit ORDER BY is added.
func (s *Selector[T]) GetMulti(ctx context.Context) ([]*T, error) {
	if s.executed {
		return nil, errs.ErrBuilderConsumed
	}
	s.executed = true

	var err error
	if s.model == nil {
		if s.model, err = s.r.Get(new(T)); err != nil {
			return nil, err
		}
	}

	res := s.run(ctx, &QueryContext{
		Type:    "SELECT",
		Builder: s,
		Model:   s.model,
	}, func(ctx context.Context, qc *QueryContext) *QueryResult {
		tps, err := s.fetch(ctx, false)
		if err != nil {
			return &QueryResult{Err: err}
		}
		return &QueryResult{Result: tps}
	})
	if res.Err != nil {
		return nil, res.Err
	}
	return res.Result.([]*T), nil
}

// fetch runs the base statement, decodes rows and resolves eager
// relations. The batched has_many queries run strictly after the base
// result page is consumed; they depend on the decoded key values.
func (s *Selector[T]) fetch(ctx context.Context, first bool) ([]*T, error) {
	q, err := s.Build()
	if err != nil {
		return nil, err
	}
	rows, err := s.sess.queryContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, errs.NewErrFailedStatement(q.SQL, err)
	}

	var tps []*T
	for rows.Next() {
		var tp *T
		if len(s.joins) > 0 {
			tp, err = s.scanJoinedRow(rows)
		} else {
			tp = new(T)
			err = s.valCreator(tp, s.model).SetColumns(rows)
		}
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		markPersisted(tp)
		tps = append(tps, tp)
		if first {
			break
		}
	}
	closeErr := rows.Close()
	if err = rows.Err(); err != nil {
		return nil, err
	}
	if closeErr != nil {
		return nil, closeErr
	}

	if len(tps) > 0 && len(s.batch) > 0 {
		owners := make([]reflect.Value, len(tps))
		for i, tp := range tps {
			owners[i] = reflect.ValueOf(tp)
		}
		for _, j := range s.batch {
			if err = fetchRelation(ctx, s.sess, s.core, s.model, j.rel, owners); err != nil {
				return nil, err
			}
		}
	}
	return tps, nil
}

// scanJoinedRow decodes one row of a joined statement: the base columns
// positionally into a fresh T, then each relation's column block into its
// container. A LEFT JOIN with no match comes back as an all-NULL block and
// becomes the loaded-absent state.
func (s *Selector[T]) scanJoinedRow(rows *sql.Rows) (*T, error) {
	dest := make([]any, 0, len(s.model.Fields))
	baseVals := make([]reflect.Value, len(s.model.Fields))
	for i, fd := range s.model.Fields {
		v := reflect.New(fd.Type)
		baseVals[i] = v
		dest = append(dest, v.Interface())
	}
	joinVals := make([][]any, len(s.joins))
	for i, j := range s.joins {
		joinVals[i] = make([]any, len(j.meta.Fields))
		for k := range j.meta.Fields {
			var raw any
			joinVals[i][k] = &raw
		}
		dest = append(dest, joinVals[i]...)
	}

	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}

	tp := new(T)
	elem := reflect.ValueOf(tp).Elem()
	for i, fd := range s.model.Fields {
		elem.Field(fd.Index).Set(baseVals[i].Elem())
	}

	for i, j := range s.joins {
		container := elem.FieldByName(j.rel.FieldName).Addr()
		if *(joinVals[i][pkIndex(j.meta)].(*any)) == nil {
			container.MethodByName("SetAbsent").Call(nil)
			continue
		}
		rp := reflect.New(j.rel.Target)
		for k, fd := range j.meta.Fields {
			if err := valuer.ConvertAssign(rp.Elem().Field(fd.Index), *(joinVals[i][k].(*any))); err != nil {
				return nil, err
			}
		}
		markPersisted(rp.Interface())
		container.MethodByName("SetRelated").
			Call([]reflect.Value{reflect.ValueOf(rp.Elem().Interface())})
	}
	return tp, nil
}

// pkIndex is the position of the primary key within the metadata's ordered
// field list; NULL there means the joined row half is missing.
func pkIndex(m *model.Model) int {
	for i, fd := range m.Fields {
		if fd.IsPK {
			return i
		}
	}
	return 0
}

// ScanOne executes the statement and decodes the first row positionally
// into dest, a pointer to a struct whose fields match the projection in
// order and count. Zero rows yields ErrNoRows.
func (s *Selector[T]) ScanOne(ctx context.Context, dest any) error {
	if s.executed {
		return errs.ErrBuilderConsumed
	}
	s.executed = true

	var err error
	if s.model == nil {
		if s.model, err = s.r.Get(new(T)); err != nil {
			return err
		}
	}

	res := s.run(ctx, &QueryContext{
		Type:    "SELECT",
		Builder: s,
		Model:   s.model,
	}, func(ctx context.Context, qc *QueryContext) *QueryResult {
		return &QueryResult{Err: s.scanInto(ctx, dest, true)}
	})
	return res.Err
}

// ScanAll is ScanOne over every row; dest is a pointer to a slice of
// structs.
func (s *Selector[T]) ScanAll(ctx context.Context, dest any) error {
	if s.executed {
		return errs.ErrBuilderConsumed
	}
	s.executed = true

	var err error
	if s.model == nil {
		if s.model, err = s.r.Get(new(T)); err != nil {
			return err
		}
	}

	res := s.run(ctx, &QueryContext{
		Type:    "SELECT",
		Builder: s,
		Model:   s.model,
	}, func(ctx context.Context, qc *QueryContext) *QueryResult {
		return &QueryResult{Err: s.scanInto(ctx, dest, false)}
	})
	return res.Err
}

func (s *Selector[T]) scanInto(ctx context.Context, dest any, first bool) error {
	if len(s.withRels) > 0 {
		return errs.ErrSelectWithEager
	}
	q, err := s.Build()
	if err != nil {
		return err
	}

	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Ptr {
		return errs.NewErrUnsupportedExpressionType(dest)
	}

	elemType := dv.Type().Elem()
	if !first {
		if elemType.Kind() != reflect.Slice {
			return errs.NewErrUnsupportedExpressionType(dest)
		}
		elemType = elemType.Elem()
	}
	if elemType.Kind() != reflect.Struct {
		return errs.NewErrUnsupportedExpressionType(dest)
	}

	rows, err := s.sess.queryContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return errs.NewErrFailedStatement(q.SQL, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	if len(cols) != elemType.NumField() {
		return errs.NewErrDecodeColumnCount(elemType.NumField(), len(cols))
	}

	n := 0
	for rows.Next() {
		row := reflect.New(elemType).Elem()
		ptrs := make([]any, elemType.NumField())
		for i := 0; i < elemType.NumField(); i++ {
			ptrs[i] = row.Field(i).Addr().Interface()
		}
		if err = rows.Scan(ptrs...); err != nil {
			return err
		}
		n++
		if first {
			dv.Elem().Set(row)
			return nil
		}
		dv.Elem().Set(reflect.Append(dv.Elem(), row))
	}
	if err = rows.Err(); err != nil {
		return err
	}
	if first && n == 0 {
		return errs.ErrNoRows
	}
	return nil
}

// Selectable marks what may appear in a projection: columns, aggregates
// and raw expressions.
type Selectable interface {
	selectable()
}

type OrderBy struct {
	col   string
	order string
}

func ASC(col string) OrderBy {
	return OrderBy{
		col:   col,
		order: "ASC",
	}
}

func Desc(col string) OrderBy {
	return OrderBy{
		col:   col,
		order: "DESC",
	}
}
