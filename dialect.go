package sqlorm

import (
	"strconv"
	"strings"

	"github.com/levlavryniuk/sqlorm/internal/errs"
)

var (
	// Postgres renders $1,$2,... placeholders, native booleans and
	// RETURNING clauses.
	Postgres Dialect = &postgresDialect{}
	// SQLite3 renders ? placeholders and integer booleans. Writes are
	// followed by a re-fetch by primary key instead of RETURNING.
	SQLite3 Dialect = &sqlite3Dialect{}
)

// Dialect abstracts the rendering points where the two supported backends
// disagree. Everything else in SQL generation is backend-agnostic: the same
// logical query differs only at these methods.
type Dialect interface {
	// quoter is the identifier quoting character.
	quoter() byte
	// placeholder writes the bind marker for the idx-th parameter
	// (1-based).
	placeholder(sb *strings.Builder, idx int)
	// boolValue converts a boolean operand into the backend's bound
	// representation.
	boolValue(v bool) any
	// supportsReturning reports whether writes can carry RETURNING *.
	// When false the persistence engine re-fetches the row by primary
	// key after the write.
	supportsReturning() bool
	// buildDefaultLimit is written before a bare OFFSET on backends that
	// cannot express OFFSET without LIMIT.
	buildDefaultLimit(sb *strings.Builder)
	buildUpsert(b *builder, u *Upsert) error
}

// dialectByDriver maps database/sql driver names to dialects. Exactly one
// dialect is active per DB handle; an unknown driver is a configuration
// error raised before any connection is made.
func dialectByDriver(driver string) (Dialect, error) {
	switch driver {
	case "pgx", "postgres":
		return Postgres, nil
	case "sqlite3":
		return SQLite3, nil
	default:
		return nil, errs.NewErrUnknownDriver(driver)
	}
}

// standardSQL carries the rendering both backends share: double-quote
// identifier quoting and ON CONFLICT upserts.
type standardSQL struct{}

func (s *standardSQL) quoter() byte {
	return '"'
}

func (s *standardSQL) placeholder(sb *strings.Builder, _ int) {
	sb.WriteByte('?')
}

func (s *standardSQL) boolValue(v bool) any {
	return v
}

func (s *standardSQL) supportsReturning() bool {
	return false
}

func (s *standardSQL) buildDefaultLimit(*strings.Builder) {}

func (s *standardSQL) buildUpsert(b *builder, u *Upsert) error {
	b.sb.WriteString(" ON CONFLICT")
	if len(u.conflictColumns) > 0 {
		b.sb.WriteByte('(')
		for i, col := range u.conflictColumns {
			if i > 0 {
				b.sb.WriteByte(',')
			}
			if err := b.buildColumn(col); err != nil {
				return err
			}
		}
		b.sb.WriteByte(')')
	}
	b.sb.WriteString(" DO UPDATE SET ")

	for idx, assign := range u.assigns {
		if idx > 0 {
			b.sb.WriteByte(',')
		}
		switch a := assign.(type) {
		case Column:
			fd, ok := b.model.FieldMap[a.name]
			if !ok {
				return errs.NewErrUnknownField(a.name)
			}
			b.quote(fd.ColName)
			b.sb.WriteString("=excluded.")
			b.quote(fd.ColName)
		case Assignment:
			if err := b.buildColumn(a.column); err != nil {
				return err
			}
			b.sb.WriteByte('=')
			if err := b.buildExpression(a.val); err != nil {
				return err
			}
		default:
			return errs.NewErrUnsupportedAssignableType(a)
		}
	}
	return nil
}

type postgresDialect struct {
	standardSQL
}

func (p *postgresDialect) placeholder(sb *strings.Builder, idx int) {
	sb.WriteByte('$')
	sb.WriteString(strconv.Itoa(idx))
}

func (p *postgresDialect) supportsReturning() bool {
	return true
}

type sqlite3Dialect struct {
	standardSQL
}

func (s *sqlite3Dialect) boolValue(v bool) any {
	if v {
		return int64(1)
	}
	return int64(0)
}

// SQLite rejects OFFSET without LIMIT, so a bare offset gets LIMIT -1.
func (s *sqlite3Dialect) buildDefaultLimit(sb *strings.Builder) {
	sb.WriteString(" LIMIT -1")
}
