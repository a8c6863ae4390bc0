package sqlorm

import (
	"reflect"

	"github.com/levlavryniuk/sqlorm/model"
)

// Rel holds a single related row for belongs_to and has_one relations.
// It distinguishes three states: not loaded, loaded but absent, and loaded
// with a value. A relation that was never requested stays in the not-loaded
// state; it is never collapsed into "absent".
type Rel[T any] struct {
	loaded  bool
	present bool
	val     T
}

// Loaded reports whether the relation was ever fetched, eagerly or lazily.
func (r Rel[T]) Loaded() bool {
	return r.loaded
}

// Get returns the related row. The second return is false both when the
// relation is unloaded and when the foreign key matched no row; use Loaded
// to tell the two apart.
func (r Rel[T]) Get() (T, bool) {
	return r.val, r.loaded && r.present
}

// RelationTarget implements model.RelationRef.
func (Rel[T]) RelationTarget() reflect.Type {
	var t T
	return reflect.TypeOf(t)
}

// RelationIsMany implements model.RelationRef.
func (Rel[T]) RelationIsMany() bool { return false }

// SetRelated is invoked reflectively by the relationship loader.
// Application code should not call it.
func (r *Rel[T]) SetRelated(v any) {
	r.loaded = true
	r.present = true
	r.val = v.(T)
}

// SetAbsent marks the relation as loaded with no matching row.
func (r *Rel[T]) SetAbsent() {
	r.loaded = true
	r.present = false
	var zero T
	r.val = zero
}

// RelMany holds the related rows of a has_many relation. A nil, unloaded
// container is distinct from a loaded container with zero rows.
type RelMany[T any] struct {
	loaded bool
	items  []T
}

func (r RelMany[T]) Loaded() bool {
	return r.loaded
}

// Items returns the related rows in the order the database returned them.
// It returns nil when the relation was never loaded.
func (r RelMany[T]) Items() []T {
	return r.items
}

// RelationTarget implements model.RelationRef.
func (RelMany[T]) RelationTarget() reflect.Type {
	var t T
	return reflect.TypeOf(t)
}

// RelationIsMany implements model.RelationRef.
func (RelMany[T]) RelationIsMany() bool { return true }

// SetRelatedSlice is invoked reflectively by the relationship loader.
func (r *RelMany[T]) SetRelatedSlice(s any) {
	r.loaded = true
	if s == nil {
		r.items = []T{}
		return
	}
	r.items = s.([]T)
}

var (
	_ model.RelationRef = Rel[struct{}]{}
	_ model.RelationRef = RelMany[struct{}]{}
)

// Tracked carries an explicit persisted flag. Entities with externally
// assigned primary keys (UUID, natural string keys) should embed it so that
// Save can tell a fresh instance from a previously fetched one without
// guessing from the key value. The flag is set whenever an instance is
// decoded from the database or returned by Save.
type Tracked struct {
	persisted bool
}

// Persisted reports whether this instance originates from the database.
func (t *Tracked) Persisted() bool {
	return t.persisted
}

func (t *Tracked) markPersisted() {
	t.persisted = true
}

// persistedFlag is satisfied by entities embedding Tracked.
type persistedFlag interface {
	Persisted() bool
}

type persistMarker interface {
	markPersisted()
}

// markPersisted flags an entity as database-backed if it embeds Tracked.
func markPersisted(entity any) {
	if m, ok := entity.(persistMarker); ok {
		m.markPersisted()
	}
}
