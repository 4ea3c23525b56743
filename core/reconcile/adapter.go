package reconcile

import "context"

// Source fetches authoritative records from the ERP for one kind.
// Any returned error is treated as a transport failure of the whole pass.
type Source interface {
	Fetch(ctx context.Context, kind RecordKind) ([]SourceRecord, error)
}

// Store is the local persistent store the engine reconciles into.
// Implementations must serve every kind in DefaultKinds.
type Store interface {
	// FindAll returns the full local collection of kind. It is called once per
	// pass and its result is used as the snapshot for matching.
	FindAll(ctx context.Context, kind RecordKind) ([]LocalRecord, error)

	// FindByKey returns the local record with the given natural key, or nil.
	FindByKey(ctx context.Context, kind RecordKind, key string) (*LocalRecord, error)

	// Insert stores a new record and returns its store-assigned id.
	Insert(ctx context.Context, kind RecordKind, rec SourceRecord) (uint, error)

	// Update overwrites only the given fields of the record with id.
	Update(ctx context.Context, kind RecordKind, id uint, fields Fields) error
}

// SourceFunc adapts a plain function to the Source interface.
type SourceFunc func(ctx context.Context, kind RecordKind) ([]SourceRecord, error)

// Fetch calls f.
func (f SourceFunc) Fetch(ctx context.Context, kind RecordKind) ([]SourceRecord, error) {
	return f(ctx, kind)
}
