package repo

import (
	"encoding/json"
)

// Record is implemented by every entity value object.
type Record interface {
	// RecordID returns the server-assigned business identifier.
	RecordID() int64

	// RecordUpdatedAt returns the server-side update timestamp, verbatim
	// ISO-8601-like text. Empty when the server never supplied one.
	RecordUpdatedAt() string
}

// RowScanner is satisfied by *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

// Codec maps one entity type between wire JSON, local rows and value
// objects. Implementations must be total over malformed wire input: decode
// degrades to defaults, never to an error, except when the raw payload is
// not an object at all.
type Codec[T Record] interface {
	// Values returns the row values for v in Descriptor.Columns order.
	Values(v T) []any

	// ScanRow reads one row in Descriptor.SelectBase column order (base
	// columns followed by join-resolved display columns).
	ScanRow(s RowScanner) (T, error)

	// Decode builds a value object from wire JSON, substituting defaults
	// for absent, null or misshapen fields.
	Decode(raw json.RawMessage) (T, error)

	// Apply merges wire JSON onto base: fields present in raw win, fields
	// absent or null keep the base value. This is the merge used for
	// partial server responses.
	Apply(base T, raw json.RawMessage) (T, error)

	// Encode renders v as a wire JSON body for create/update calls.
	Encode(v T) map[string]any
}

// Endpoints lists the remote paths for one entity. Empty paths mark
// operations the entity does not support (download-only reference data).
type Endpoints struct {
	Download string
	Create   string
	Update   string
	Flag     string
}

// Descriptor declares everything entity-specific the generic repository
// needs: table layout, search and preservation rules, endpoints and codec.
// One Descriptor value exists per entity type (see internal/entities).
type Descriptor[T Record] struct {
	// Name identifies the entity in logs, sync state and error messages.
	Name string

	// Table and Alias name the entity table and the alias SelectBase uses.
	Table string
	Alias string

	// IDColumn is the business identifier column (not the surrogate key).
	// CodeColumn holds the natural key, NameColumn the display name used
	// for default ordering.
	IDColumn   string
	CodeColumn string
	NameColumn string

	// Columns is the full writable column list, in Codec.Values order.
	Columns []string

	// Preserved columns survive overwrites unless the incoming record
	// carries a non-empty value (device token, creation timestamp).
	Preserved []string

	// SearchColumns are the alias-qualified columns covered by the
	// case-insensitive substring search, including join-resolved names.
	SearchColumns []string

	// SelectBase is the SELECT ... FROM ... [JOIN ...] prefix returning
	// Columns plus join display columns, with no WHERE clause.
	SelectBase string

	Endpoints Endpoints
	Codec     Codec[T]
}

func (d *Descriptor[T]) qualified(col string) string {
	if d.Alias == "" {
		return col
	}
	return d.Alias + "." + col
}

func (d *Descriptor[T]) preserved(col string) bool {
	for _, p := range d.Preserved {
		if p == col {
			return true
		}
	}
	return false
}
