package reconcile

import (
	"sort"
	"strings"
)

// RecordKind identifies one of the reconciled entity types.
type RecordKind string

const (
	// KindOrder is a product order, keyed by order number.
	KindOrder RecordKind = "orders"
	// KindCustomer is a customer (client), keyed by name.
	KindCustomer RecordKind = "clients"
	// KindProduct is a product type, keyed by product code.
	KindProduct RecordKind = "products"
)

// DefaultKinds is the fixed order in which kinds are synchronized.
var DefaultKinds = []RecordKind{KindOrder, KindCustomer, KindProduct}

// IsValid reports whether k is a known record kind.
func (k RecordKind) IsValid() bool {
	switch k {
	case KindOrder, KindCustomer, KindProduct:
		return true
	default:
		return false
	}
}

// ParseKinds parses a comma separated list of kinds (e.g. "orders,clients").
// An empty string selects every kind. Unknown names are returned in unknown.
func ParseKinds(s string) (kinds []RecordKind, unknown []string) {
	if strings.TrimSpace(s) == "" {
		return append([]RecordKind(nil), DefaultKinds...), nil
	}
	for _, part := range strings.Split(s, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		k := RecordKind(name)
		if !k.IsValid() {
			unknown = append(unknown, name)
			continue
		}
		kinds = append(kinds, k)
	}
	return NormalizeKinds(kinds), unknown
}

// NormalizeKinds removes duplicates and sorts kinds into DefaultKinds order.
func NormalizeKinds(kinds []RecordKind) []RecordKind {
	rank := make(map[RecordKind]int, len(DefaultKinds))
	for i, k := range DefaultKinds {
		rank[k] = i
	}

	seen := make(map[RecordKind]struct{}, len(kinds))
	out := make([]RecordKind, 0, len(kinds))
	for _, k := range kinds {
		if _, ok := rank[k]; !ok {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.SliceStable(out, func(i, j int) bool { return rank[out[i]] < rank[out[j]] })
	return out
}

// Field names a kind-specific attribute of a record.
type Field string

const (
	FieldOrderNumber        Field = "order_number"
	FieldClientName         Field = "client_name"
	FieldClientCNPJ         Field = "client_cnpj"
	FieldProductCode        Field = "product_code"
	FieldProductDescription Field = "product_description"
	FieldProductFamily      Field = "product_family"
	FieldName               Field = "name"
	FieldCNPJ               Field = "cnpj"
	FieldCode               Field = "code"
	FieldDescription        Field = "description"
	FieldFamily             Field = "family"
)

// Fields holds the payload of a record keyed by field name.
type Fields map[Field]string

// Get returns the value of f, or "" when absent.
func (f Fields) Get(field Field) string {
	if f == nil {
		return ""
	}
	return f[field]
}

// Clone returns a shallow copy of f.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// SourceRecord is one ERP-side item of a given kind.
type SourceRecord struct {
	Kind   RecordKind `json:"kind"`
	Key    string     `json:"key"`
	Fields Fields     `json:"fields"`
}

// LocalRecord is one store-side item of a given kind.
type LocalRecord struct {
	ID     uint   `json:"id"`
	Key    string `json:"key"`
	Fields Fields `json:"fields"`
}

// Schema describes the natural key and the watched fields of a record kind.
// Fields outside Watched are never compared nor written on update.
type Schema struct {
	Kind     RecordKind
	KeyField Field
	Watched  []Field
}

var schemas = map[RecordKind]Schema{
	KindOrder: {
		Kind:     KindOrder,
		KeyField: FieldOrderNumber,
		Watched:  []Field{FieldClientName, FieldProductCode},
	},
	KindCustomer: {
		Kind:     KindCustomer,
		KeyField: FieldName,
		Watched:  []Field{FieldCNPJ},
	},
	KindProduct: {
		Kind:     KindProduct,
		KeyField: FieldCode,
		Watched:  []Field{FieldDescription, FieldFamily},
	},
}

// SchemaFor returns the schema registered for kind.
func SchemaFor(kind RecordKind) (Schema, bool) {
	s, ok := schemas[kind]
	return s, ok
}

// Action is the kind of change a MatchDecision asks for.
type Action string

const (
	ActionInsert    Action = "insert"
	ActionUpdate    Action = "update"
	ActionUnchanged Action = "unchanged"
	ActionSkip      Action = "skip"
)

// MatchDecision is the outcome of comparing one source record against the
// local snapshot.
type MatchDecision struct {
	Action Action
	Record SourceRecord

	// LocalID is set for updates and unchanged records.
	LocalID uint

	// Changed holds the watched fields with their new values (updates only).
	Changed Fields

	// Err is set for skipped records.
	Err error
}

// Plan is the matcher output for a single kind.
type Plan struct {
	Kind      RecordKind
	Fetched   int
	Decisions []MatchDecision

	// Duplicates counts source records dropped because their key was seen earlier.
	Duplicates int
}

// Count returns the number of decisions with the given action.
func (p *Plan) Count(action Action) int {
	n := 0
	for _, d := range p.Decisions {
		if d.Action == action {
			n++
		}
	}
	return n
}

// Phase is the state of one sync pass.
type Phase string

const (
	PhaseFetching Phase = "fetching"
	PhaseMatching Phase = "matching"
	PhaseApplying Phase = "applying"
	PhaseDone     Phase = "done"
	PhaseFailed   Phase = "failed"
)
