package reconcile

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncResult_Record(t *testing.T) {
	res := NewResult(KindProduct)

	res.Record(RecordOutcome{Kind: KindProduct, Key: "P1", Action: ActionInsert})
	res.Record(RecordOutcome{Kind: KindProduct, Key: "P2", Action: ActionUpdate})
	res.Record(RecordOutcome{Kind: KindProduct, Key: "P3", Action: ActionUnchanged})
	res.Record(RecordOutcome{Kind: KindProduct, Key: "P4", Action: ActionInsert, Err: errors.New("boom")})
	res.Record(RecordOutcome{Kind: KindProduct, Key: "", Action: ActionSkip, Err: &ValidationError{Kind: KindProduct, Reason: ErrMissingKey}})

	assert.Equal(t, 1, res.InsertedCount)
	assert.Equal(t, 1, res.UpdatedCount)
	assert.Equal(t, 1, res.UnchangedCount)
	assert.Equal(t, 1, res.SkippedCount)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, "P4", res.Errors[0].Key)
	assert.Equal(t, ClassApply, res.Errors[0].Class)
	assert.Equal(t, ClassValidation, res.Errors[1].Class)
	assert.True(t, res.OverallSuccess)
	assert.NoError(t, res.Err())
}

func TestSyncResult_PassErrors(t *testing.T) {
	transport := &TransportError{Kind: KindOrder, Attempts: 2, Err: errors.New("timeout")}

	orders := NewResult(KindOrder)
	orders.Record(RecordOutcome{Kind: KindOrder, Key: "1042", Action: ActionInsert, Err: errors.New("duplicate")})
	orders.Fail(KindOrder, transport)
	readers := NewResult("readers")
	readers.Fail("readers", ErrUnknownKind)

	merged := Merge(orders, readers)

	errs := merged.PassErrors()
	require.Len(t, errs, 2)
	assert.Same(t, transport, errs[0])
	assert.ErrorIs(t, errs[1], ErrUnknownKind)
	assert.ErrorIs(t, merged.Err(), ErrUnknownKind)
	assert.Empty(t, NewResult(KindOrder).PassErrors())
}

func TestMerge(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	orders := NewResult(KindOrder)
	orders.FetchedCount = 3
	orders.InsertedCount = 2
	orders.StartedAt = t0
	orders.FinishedAt = t0.Add(time.Second)
	orders.Record(RecordOutcome{Kind: KindOrder, Key: "10", Action: ActionInsert, Err: errors.New("fk")})

	clients := NewResult(KindCustomer)
	clients.StartedAt = t0.Add(time.Second)
	clients.FinishedAt = t0.Add(2 * time.Second)
	clients.Fail(KindCustomer, &TransportError{Kind: KindCustomer, Attempts: 1, Err: errors.New("503")})

	products := NewResult(KindProduct)
	products.FetchedCount = 2
	products.UpdatedCount = 1

	merged := Merge(orders, clients, nil, products)

	assert.Equal(t, []RecordKind{KindOrder, KindCustomer, KindProduct}, merged.Kinds)
	assert.Equal(t, 5, merged.FetchedCount)
	assert.Equal(t, 2, merged.InsertedCount)
	assert.Equal(t, 1, merged.UpdatedCount)
	assert.False(t, merged.OverallSuccess)
	require.Len(t, merged.Errors, 2)
	assert.Equal(t, KindOrder, merged.Errors[0].Kind)
	assert.Equal(t, KindCustomer, merged.Errors[1].Kind)
	assert.Equal(t, t0, merged.StartedAt)
	assert.Equal(t, t0.Add(2*time.Second), merged.FinishedAt)

	var transport *TransportError
	assert.True(t, errors.As(merged.Err(), &transport))
}

func TestMerge_Empty(t *testing.T) {
	merged := Merge()
	assert.True(t, merged.OverallSuccess)
	assert.Empty(t, merged.Errors)
	assert.NoError(t, merged.Err())
}

// TestSyncResult_JSON pins the report shape returned to HTTP callers.
func TestSyncResult_JSON(t *testing.T) {
	t0 := time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)

	res := NewResult(KindOrder, KindProduct)
	res.FetchedCount = 4
	res.InsertedCount = 2
	res.UpdatedCount = 1
	res.StartedAt = t0
	res.FinishedAt = t0.Add(1500 * time.Millisecond)
	res.Record(RecordOutcome{
		Kind:   KindOrder,
		Key:    "1042",
		Action: ActionInsert,
		Err:    &RecordApplyError{Kind: KindOrder, Key: "1042", Op: ActionInsert, Err: errors.New("duplicate entry")},
	})

	data, err := json.MarshalIndent(res, "", "  ")
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "sync_result", data)
}

func TestParseKinds(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []RecordKind
		unknown []string
	}{
		{"Empty", "", DefaultKinds, nil},
		{"Subset", "products, orders", []RecordKind{KindOrder, KindProduct}, nil},
		{"Duplicates", "clients,clients", []RecordKind{KindCustomer}, nil},
		{"Unknown", "orders,readers", []RecordKind{KindOrder}, []string{"readers"}},
		{"Case", "ORDERS", []RecordKind{KindOrder}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, unknown := ParseKinds(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.unknown, unknown)
		})
	}
}
