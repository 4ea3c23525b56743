// Package reconcile implements the ERP reconciliation engine.
//
// A sync pass pulls the authoritative collection of one record kind (orders,
// clients or product types) from a Source, snapshots the local collection of
// the same kind from a Store, and writes the difference back to the Store:
// records missing locally are inserted and records whose watched fields
// changed are updated.
//
// # Architecture
//
// 1. Matcher: Match partitions source records into insert, update, unchanged
// and skip decisions using the natural key of the kind. Only the watched
// fields of the kind's Schema are compared, so locally managed columns (such
// as the mount or ship status of an order) are never overwritten.
//
// 2. Reconciler: Plan performs fetch, snapshot and match without writing;
// Apply executes a plan with per-record failure isolation. SyncKind chains
// both under a per-kind lock, and Synchronize runs several kinds in the fixed
// order orders, clients, products.
//
// 3. Aggregator: SyncResult accumulates per-record outcomes, and Merge
// combines the results of several kinds.
//
// # Failures
//
// A fetch failure (*TransportError) or a failed local snapshot
// (*SnapshotError) aborts the pass before any write and yields
// OverallSuccess=false. Insert and update failures (*RecordApplyError) and
// malformed source records (*ValidationError) are recorded in
// SyncResult.Errors and never stop the pass.
//
// # Usage Example
//
//	r := reconcile.New(omieSource, catalogStore, logger, cfg.Reconcile)
//
//	// Everything, orders first
//	result := r.Synchronize(ctx)
//	if err := result.Err(); err != nil {
//	    var transport *reconcile.TransportError
//	    if errors.As(err, &transport) { ... }
//	}
//
//	// Dry run for one kind
//	plan, err := r.Plan(ctx, reconcile.KindProduct)
package reconcile
