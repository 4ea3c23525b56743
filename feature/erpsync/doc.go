// Package erpsync exposes ERP synchronization over HTTP.
//
// Service wraps a reconcile.Reconciler: it gives every run an id, coalesces
// identical concurrent requests into one run, keeps the last result and,
// when configured, archives each result as a JSON report in object storage.
//
// # Endpoints
//
//	POST /sync?kinds=orders,clients   run a sync; 400 when it did not succeed
//	GET  /sync/last                   most recent run
//	GET  /sync/reports                archived reports, newest first
//	GET  /sync/reports/:name          one archived report
package erpsync
