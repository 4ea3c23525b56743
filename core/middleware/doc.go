// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: fiber keyauth on the X-API-Key header, open when no key is set.
//   - rayid: a request id (ray id) on the fiber context and the X-Ray-ID
//     response header, picked up by logger.WithRayID.
//
// RayID is registered first so that every log line of a request carries it.
package middleware
