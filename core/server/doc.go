// Package server holds the HTTP server configuration.
//
// The cmd package starts the Fiber application; this package only defines the
// listen port, the API key checked by the auth middleware and the graceful
// shutdown window.
package server
