// Package httpserver runs the API behind a validated, gracefully stoppable
// http.Server.
package httpserver
