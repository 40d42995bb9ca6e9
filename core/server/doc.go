// Package server holds the control API server configuration.
//
// The control API is optional. When enabled it runs next to the terminal console
// and exposes the same pause, resume, cancel, acknowledge and decision signals.
//
// # Configuration
//
// The Config struct defines whether the API starts, its port and the API key
// checked by core/middleware.
package server
