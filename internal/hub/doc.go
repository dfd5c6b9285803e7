// Package hub fans conversation events out to WebSocket subscribers and
// journals them in Redis. This package is internal and should not be
// imported by external projects.
package hub
