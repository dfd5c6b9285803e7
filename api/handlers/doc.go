// Package handlers implements the HTTP handlers of the REST and WebSocket
// API.
package handlers
