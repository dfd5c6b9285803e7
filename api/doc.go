// Package api assembles the HTTP surface of the service: REST endpoints
// for conversations and agents, a WebSocket event stream, health, and
// metrics.
package api
