// Package server manages the HTTP server lifecycle.
// This package is internal and should not be imported by external projects.
package server
