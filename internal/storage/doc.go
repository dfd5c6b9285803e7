// Package storage persists conversations and their transcripts through
// GORM. This package is internal and should not be imported by external
// projects.
package storage
