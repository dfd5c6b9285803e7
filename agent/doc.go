// Package agent implements discussion participants: one concrete Agent type
// parameterized by a Persona value object, plus the fixed built-in roster.
// All personas share a single code path; they differ only in prompt text and
// display metadata.
package agent
