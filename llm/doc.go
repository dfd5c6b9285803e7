// Package llm defines the text-generation gateway consumed by agents and
// the resilience wrappers layered on top of it. Concrete backends live in
// llm/providers; callers own the retry/fallback policy via ResilientGateway.
package llm
