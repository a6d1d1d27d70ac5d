// Package mock provides test doubles for the ai package interfaces.
//
// The mocks default to deterministic behavior (hash-derived embedding
// vectors, canned summaries) so tests are reproducible without external
// AI services, and expose function fields for injecting failures.
package mock
