// Package mock provides test doubles for the ai interfaces.
//
// The mocks return deterministic results by default: MockEmbedder derives a
// stable vector from the FNV hash of the input text, MockGenerator and
// MockTranscriber return canned strings echoing their input. Every mock
// exposes function fields for injecting custom behavior and a CallCount
// method for assertions.
package mock
