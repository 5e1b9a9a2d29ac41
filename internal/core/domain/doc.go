// Package domain contains the core types of the retrieval pipeline:
// chunk records, sections, scored results, and the settings structs
// that parameterise each component.
//
// Domain types have no dependencies on adapters or external services.
package domain
