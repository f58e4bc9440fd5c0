// Package driven defines the outbound ports of the core: interfaces the
// core calls and adapters implement (storage, parsers, source ingestion).
package driven
