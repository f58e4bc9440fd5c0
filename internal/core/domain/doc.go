// Package domain contains the core business entities and pure logic of
// snapnote: the snapshot taxonomy, file categorization, field sets and
// merge semantics, and the accounting records a processing run produces.
// It has no dependencies on adapters or infrastructure.
package domain
