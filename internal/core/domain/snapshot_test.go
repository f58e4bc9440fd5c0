package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeFields(t *testing.T) {
	stored := FieldSet{
		"code.imports.modules":  []string{"os"},
		"code.imports.external": []string{"requests"},
	}
	incoming := FieldSet{
		"code.imports.modules": []string{"os", "sys"},
		"code.file.loc":        42,
	}

	merged := MergeFields(stored, incoming)

	// incoming wins per field, stored-only fields survive
	assert.Equal(t, []string{"os", "sys"}, merged["code.imports.modules"])
	assert.Equal(t, []string{"requests"}, merged["code.imports.external"])
	assert.Equal(t, 42, merged["code.file.loc"])

	// inputs untouched
	assert.Equal(t, []string{"os"}, stored["code.imports.modules"])
	assert.NotContains(t, stored, "code.file.loc")
	assert.NotContains(t, incoming, "code.imports.external")
}

func TestMergeFieldsNilStored(t *testing.T) {
	merged := MergeFields(nil, FieldSet{"a": "b"})
	assert.Equal(t, FieldSet{"a": "b"}, merged)
}

func TestSnapshotKey(t *testing.T) {
	snap := &Snapshot{ProjectID: "p1", SourceFile: "main.py", Type: TypeImports}
	assert.Equal(t, Key{ProjectID: "p1", SourceFile: "main.py", Type: TypeImports}, snap.Key())
}

func TestFingerprintIsStable(t *testing.T) {
	a := Fingerprint([]byte("hello"))
	b := Fingerprint([]byte("hello"))
	c := Fingerprint([]byte("hello!"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
