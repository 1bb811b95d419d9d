package schemaregistry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSchema(t *testing.T, dir, filename, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), []byte(contents), 0o644))
}

func TestRegistry_UnknownSchema(t *testing.T) {
	r := New(t.TempDir())

	err := r.Validate("NOPE@1", []byte(`{}`))
	require.Error(t, err)
	assert.True(t, IsUnknownSchema(err))
}

func TestRegistry_InvalidSchemaID(t *testing.T) {
	r := New(t.TempDir())

	err := r.Validate("not a schema id", []byte(`{}`))
	require.Error(t, err)
	assert.True(t, IsUnknownSchema(err))
}

func TestRegistry_ValidPayload(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "THING.v1.json", `{
		"type": "object",
		"properties": {"name": {"type": "string"}},
		"required": ["name"]
	}`)

	r := New(dir)
	err := r.Validate("THING@1", []byte(`{"name": "widget"}`))
	assert.NoError(t, err)
}

func TestRegistry_InvalidPayload(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "THING.v1.json", `{
		"type": "object",
		"properties": {"name": {"type": "string"}},
		"required": ["name"]
	}`)

	r := New(dir)
	err := r.Validate("THING@1", []byte(`{"name": 42}`))
	require.Error(t, err)
	assert.True(t, IsInvalidPayload(err))
}

func TestRegistry_DefaultVersionIsOne(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "THING.v1.json", `{"type": "object"}`)

	r := New(dir)
	assert.NoError(t, r.Validate("THING", []byte(`{}`)))
}

func TestRegistry_Utf8PayloadEncoding(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "TEXT.v1.json", `{
		"payload_encoding": "utf-8",
		"type": "string",
		"minLength": 1
	}`)

	r := New(dir)
	assert.NoError(t, r.Validate("TEXT@1", []byte("hello")))

	err := r.Validate("TEXT@1", []byte{0xff, 0xfe, 0xfd})
	require.Error(t, err)
	assert.True(t, IsInvalidPayload(err))
}

func TestRegistry_CachesCompiledSchema(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "THING.v1.json", `{"type": "object"}`)

	r := New(dir)
	require.NoError(t, r.Validate("THING@1", []byte(`{}`)))

	// Remove the file on disk; a cached registry must not need to re-read it.
	require.NoError(t, os.Remove(filepath.Join(dir, "THING.v1.json")))
	assert.NoError(t, r.Validate("THING@1", []byte(`{}`)))
}

func TestRegistry_CUEBackend(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "CFG.v1.cue", `name: string
count: int & >=0
`)

	r := New(dir)
	assert.NoError(t, r.Validate("CFG@1", []byte(`{"name": "x", "count": 3}`)))

	err := r.Validate("CFG@1", []byte(`{"name": "x", "count": -1}`))
	require.Error(t, err)
	assert.True(t, IsInvalidPayload(err))
}
