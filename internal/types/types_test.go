package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashBlob_Deterministic(t *testing.T) {
	b := Blob("hello")

	h1 := HashBlob(b)
	h2 := HashBlob(b)

	assert.Equal(t, h1, h2, "HashBlob must be deterministic")
	assert.Len(t, string(h1), 64, "SHA-256 hex is 64 characters")
	assert.True(t, h1.Valid())
}

func TestHashBlob_ChangesWithContent(t *testing.T) {
	h1 := HashBlob(Blob("a"))
	h2 := HashBlob(Blob("b"))

	assert.NotEqual(t, h1, h2)
}

func TestSha256_Valid(t *testing.T) {
	valid := HashBlob(Blob("x"))
	assert.True(t, valid.Valid())
	assert.False(t, Sha256("not-a-hash").Valid())
	assert.False(t, Sha256("ABCDEF").Valid(), "hex must be lowercase")
}

func TestNormalizeSchemaId(t *testing.T) {
	cases := []struct {
		in      string
		want    SchemaId
		wantErr bool
	}{
		{in: "RMSD_CSV@1", want: "RMSD_CSV@1"},
		{in: "RMSD_CSV", want: "RMSD_CSV@1"},
		{in: "RMSD_CSV@42", want: "RMSD_CSV@42"},
		{in: "bad id", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, c := range cases {
		got, err := NormalizeSchemaId(c.in)
		if c.wantErr {
			assert.Error(t, err, c.in)
			continue
		}
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestSchemaId_NameVersion(t *testing.T) {
	name, version, err := SchemaId("RMSD_CSV@7").NameVersion()
	require.NoError(t, err)
	assert.Equal(t, "RMSD_CSV", name)
	assert.Equal(t, 7, version)

	name, version, err = SchemaId("PLAIN").NameVersion()
	require.NoError(t, err)
	assert.Equal(t, "PLAIN", name)
	assert.Equal(t, 1, version)

	_, _, err = SchemaId("bad@@1").NameVersion()
	assert.Error(t, err)
}

func TestPattern_Matches(t *testing.T) {
	schemaA := SchemaId("A@1")
	schemaB := SchemaId("B@1")
	id := HashBlob(Blob("x"))

	h := EventHeader{ID: id, Schema: schemaA, Ts: 100}

	assert.True(t, Pattern{}.Matches(h), "empty pattern matches anything")
	assert.True(t, WithSchema(schemaA).Matches(h))
	assert.False(t, WithSchema(schemaB).Matches(h))

	wrongID := Sha256("0000000000000000000000000000000000000000000000000000000000000")
	assert.False(t, Pattern{ID: &wrongID}.Matches(h))

	ts := Timestamp(100)
	assert.True(t, Pattern{Schema: &schemaA, Ts: &ts}.Matches(h))
}
