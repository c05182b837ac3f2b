package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Neuron", "neuron"},
		{"  Cortex  ", "cortex"},
		{"Córtex", "cortex"},
		{"neurona piramidal", "neurona piramidal"},
		{"", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Normalize(c.in), "input %q", c.in)
	}
}

func TestRecord_EntityNames(t *testing.T) {
	rec := Record{
		Entities: []Entity{
			{EntityID: "BERN:123", EntityType: "gene", Name: "Reelin"},
			{EntityID: "BERN:456", EntityType: "disease", Name: " Epilepsy "},
		},
	}
	assert.Equal(t, []string{"reelin", "epilepsy"}, rec.EntityNames())

	empty := Record{Text: "no mentions here", TextSHA256: "abc"}
	assert.Nil(t, empty.EntityNames())
}

func TestReadRecords(t *testing.T) {
	t.Run("json array", func(t *testing.T) {
		path := writeTemp(t, `[
			{"entities": [{"entity_id": "BERN:1", "entity_type": "gene", "entity": "reelin"}], "text": "a", "text_sha256": "h1"},
			{"text": "b", "text_sha256": "h2"}
		]`)

		records, err := ReadRecords(path)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "reelin", records[0].Entities[0].Name)
		assert.Empty(t, records[1].Entities)
	})

	t.Run("ndjson", func(t *testing.T) {
		path := writeTemp(t, `{"entities": [{"entity_id": "BERN:1", "entity_type": "drug", "entity": "valproate"}], "text": "a", "text_sha256": "h1"}

{"text": "b", "text_sha256": "h2"}
`)

		records, err := ReadRecords(path)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "valproate", records[0].Entities[0].Name)
	})

	t.Run("empty file", func(t *testing.T) {
		records, err := ReadRecords(writeTemp(t, "  \n"))
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("bad line reports position", func(t *testing.T) {
		_, err := ReadRecords(writeTemp(t, `{"text": "ok", "text_sha256": "h"}
{not json`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 2")
	})
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
