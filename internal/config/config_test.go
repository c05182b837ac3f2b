package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "cache_ontologies", cfg.Cache.Dir)
		assert.Equal(t, 85, cfg.Fuzzy.BaseCutoff)
		assert.Equal(t, 5, cfg.Validation.StrongDistance)
		assert.Equal(t, "common_neighbors", cfg.Prediction.Strategy)
	})

	t.Run("file values override defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
cache:
  dir: /tmp/onto-cache
ontology:
  sources:
    - name: hpo
      url: https://purl.obolibrary.org/obo/hp.owl
fuzzy:
  base_cutoff: 80
prediction:
  strategy: jaccard
  top_k: 50
`), 0644))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "/tmp/onto-cache", cfg.Cache.Dir)
		assert.Equal(t, 80, cfg.Fuzzy.BaseCutoff)
		assert.Equal(t, "jaccard", cfg.Prediction.Strategy)
		assert.Equal(t, 50, cfg.Prediction.TopK)
		require.Len(t, cfg.Ontology.Sources, 1)
		assert.Equal(t, "hpo", cfg.Ontology.Sources[0].Name)
		assert.Equal(t, 30, cfg.Cache.HTTPTimeoutSeconds, "unset fields keep defaults")
	})

	t.Run("environment wins", func(t *testing.T) {
		t.Setenv("LITKG_CACHE_DIR", "/env/cache")
		t.Setenv("LITKG_LOG_MODE", "prod")

		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "/env/cache", cfg.Cache.Dir)
		assert.Equal(t, "prod", cfg.LogMode)
	})

	t.Run("out-of-range knobs snap back", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
fuzzy:
  max_cutoff: 250
prediction:
  top_k: -3
`), 0644))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 98, cfg.Fuzzy.MaxCutoff)
		assert.Equal(t, 20, cfg.Prediction.TopK)
	})
}
