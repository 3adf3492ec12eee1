package migrations

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpFiles(t *testing.T) {
	t.Run("orders by version and skips down files", func(t *testing.T) {
		fsys := fstest.MapFS{
			"000002_b.up.sql":   {Data: []byte("b")},
			"000001_a.up.sql":   {Data: []byte("a")},
			"000001_a.down.sql": {Data: []byte("-a")},
			"README.md":         {Data: []byte("x")},
		}
		files, err := upFiles(fsys)
		require.NoError(t, err)
		assert.Equal(t, []string{"000001_a.up.sql", "000002_b.up.sql"}, files)
	})

	t.Run("embedded schema has a down file per up file", func(t *testing.T) {
		files, err := upFiles(FS)
		require.NoError(t, err)
		require.NotEmpty(t, files)
		for _, f := range files {
			down := strings.TrimSuffix(f, upSuffix) + ".down.sql"
			_, err := FS.Open(down)
			assert.NoError(t, err, "missing %s", down)
		}
	})
}
