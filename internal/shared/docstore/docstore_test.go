package docstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func TestCollection_PutGetOverwrite(t *testing.T) {
	c, err := Open[doc](t.TempDir(), "docs")
	require.NoError(t, err)

	require.NoError(t, c.Put(Key(-100123), &doc{ID: -100123, Name: "first"}))
	require.NoError(t, c.Put(Key(-100123), &doc{ID: -100123, Name: "second"}))

	got, err := c.Get(Key(-100123))
	require.NoError(t, err)
	assert.Equal(t, "second", got.Name)

	n, err := c.Count(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestCollection_GetMissing(t *testing.T) {
	c, err := Open[doc](t.TempDir(), "docs")
	require.NoError(t, err)

	_, err = c.Get("404")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCollection_AllSkipsCorruptFiles(t *testing.T) {
	base := t.TempDir()
	c, err := Open[doc](base, "docs")
	require.NoError(t, err)

	require.NoError(t, c.Put("1", &doc{ID: 1}))
	require.NoError(t, c.Put("2", &doc{ID: 2}))
	require.NoError(t, os.WriteFile(filepath.Join(base, "docs", "3.json"), []byte("{not json"), 0644))

	all, err := c.All()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCollection_CountWithFilter(t *testing.T) {
	c, err := Open[doc](t.TempDir(), "docs")
	require.NoError(t, err)

	require.NoError(t, c.Put("1", &doc{ID: 1, Name: "a"}))
	require.NoError(t, c.Put("2", &doc{ID: 2, Name: "b"}))
	require.NoError(t, c.Put("3", &doc{ID: 3, Name: "a"}))

	n, err := c.Count(func(d *doc) bool { return d.Name == "a" })
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestCollection_Delete(t *testing.T) {
	c, err := Open[doc](t.TempDir(), "docs")
	require.NoError(t, err)
	require.NoError(t, c.Put("1", &doc{ID: 1}))

	existed, err := c.Delete("1")
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = c.Delete("1")
	require.NoError(t, err)
	assert.False(t, existed)
}
