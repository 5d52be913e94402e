package app

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticLoader struct {
	data []byte
}

func (l *staticLoader) Load(_ *url.URL) ([]byte, error) {
	return l.data, nil
}

func TestLoadFile_Local(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cert.pem")
	require.NoError(t, os.WriteFile(path, []byte("certificate"), 0o600))

	for _, fileURL := range []string{path, "file://" + path} {
		data, err := LoadFile(fileURL)
		require.NoError(t, err, fileURL)
		assert.Equal(t, "certificate", string(data))
	}

	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.pem"))
	assert.Error(t, err)
}

func TestLoadFile_RegisteredScheme(t *testing.T) {
	_, err := LoadFile("memtest://bucket/cert.pem")
	assert.Error(t, err)

	RegisterFileLoaderCtor("memtest", func() (FileLoader, error) {
		return &staticLoader{data: []byte("static")}, nil
	})

	data, err := LoadFile("memtest://bucket/cert.pem")
	require.NoError(t, err)
	assert.Equal(t, "static", string(data))

	assert.Panics(t, func() {
		RegisterFileLoaderCtor("memtest", NewLocalLoader)
	})
}
