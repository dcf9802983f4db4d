package resolver_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rusub/rusub/internal/resolver"
)

func TestSystemResolvers_ParsesNameservers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resolv.conf")
	require.NoError(t, os.WriteFile(path, []byte("nameserver 10.1.2.3\nnameserver 10.4.5.6\n"), 0o600))

	got := resolver.SystemResolvers(path)
	assert.Equal(t, []string{"10.1.2.3", "10.4.5.6"}, got)
}

func TestSystemResolvers_MissingFileYieldsNil(t *testing.T) {
	got := resolver.SystemResolvers(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Nil(t, got)
}
