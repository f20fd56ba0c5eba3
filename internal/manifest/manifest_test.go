package manifest

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), Filename)
	in := &Manifest{
		Identifier:            "1.2.0",
		SourceBranch:          "master",
		SourceCommit:          "0123456789abcdef0123456789abcdef01234567",
		BuildTime:             time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC),
		DependenciesInstalled: true,
	}

	require.NoError(t, Write(path, in))

	out, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
