package run

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectPathSingle(t *testing.T) {
	selected, err := selectPath(strings.NewReader(""), &bytes.Buffer{}, []string{"db/structure.sql"})
	require.NoError(t, err)
	assert.Equal(t, "db/structure.sql", selected)
}

func TestSelectPathPrompt(t *testing.T) {
	var out bytes.Buffer
	paths := []string{"db/structure.sql", "db/animals_structure.sql"}

	selected, err := selectPath(strings.NewReader("\nx\n2\n"), &out, paths)
	require.NoError(t, err)
	assert.Equal(t, "db/animals_structure.sql", selected)
	assert.Contains(t, out.String(), "  1) db/structure.sql\n  2) db/animals_structure.sql\n")
	assert.Equal(t, 1, strings.Count(out.String(), "Invalid selection."))
}

func TestSelectPathWithoutTrailingNewline(t *testing.T) {
	selected, err := selectPath(strings.NewReader("1"), &bytes.Buffer{}, []string{"a.sql", "b.sql"})
	require.NoError(t, err)
	assert.Equal(t, "a.sql", selected)
}

func TestSelectPathGivesUp(t *testing.T) {
	_, err := selectPath(strings.NewReader("0\n3\nnope\n"), &bytes.Buffer{}, []string{"a.sql", "b.sql"})
	require.Error(t, err)
	assert.Equal(t, "invalid selection", err.Error())
}

func TestSelectPathInputClosed(t *testing.T) {
	_, err := selectPath(strings.NewReader(""), &bytes.Buffer{}, []string{"a.sql", "b.sql"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read selection")
}
