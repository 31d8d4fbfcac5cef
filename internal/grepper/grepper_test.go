package grepper

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLineUnix(t *testing.T) {
	hit, ok := parseLine("src/foo.go:12:5:func Hello() {}")
	require.True(t, ok)
	require.Equal(t, Hit{Path: "src/foo.go", Line: 12, Column: 5, Text: "func Hello() {}"}, hit)
}

func TestParseLineWindowsDriveLetter(t *testing.T) {
	hit, ok := parseLine(`C:\project\src\foo.go:12:5:func Hello() {}`)
	require.True(t, ok)
	require.Equal(t, `C:\project\src\foo.go`, hit.Path)
	require.Equal(t, 12, hit.Line)
	require.Equal(t, 5, hit.Column)
}

func TestParseLineMalformedIsSkipped(t *testing.T) {
	_, ok := parseLine("not a valid rg line")
	require.False(t, ok)
}

func TestParseOutputMultipleLines(t *testing.T) {
	output := "a.go:1:1:foo\nb.go:2:3:bar\n"
	hits := parseOutput(output)
	require.Len(t, hits, 2)
	require.Equal(t, "a.go", hits[0].Path)
	require.Equal(t, "b.go", hits[1].Path)
}

func TestParseOutputSkipsEmptyLines(t *testing.T) {
	hits := parseOutput("\n\na.go:1:1:foo\n\n")
	require.Len(t, hits, 1)
}
