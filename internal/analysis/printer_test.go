package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintMatrixAccesses(t *testing.T) {
	an := queryAnalyzer(t)
	var b strings.Builder
	PrintMatrixAccesses(&b, an.MatrixAccesses)

	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "m1: init-command=0, destroy-command=4, accesses=c0(w) c2(r) ", lines[0])
	assert.Equal(t, "m2: init-command=1, destroy-command=5, accesses=c1(w) c2(w) ", lines[1])
}

func TestPrintCommandAttributes(t *testing.T) {
	an := queryAnalyzer(t)
	var b strings.Builder
	PrintCommandAttributes(&b, an.CommandAttributes)

	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "c0: w(v0) w(m1) ", lines[0])
	assert.Equal(t, "c2: r(v0) w(v1) r(m1) w(m2) ", lines[2])
	assert.Equal(t, "c3: ", lines[3])
}
