package grammar

import (
	"testing"

	"github.com/alecthomas/participle/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFile(t *testing.T) {
	file, err := ParseString("test.comp", `
// forward-only example
network {
    operator relu { in: 4, out: 4, props: [simple] }
    operator splice { in: 8, out: 24 } // no props
    node 0: input;
    node 1: operator relu;
}
computation {
    matrix m1: 2 x 4;
    submatrix s1 = m1[0:2, 0:4];
    indexes i0 = [0, -1, 1];
    indexes_multi x0 = [(s1, 0), (-1, -1)];
    indexes_ranges r0 = [(0, 2)];
    precomputed 1;
    input 0 -> (m1, 0);
    c0: propagate relu, 0, s1, s1;
    c1: marker;
}
`)
	require.NoError(t, err)

	require.Len(t, file.Network.Items, 4)
	op := file.Network.Items[0].Operator
	require.NotNil(t, op)
	assert.Equal(t, "relu", op.Name)
	assert.Equal(t, 4, op.In)
	assert.Equal(t, []string{"simple"}, op.Props)
	assert.Empty(t, file.Network.Items[1].Operator.Props)

	node := file.Network.Items[3].Node
	require.NotNil(t, node)
	assert.Equal(t, 1, node.ID)
	assert.Equal(t, "operator", node.Kind)
	assert.Equal(t, "relu", node.Operator)

	items := file.Computation.Items
	require.Len(t, items, 9)
	assert.Equal(t, []int{0, -1, 1}, items[2].Indexes.Values)
	require.Len(t, items[3].Multi.Pairs, 2)
	assert.Equal(t, "-1", items[3].Multi.Pairs[1].Submatrix)
	assert.Equal(t, 2, items[4].Ranges.Ranges[0].End)
	assert.Equal(t, 1, items[5].Precomputed.Count)

	io := items[6].IO
	require.NotNil(t, io)
	assert.Equal(t, "input", io.Dir)
	assert.Equal(t, "m1", io.Value)
	assert.Equal(t, "0", io.Deriv)

	cmd := items[7].Command
	require.NotNil(t, cmd)
	assert.Equal(t, "c0", cmd.Label)
	assert.Equal(t, "propagate", cmd.Kind)
	assert.Equal(t, []string{"relu", "0", "s1", "s1"}, cmd.Args)
	assert.Empty(t, items[8].Command.Args)
}

func TestParseErrorPosition(t *testing.T) {
	_, err := ParseString("test.comp", "network {\n    operator { }\n}\ncomputation {}\n")
	require.Error(t, err)
	pe, ok := err.(participle.Error)
	require.True(t, ok)
	assert.Equal(t, 2, pe.Position().Line)
}
