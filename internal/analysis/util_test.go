package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortAndUniq(t *testing.T) {
	assert.Equal(t, []int{1, 2, 5}, sortAndUniq([]int{5, 2, 1, 2, 5, 5}))
	assert.Equal(t, []int{3}, sortAndUniq([]int{3}))
	assert.Empty(t, sortAndUniq(nil))
}

func TestIsSortedAndUniq(t *testing.T) {
	assert.True(t, isSortedAndUniq([]int{1, 2, 5}))
	assert.True(t, isSortedAndUniq(nil))
	assert.False(t, isSortedAndUniq([]int{1, 1}))
	assert.False(t, isSortedAndUniq([]int{2, 1}))
}

func TestContainsSorted(t *testing.T) {
	s := []int{1, 3, 7}
	assert.True(t, containsSorted(s, 3))
	assert.False(t, containsSorted(s, 4))
	assert.False(t, containsSorted(nil, 1))
}
