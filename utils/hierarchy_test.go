package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectManagerCycle(t *testing.T) {
	// 3 -> 2 -> 1 (1 is top)
	parents := map[uint]uint{3: 2, 2: 1}

	t.Run("no cycle for a fresh chain", func(t *testing.T) {
		assert.False(t, DetectManagerCycle(4, 3, parents))
	})

	t.Run("direct cycle", func(t *testing.T) {
		// 1 managed by 2, but 2 reports up to 1
		assert.True(t, DetectManagerCycle(1, 2, parents))
	})

	t.Run("transitive cycle", func(t *testing.T) {
		assert.True(t, DetectManagerCycle(1, 3, parents))
	})

	t.Run("new user never cycles", func(t *testing.T) {
		assert.False(t, DetectManagerCycle(0, 3, parents))
	})

	t.Run("manager outside the map terminates", func(t *testing.T) {
		assert.False(t, DetectManagerCycle(5, 99, parents))
	})

	t.Run("self is a cycle", func(t *testing.T) {
		assert.True(t, DetectManagerCycle(3, 3, parents))
	})
}
