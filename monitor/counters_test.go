package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountersIncrementAndSnapshot(t *testing.T) {
	var c Counters

	c.IncrementFileRead()
	c.IncrementFileRead()
	c.IncrementFileWrite()
	c.IncrementNetworkRequest()
	c.IncrementProcessSpawn()

	snap := c.Snapshot()
	assert.Equal(t, 2, snap.FileReads)
	assert.Equal(t, 1, snap.FileWrites)
	assert.Equal(t, 1, snap.NetworkRequests)
	assert.Equal(t, 1, snap.ProcessSpawns)
}

func TestCountersAreMonotonic(t *testing.T) {
	var c Counters

	for i := 0; i < 10; i++ {
		c.IncrementFileRead()
	}

	assert.Equal(t, 10, c.Snapshot().FileReads)
}
