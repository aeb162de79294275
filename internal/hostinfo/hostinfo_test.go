package hostinfo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectCPUReturnsLogicalCores(t *testing.T) {
	info := DetectCPU()
	assert.Positive(t, info.LogicalCores)
}

func TestLogCPUInfoHandlesNilLogger(t *testing.T) {
	assert.NotPanics(t, func() { LogCPUInfo(nil) })
}

func TestReadSnapshotReturnsPlausibleValues(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	snap, err := ReadSnapshot(ctx, 10*time.Millisecond)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, snap.MemUsedPct, 0.0)
	assert.Positive(t, snap.MemTotalBytes)
}
