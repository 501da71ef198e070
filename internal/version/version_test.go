package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	prev := [3]string{Version, Commit, Date}
	t.Cleanup(func() { Version, Commit, Date = prev[0], prev[1], prev[2] })

	Version, Commit, Date = "1.2.0", "abc123", "2026-01-02"
	info := Get()

	assert.Equal(t, "1.2.0", info.Version)
	assert.Equal(t, runtime.Version(), info.Go)
	assert.Equal(t, "roc 1.2.0 (commit abc123, built 2026-01-02, "+runtime.Version()+")", info.String())
}
