package launcher_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArchishmanSengupta/tiny-binary-debugger/pkg/launcher"
)

func TestLaunchStopsThenResumeRuns(t *testing.T) {
	l, err := launcher.Launch("/bin/sleep", []string{"5"})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = l.Resume()
	})

	assert.True(t, l.IsRunning(), "the child must be alive (stopped, not gone) right after Launch")
	assert.Greater(t, l.PID(), 0)

	require.NoError(t, l.Resume())
	assert.NoError(t, l.Resume(), "a second Resume is a no-op, not an error")
}

func TestLaunchUnknownProgram(t *testing.T) {
	_, err := launcher.Launch("/no/such/binary", nil)
	assert.Error(t, err)
}
