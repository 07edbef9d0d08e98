package cli

import (
	"bytes"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/rotnet/internal/harness"
	"github.com/roach88/rotnet/internal/store"
)

// scenarioPath points at the harness package's scenarios.
func scenarioPath(name string) string {
	return filepath.Join("..", "harness", "testdata", "scenarios", name+".yaml")
}

// seedLog records the full_turn scenario into a fresh database file under
// the harness's fixed session IDs.
func seedLog(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "turns.db")
	st, err := store.Open(path)
	require.NoError(t, err)

	scenario, err := harness.LoadScenario(scenarioPath("full_turn"))
	require.NoError(t, err)
	result, err := harness.Run(scenario, harness.WithStore(st))
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	require.NoError(t, st.Close())
	return path
}

// lockedBuffer is a bytes.Buffer a running command and the test may share.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
