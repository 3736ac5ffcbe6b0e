package cmd

import (
	"bytes"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jameslz/rlzap/internal/seqio"
	"github.com/jameslz/rlzap/pkg/alphabet"
)

// workspace runs the test in an empty directory with no user config and no
// RLZAP_* environment.
func workspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))
	for _, env := range []string{
		"RLZAP_MIN_MATCH", "RLZAP_MAX_CANDIDATES", "RLZAP_WORKERS", "RLZAP_BLOCK_SIZE",
		"RLZAP_CACHE_BLOCKS", "RLZAP_CODEC", "RLZAP_INPUT_FORMAT", "RLZAP_LOG_LEVEL",
		"RLZAP_LOG_FILE", "RLZAP_METRICS_FILE",
	} {
		t.Setenv(env, "")
	}
	return dir
}

// run executes the root command with args and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

// corpus writes an LCP-like reference and a target sharing long runs with it.
func corpus(t *testing.T, dir string, seed int64, n int) (refPath, targetPath string, ref, target []alphabet.Symbol) {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	ref = make([]alphabet.Symbol, n)
	for i := range ref {
		ref[i] = alphabet.Symbol(rng.Intn(40))
	}
	target = make([]alphabet.Symbol, 0, n)
	for len(target) < n {
		if rng.Intn(5) == 0 {
			target = append(target, alphabet.Symbol(100+rng.Intn(50)))
			continue
		}
		start := rng.Intn(n - 80)
		target = append(target, ref[start:start+30+rng.Intn(40)]...)
	}
	target = target[:n]

	refPath = filepath.Join(dir, "ref.lcp")
	targetPath = filepath.Join(dir, "target.lcp")
	require.NoError(t, seqio.WriteFile(refPath, ref, seqio.FormatText))
	require.NoError(t, seqio.WriteFile(targetPath, target, seqio.FormatText))
	return refPath, targetPath, ref, target
}
