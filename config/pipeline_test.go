package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-sparse/internal/testutil"
	"github.com/cwbudde/algo-sparse/sparse/block"
	"github.com/cwbudde/algo-sparse/sparse/blocktree"
	"github.com/cwbudde/algo-sparse/sparse/prox"
	"github.com/cwbudde/algo-sparse/sparse/reweight"
	"github.com/cwbudde/algo-sparse/sparse/signal"
)

// runRecovery runs one build/threshold/reweight round on a two-bin burst
// with every stage configured from cfg.
func runRecovery(t *testing.T, cfg *Config, logger *slog.Logger) {
	t.Helper()

	s, err := signal.FromChannels(testutil.Tone(16, 10, 6, 7), make([]complex128, 16))
	require.NoError(t, err)

	tree, err := blocktree.Build(s, cfg.Tree.Probability, cfg.Tree.MinBlockSize, cfg.TreeOptions(logger)...)
	require.NoError(t, err)

	part := tree.Partition()
	require.NoError(t, part.Validate(s.Len()))

	gamma, err := tree.Gammas()
	require.NoError(t, err)

	x, err := prox.Block(s, part, gamma, cfg.ProxOptions()...)
	require.NoError(t, err)

	for i := range x.Len() {
		if i == 6 || i == 7 {
			assert.NotZero(t, x.A[i], "bin %d", i)
			continue
		}
		assert.Zero(t, x.A[i], "bin %d", i)
	}

	next, err := reweight.Blocks(x, gamma, part, cfg.ReweightOptions()...)
	require.NoError(t, err)
	for k := range next {
		assert.LessOrEqual(t, next[k], gamma[k])
	}

	perBin, err := block.Expand(part, next)
	require.NoError(t, err)

	w, err := reweight.BlockElementWeights(x, perBin, testutil.Ones(s.Len()), cfg.ReweightOptions()...)
	require.NoError(t, err)

	recal, err := reweight.Recalibrate(next, part, w, x)
	require.NoError(t, err)
	testutil.RequireFinite(t, recal)
}

func TestRecoveryFromConfigFile(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, `
tree:
  probability: 0.99
  min_block_size: 2
reweight:
  coeff: 0.5
`))
	require.NoError(t, err)

	runRecovery(t, cfg, nil)
}
