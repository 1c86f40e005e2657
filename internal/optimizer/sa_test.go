package optimizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSANoCooling(t *testing.T) {
	p := testParams()
	p.InitialTemperature = 1
	p.MinTemperature = 1
	o := newTestOptimizer(t, p, sampleEntries())

	r, err := o.RunSA(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, o.Base(), r.Schedule)
	assert.Equal(t, 0, r.Iterations)
	assert.InDelta(t, o.Evaluator().Fitness(o.Base(), 0), r.Fitness, 1e-9)
}

func TestRunSANeverWorseThanSeed(t *testing.T) {
	p := testParams()
	o := newTestOptimizer(t, p, sampleEntries())
	seedFit := o.Evaluator().Fitness(o.Base(), 0)

	r, err := o.RunSA(context.Background(), nil)
	require.NoError(t, err)
	assert.LessOrEqual(t, r.Fitness, seedFit)
	assert.Positive(t, r.Iterations)
	requireInDomain(t, p, r.Schedule)
}

func TestRunSADoesNotModifySeed(t *testing.T) {
	o := newTestOptimizer(t, testParams(), sampleEntries())
	seed := o.Base()
	before := seed.Clone()

	_, err := o.RunSA(context.Background(), seed)
	require.NoError(t, err)
	assert.Equal(t, before, seed)
}

func TestRunSASeedLengthMismatch(t *testing.T) {
	o := newTestOptimizer(t, testParams(), sampleEntries())
	_, err := o.RunSA(context.Background(), Candidate{entry(1, 8, 1)})
	assert.ErrorIs(t, err, ErrInvalidParameters)
}
