// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package equilibrium

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOptions(t *testing.T) {
	f, err := os.Open("testdata/options.yaml")
	require.NoError(t, err)
	defer f.Close()

	opts, err := LoadOptions(f)
	require.NoError(t, err)
	assert.Equal(t, 1e-18, opts.Epsilon)
	assert.Equal(t, 1e-9, opts.Stop.Tolerance)
	assert.Equal(t, 100, opts.Stop.MaxIterations)
	assert.Equal(t, 0.2, opts.Barrier.Sigma)
	assert.Equal(t, 0.99, opts.Barrier.Fraction)
	assert.InDelta(t, 1e-10, opts.Barrier.Min, 1e-24)
	assert.Equal(t, 10, opts.Line.MaxBacktracks)
	assert.Equal(t, 1e-4, opts.Line.Armijo)
	assert.Equal(t, 1e-12, opts.Regularization)
	assert.True(t, opts.WarmStart)
	assert.True(t, opts.Sensitivity)
	require.NotNil(t, opts.Logger)
	assert.Equal(t, LogNoop, opts.Logger.Level)
}

func TestLoadOptionsErrors(t *testing.T) {
	f, err := os.Open("testdata/unknown.yaml")
	require.NoError(t, err)
	defer f.Close()
	_, err = LoadOptions(f)
	assert.ErrorIs(t, err, ErrInvalidOptions)

	_, err = LoadOptions(strings.NewReader("barrier: {sigma: 1.5}"))
	assert.ErrorIs(t, err, ErrInvalidOptions)

	_, err = LoadOptions(strings.NewReader("line: {armijo: 0.7}"))
	assert.ErrorIs(t, err, ErrInvalidOptions)

	opts, err := LoadOptions(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions().Stop, opts.Stop)
}

func TestNormalize(t *testing.T) {
	var opts Options
	require.NoError(t, opts.normalize())
	def := DefaultOptions()
	assert.Equal(t, def.Epsilon, opts.Epsilon)
	assert.Equal(t, def.Stop, opts.Stop)
	assert.Equal(t, def.Stop.Tolerance/10, opts.Barrier.Min)
	assert.Equal(t, os.Stdout, opts.Logger.Msg)

	logger := &Logger{Level: LogIter}
	opts = Options{Logger: logger, Stop: Stop{MaxIterations: -1}}
	assert.ErrorIs(t, opts.normalize(), ErrInvalidOptions)

	opts = Options{Logger: logger}
	require.NoError(t, opts.normalize())
	assert.NotSame(t, logger, opts.Logger)
	assert.Nil(t, logger.Msg)

	_, err := NewSolver(tpSpecs(t, combustionState(t, 300, 1e5).System()), &Options{Barrier: Barrier{Fraction: 1}})
	assert.ErrorIs(t, err, ErrInvalidOptions)
}
