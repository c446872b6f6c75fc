// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package equilibrium

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/curioloop/gibbs/chemsys"
	"gopkg.in/yaml.v3"
)

// LogLevel controls the frequency and type of logger output
type LogLevel int

const (
	// LogNoop no output is generated
	LogNoop LogLevel = -1
	// LogLast print only one line at the last iteration
	LogLast LogLevel = 0
	// LogIter print the residual, step length and barrier of every iteration
	LogIter LogLevel = 1
	// LogTrace print also line-search and regularization details
	LogTrace LogLevel = 99
)

// Logger handles logging output for the solver.
// Note the writer must be thread-safe when solvers run concurrently.
type Logger struct {
	Level LogLevel
	Msg   io.Writer // Writer to output log messages.
}

func (l *Logger) enable(level LogLevel) bool {
	return l.Level >= level
}

func (l *Logger) log(format string, a ...any) {
	if len(a) > 0 {
		_, _ = fmt.Fprintf(l.Msg, format, a...)
	} else {
		_, _ = fmt.Fprint(l.Msg, format)
	}
}

// Stop specifies the stopping criteria.
type Stop struct {
	// The iteration stop when every residual satisfies:
	//   ‖𝒈 + 𝐀ᵀ𝐲 - 𝐳 + 𝐰‖∞, ‖𝐀𝐧 - 𝐖𝐪 - 𝐛‖∞, ‖𝐡‖∞, 𝚖𝚊𝚡(𝐬∘𝐳) < 𝚝𝚘𝚕
	Tolerance float64 `yaml:"tolerance"`
	// The iteration stop when the number of iteration exceeds limit.
	MaxIterations int `yaml:"maxIterations"`
}

// Barrier specifies the barrier parameter schedule 𝜏 = 𝚖𝚊𝚡(𝚖𝚒𝚗, 𝚖𝚒𝚗(σ𝜇̄, 𝜇̄^1.5))
// where 𝜇̄ is the mean complementarity product.
type Barrier struct {
	// Reduction factor σ in (0, 1).
	Sigma float64 `yaml:"sigma"`
	// Fraction-to-boundary factor θ in (0, 1): a step never moves a variable
	// further than θ of its distance to a bound.
	Fraction float64 `yaml:"fraction"`
	// Smallest barrier parameter. Zero selects a tenth of the tolerance.
	Min float64 `yaml:"min"`
}

// Line specifies the backtracking line-search on the merit ½‖𝑭‖².
type Line struct {
	// The maximum number of step halvings.
	MaxBacktracks int `yaml:"maxBacktracks"`
	// Sufficient decrease factor c: accept α when ½‖𝑭(α)‖² ≤ (1 - 2cα)½‖𝑭(0)‖².
	Armijo float64 `yaml:"armijo"`
}

// Options configures a Solver. Zero fields take their default values.
type Options struct {
	// Floor ε applied to species amounts inside logarithms.
	Epsilon float64 `yaml:"epsilon"`
	Stop    Stop    `yaml:"stop"`
	Barrier Barrier `yaml:"barrier"`
	Line    Line    `yaml:"line"`
	// Initial diagonal shift used when the Newton matrix is singular;
	// it grows a hundredfold on every retry.
	Regularization float64 `yaml:"regularization"`
	// Reuse the multipliers of the last converged solve as initial guess.
	WarmStart bool `yaml:"warmStart"`
	// Compute the sensitivity of the solution with respect to inputs and component amounts.
	Sensitivity bool `yaml:"sensitivity"`
	// Optional logger, silent when nil.
	Logger *Logger `yaml:"-"`
}

const regularizationRetries = 4

// DefaultOptions returns the default solver options.
func DefaultOptions() Options {
	return Options{
		Epsilon: chemsys.DefaultEpsilon,
		Stop: Stop{
			Tolerance:     1e-10,
			MaxIterations: 200,
		},
		Barrier: Barrier{
			Sigma:    0.1,
			Fraction: 0.995,
		},
		Line: Line{
			MaxBacktracks: 20,
			Armijo:        1e-4,
		},
		Regularization: 1e-12,
	}
}

// LoadOptions reads options from YAML. Absent keys keep their default values.
//
//	epsilon: 1.0e-16
//	stop:
//	  tolerance: 1.0e-10
//	  maxIterations: 200
//	barrier: {sigma: 0.1, fraction: 0.995}
func LoadOptions(r io.Reader) (Options, error) {
	opts := DefaultOptions()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil && err != io.EOF {
		return Options{}, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	if err := opts.normalize(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// normalize fills zero fields with defaults and checks ranges.
func (o *Options) normalize() (err error) {
	def := DefaultOptions()
	if o.Epsilon == zero {
		o.Epsilon = def.Epsilon
	}
	if o.Stop.Tolerance == zero {
		o.Stop.Tolerance = def.Stop.Tolerance
	}
	if o.Stop.MaxIterations == 0 {
		o.Stop.MaxIterations = def.Stop.MaxIterations
	}
	if o.Barrier.Sigma == zero {
		o.Barrier.Sigma = def.Barrier.Sigma
	}
	if o.Barrier.Fraction == zero {
		o.Barrier.Fraction = def.Barrier.Fraction
	}
	if o.Barrier.Min == zero {
		o.Barrier.Min = o.Stop.Tolerance / 10
	}
	if o.Line.MaxBacktracks == 0 {
		o.Line.MaxBacktracks = def.Line.MaxBacktracks
	}
	if o.Line.Armijo == zero {
		o.Line.Armijo = def.Line.Armijo
	}
	if o.Regularization == zero {
		o.Regularization = def.Regularization
	}

	switch {
	case !(o.Epsilon > zero) || math.IsInf(o.Epsilon, 0):
		err = fmt.Errorf("%w: epsilon must be positive", ErrInvalidOptions)
	case !(o.Stop.Tolerance > zero):
		err = fmt.Errorf("%w: tolerance must be positive", ErrInvalidOptions)
	case o.Stop.MaxIterations < 0:
		err = fmt.Errorf("%w: max iterations must not be negative", ErrInvalidOptions)
	case !(o.Barrier.Sigma > zero && o.Barrier.Sigma < one):
		err = fmt.Errorf("%w: barrier sigma must be in (0, 1)", ErrInvalidOptions)
	case !(o.Barrier.Fraction > zero && o.Barrier.Fraction < one):
		err = fmt.Errorf("%w: fraction to boundary must be in (0, 1)", ErrInvalidOptions)
	case !(o.Barrier.Min > zero):
		err = fmt.Errorf("%w: minimum barrier must be positive", ErrInvalidOptions)
	case o.Line.MaxBacktracks < 0:
		err = fmt.Errorf("%w: backtracks must not be negative", ErrInvalidOptions)
	case !(o.Line.Armijo > zero && o.Line.Armijo < half):
		err = fmt.Errorf("%w: armijo factor must be in (0, 0.5)", ErrInvalidOptions)
	case !(o.Regularization > zero):
		err = fmt.Errorf("%w: regularization must be positive", ErrInvalidOptions)
	}
	if err != nil {
		return
	}

	if o.Logger == nil {
		o.Logger = &Logger{Level: LogNoop}
	} else {
		logger := *o.Logger
		o.Logger = &logger
	}
	if o.Logger.Msg == nil {
		o.Logger.Msg = os.Stdout
	}
	return
}
