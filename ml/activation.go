package ml

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

const (
	ActLinear ActivationType = iota
	ActSigmoid
	ActTanh
	ActRelu
	ActSoftmax
)

var activationMap = map[string]ActivationType{
	"linear":  ActLinear,
	"sigmoid": ActSigmoid,
	"tanh":    ActTanh,
	"relu":    ActRelu,
	"softmax": ActSoftmax,
}

// ActivationFunc transforms a contiguous run of layer outputs in place.
type ActivationFunc interface {
	Apply(x []float64)
}

type ActivationType int

// ParseActivation looks up a built-in activation by name.
func ParseActivation(name string) (ActivationType, error) {
	act, ok := activationMap[name]
	if !ok {
		return 0, errors.Errorf("unknown activation: %q", name)
	}
	return act, nil
}

func (a ActivationType) String() string {
	for name, act := range activationMap {
		if act == a {
			return name
		}
	}
	return "unknown"
}

func (a ActivationType) Apply(x []float64) {
	switch a {
	case ActLinear:
	case ActSigmoid:
		ApplySigmoid(x)
	case ActTanh:
		for i, v := range x {
			x[i] = math.Tanh(v)
		}
	case ActRelu:
		ApplyRelu(x)
	case ActSoftmax:
		Softmax(x)
	default:
		panic("Unknown activation type")
	}
}

// ApplySigmoid applies the logistic function to x in place.
func ApplySigmoid(x []float64) {
	for i, v := range x {
		x[i] = 1.0 / (1.0 + math.Exp(-v))
	}
}

// ApplyRelu clamps negative values of x to zero in place.
func ApplyRelu(x []float64) {
	for i, v := range x {
		if v < 0 {
			x[i] = 0
		}
	}
}

// Softmax normalises x into a probability distribution. The max is
// subtracted first so large sums do not overflow math.Exp.
func Softmax(x []float64) {
	if len(x) == 0 {
		return
	}
	floats.AddConst(-floats.Max(x), x)
	for i, v := range x {
		x[i] = math.Exp(v)
	}
	floats.Scale(1/floats.Sum(x), x)
}

// ActivationFuncOf adapts a scalar function into an ActivationFunc.
type ActivationFuncOf func(float64) float64

func (f ActivationFuncOf) Apply(x []float64) {
	for i, v := range x {
		x[i] = f(v)
	}
}
