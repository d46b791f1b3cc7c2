package ml

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
)

// defTol is a good default tolerance for comparing computed outputs
const defTol = 1e-12

func mustCompute(t *testing.T, nw *NeuralNetwork, input []float64) []float64 {
	t.Helper()
	out, err := nw.Compute(input)
	if err != nil {
		t.Fatalf("Compute(%v): %v", input, err)
	}
	return out
}

func fill(nw *NeuralNetwork, v float64) {
	w := nw.Weights()
	for i := range w {
		w[i] = v
	}
}

func TestComputeBiasScenario(t *testing.T) {
	nw := NewNetwork(Input(2), Dense(1, Activation("linear"), NoBias()))
	// input0->out0, input1->out0, bias->out0
	if err := nw.SetWeights([]float64{0.5, -0.5, 1.0}); err != nil {
		t.Fatal(err)
	}

	got := mustCompute(t, nw, []float64{1.0, 2.0})
	// 0.5*1.0 + (-0.5)*2.0 + 1.0*1.0
	if !floats.EqualApprox(got, []float64{0.5}, defTol) {
		t.Errorf("output = %v, want [0.5]", got)
	}
	if sums := nw.LayerSums(); sums[0] != got[0] {
		t.Errorf("linear layer sum = %g, want %g", sums[0], got[0])
	}
}

func TestComputeSigmoidKeepsSums(t *testing.T) {
	nw := NewNetwork(Input(1, NoBias()), Dense(1, NoBias()))
	if err := nw.SetWeights([]float64{2}); err != nil {
		t.Fatal(err)
	}

	got := mustCompute(t, nw, []float64{0})
	if got[0] != 0.5 {
		t.Errorf("sigmoid(0) output = %g, want 0.5", got[0])
	}

	mustCompute(t, nw, []float64{1.5})
	if sum := nw.LayerSums()[0]; sum != 3 {
		t.Errorf("pre-activation sum = %g, want 3", sum)
	}
}

func TestComputeMatchesMatrixProduct(t *testing.T) {
	nw := NewNetwork(
		Input(3),
		Dense(4, Activation("tanh")),
		Dense(2, Activation("linear"), NoBias()),
	)
	nw.RandomizeRangeWith(rand.New(rand.NewPCG(1, 2)), 1, -1)
	x := []float64{0.3, -1.2, 0.7}

	w0, err := nw.WeightMatrix(0)
	if err != nil {
		t.Fatal(err)
	}
	w1, err := nw.WeightMatrix(1)
	if err != nil {
		t.Fatal(err)
	}

	// Append the bias neuron to each layer's activations.
	var h mat.VecDense
	h.MulVec(w0.Dense(), mat.NewVecDense(4, []float64{x[0], x[1], x[2], 1}))
	hidden := append(slices.Clone(h.RawVector().Data), 1)
	ActTanh.Apply(hidden[:4])

	var y mat.VecDense
	y.MulVec(w1.Dense(), mat.NewVecDense(5, hidden))

	got := mustCompute(t, nw, x)
	if want := y.RawVector().Data; !floats.EqualApprox(got, want, defTol) {
		t.Errorf("output = %v, want %v", got, want)
	}
}

func TestComputeMatchesSequentialSum(t *testing.T) {
	const rate = 0.3
	nw := NewDropoutNetwork(Input(7), Dense(1, Activation("linear"), NoBias(), Dropout(rate)))

	for seed := uint64(0); seed < 200; seed++ {
		r := rand.New(rand.NewPCG(seed, 3))
		nw.RandomizeRangeWith(r, 1, -1)
		input := make([]float64, 7)
		for i := range input {
			input[i] = 2*r.Float64() - 1
		}

		// Input neurons then the bias, each scaled by the keep factor.
		neurons := append(slices.Clone(input), DefaultBiasActivation)
		var want float64
		for i, n := range neurons {
			want += nw.Weights()[i] * n * (1 - rate)
		}

		if got := mustCompute(t, nw, input); !scalar.EqualWithinAbsOrRel(got[0], want, defTol, defTol) {
			t.Errorf("seed %d: output = %v, want %v", seed, got[0], want)
		}
	}
}

func TestComputeDropoutScaling(t *testing.T) {
	layers := func() []*LayerConfig {
		return []*LayerConfig{
			Input(2, NoBias()),
			Dense(1, Activation("linear"), NoBias(), Dropout(0.5)),
		}
	}
	weights := []float64{0.5, -0.5}
	input := []float64{1.0, 2.0}

	plain := NewNetwork(layers()...)
	if err := plain.SetWeights(weights); err != nil {
		t.Fatal(err)
	}
	dropped := NewDropoutNetwork(layers()...)
	if err := dropped.SetWeights(weights); err != nil {
		t.Fatal(err)
	}

	want := mustCompute(t, plain, input)
	if !floats.EqualApprox(want, []float64{-0.5}, defTol) {
		t.Fatalf("network without dropout = %v, want [-0.5]", want)
	}
	floats.Scale(1-0.5, want)

	if got := mustCompute(t, dropped, input); !floats.EqualApprox(got, want, defTol) {
		t.Errorf("dropout output = %v, want %v", got, want)
	}
	if got := dropped.LayerDropoutRates(); !slices.Equal(got, []float64{0.5, 0}) {
		t.Errorf("LayerDropoutRates = %v, want [0.5 0]", got)
	}
}

func TestComputeInputSize(t *testing.T) {
	nw := NewFeedforward(3, 2, 0, 1, false)

	if _, err := nw.Compute([]float64{1, 2}); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("short input: err = %v, want ErrInvalidSize", err)
	}
	if err := nw.ComputeInto([]float64{1, 2, 3}, make([]float64, 2)); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("long output: err = %v, want ErrInvalidSize", err)
	}
	if err := nw.SetWeights(make([]float64, 3)); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("SetWeights: err = %v, want ErrInvalidSize", err)
	}
}

func TestComputeSingleLayer(t *testing.T) {
	nw := NewNetwork(Input(2, NoBias()))
	got := mustCompute(t, nw, []float64{4, 5})
	if !slices.Equal(got, []float64{4, 5}) {
		t.Errorf("output = %v, want the input back", got)
	}
}

func TestCustomActivation(t *testing.T) {
	double := ActivationFuncOf(func(x float64) float64 { return 2 * x })
	nw := NewNetwork(Input(1, NoBias()), Dense(1, ActivationFn(double), NoBias()))
	fill(nw, 3)

	if got := mustCompute(t, nw, []float64{1}); got[0] != 6 {
		t.Errorf("output = %g, want 6", got[0])
	}
}

func TestClearContext(t *testing.T) {
	nw := NewNetwork(Input(2, Bias(0.5)), Dense(3), Dense(1, NoBias()))
	nw.Randomize()
	mustCompute(t, nw, []float64{1, -1})

	nw.ClearContext()
	want := []float64{0, 0, 0, 0, 1, 0, 0, 0.5}
	if got := nw.LayerOutput(); !slices.Equal(got, want) {
		t.Errorf("LayerOutput after ClearContext = %v, want %v", got, want)
	}
}

func TestDeterminismAfterClearContext(t *testing.T) {
	nw := NewElman(2, 5, 2)
	nw.Randomize()
	input := []float64{0.25, -0.75}

	first := mustCompute(t, nw, input)
	nw.ClearContext()
	second := mustCompute(t, nw, input)

	if !slices.Equal(first, second) {
		t.Errorf("outputs differ after ClearContext: %v vs %v", first, second)
	}
}

func TestFeedforwardHasNoMemory(t *testing.T) {
	nw := NewFeedforward(3, 4, 3, 2, true)
	nw.Randomize()
	if nw.HasContext() {
		t.Fatal("feedforward network reports context")
	}

	input := []float64{0.1, 0.2, 0.3}
	first := mustCompute(t, nw, input)
	mustCompute(t, nw, []float64{-5, 7, 2})
	again := mustCompute(t, nw, input)

	if !slices.Equal(first, again) {
		t.Errorf("feedforward output depends on history: %v vs %v", first, again)
	}
}

func TestRecurrentDelay(t *testing.T) {
	tests := []struct {
		name    string
		configs []*LayerConfig
		inputs  []float64
		want    []float64
	}{
		// hidden = 0.5*(x + bias + c0 + c1), out = 0.5*(h0 + h1)
		{"elman", elmanConfigs(), []float64{1, 1, 1}, []float64{1, 2, 3}},
		// hidden = x + bias + previous out, out = hidden
		{"jordan", jordanConfigs(), []float64{1, 1, 1}, []float64{2, 4, 6}},
		// out = x + previous x
		{"input context", inputContextConfigs(), []float64{1, 2, 5}, []float64{1, 3, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nw := NewNetwork(tt.configs...)
			if tt.name == "elman" {
				fill(nw, 0.5)
			} else {
				fill(nw, 1)
			}

			for step, x := range tt.inputs {
				got := mustCompute(t, nw, []float64{x})
				if !floats.EqualApprox(got, []float64{tt.want[step]}, defTol) {
					t.Errorf("step %d: output = %v, want %g", step, got, tt.want[step])
				}
			}
		})
	}
}

func TestRandomizeRange(t *testing.T) {
	nw := NewFeedforward(10, 10, 10, 10, false)
	nw.RandomizeRange(0.25, -0.75)

	for i, w := range nw.Weights() {
		if w < -0.75 || w >= 0.25 {
			t.Fatalf("weight %d = %g outside [-0.75, 0.25)", i, w)
		}
	}

	a := NewFeedforward(4, 3, 0, 2, false)
	b := NewFeedforward(4, 3, 0, 2, false)
	a.RandomizeRangeWith(rand.New(rand.NewPCG(3, 4)), 1, -1)
	b.RandomizeRangeWith(rand.New(rand.NewPCG(3, 4)), 1, -1)
	if !slices.Equal(a.Weights(), b.Weights()) {
		t.Error("same seed produced different weights")
	}
}

func TestCloneStructure(t *testing.T) {
	nw := NewElman(1, 3, 1)
	nw.Randomize()
	clone := nw.CloneStructure()

	mustCompute(t, nw, []float64{1})
	mustCompute(t, nw, []float64{1})

	// The clone shares weights but not the recurrent state.
	fresh := NewElman(1, 3, 1)
	if err := fresh.SetWeights(nw.Weights()); err != nil {
		t.Fatal(err)
	}
	if got, want := mustCompute(t, clone, []float64{1}), mustCompute(t, fresh, []float64{1}); !slices.Equal(got, want) {
		t.Errorf("clone output = %v, want %v", got, want)
	}

	nw.Weights()[0] = 42
	if clone.Weights()[0] != 42 {
		t.Error("clone does not see weight updates")
	}
}
