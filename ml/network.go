package ml

import (
	"math/rand/v2"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

var (
	// ErrInvalidIndex reports a layer or neuron number outside the topology,
	// or a connection that does not exist.
	ErrInvalidIndex = errors.New("invalid index")
	// ErrInvalidSize reports a buffer whose length does not match the topology.
	ErrInvalidSize = errors.New("invalid size")
)

// NeuralNetwork is a flat network: all neuron outputs live in one buffer and
// all weights in another, addressed through the offsets of its Topology.
// An instance is not safe for concurrent use; see CloneStructure.
type NeuralNetwork struct {
	*Topology

	weights     []float64
	layerOutput []float64
	layerSums   []float64 // pre-activation values of fed neurons
}

// Neural Network Builder
func NewNetwork(configs ...*LayerConfig) *NeuralNetwork {
	return newNetwork(configs, false)
}

// NewDropoutNetwork builds a network that honours each layer's DropoutRate.
func NewDropoutNetwork(configs ...*LayerConfig) *NeuralNetwork {
	return newNetwork(configs, true)
}

func newNetwork(configs []*LayerConfig, dropout bool) *NeuralNetwork {
	if len(configs) == 0 {
		panic("Network must have at least one layer")
	}
	for i, cfg := range configs {
		if cfg == nil {
			panic(errors.Errorf("layer %d is nil", i).Error())
		}
	}

	t := encode(configs, dropout)
	nw := &NeuralNetwork{
		Topology:    t,
		weights:     make([]float64, t.weightCount),
		layerOutput: make([]float64, t.neuronCount),
		layerSums:   make([]float64, t.neuronCount),
	}
	nw.ClearContext()
	return nw
}

// NewFeedforward builds a network with up to two hidden layers. A hidden
// count of zero omits that layer.
func NewFeedforward(input, hidden1, hidden2, output int, tanh bool) *NeuralNetwork {
	act := "sigmoid"
	if tanh {
		act = "tanh"
	}

	configs := []*LayerConfig{Input(input)}
	for _, hidden := range []int{hidden1, hidden2} {
		if hidden > 0 {
			configs = append(configs, Dense(hidden, Activation(act)))
		}
	}
	configs = append(configs, Dense(output, Activation(act), NoBias()))
	return NewNetwork(configs...)
}

// NewElman builds a simple recurrent network whose input layer carries a
// copy of the previous hidden activations.
func NewElman(input, hidden, output int) *NeuralNetwork {
	in := Input(input)
	h := Dense(hidden, Activation("sigmoid"))
	in.FeedContextFrom(h)
	out := Dense(output, Activation("sigmoid"), NoBias())
	return NewNetwork(in, h, out)
}

// NewJordan builds a simple recurrent network whose input layer carries a
// copy of the previous output.
func NewJordan(input, hidden, output int) *NeuralNetwork {
	in := Input(input)
	h := Dense(hidden, Activation("sigmoid"))
	out := Dense(output, Activation("sigmoid"), NoBias())
	in.FeedContextFrom(out)
	return NewNetwork(in, h, out)
}

// -------- NEURAL NETWORK METHODS -------- //

// ClearContext zeroes every neuron, rewrites the bias constants and drops
// any recurrent state.
func (nw *NeuralNetwork) ClearContext() {
	index := 0
	for i := range nw.layerIndex {
		feed := nw.layerFeedCounts[i]
		ctx := nw.layerContextCount[i]
		hasBias := feed+ctx != nw.layerCounts[i]

		clear(nw.layerOutput[index : index+feed])
		index += feed

		if hasBias {
			nw.layerOutput[index] = nw.biasActivation[i]
			index++
		}

		clear(nw.layerOutput[index : index+ctx])
		index += ctx
	}
}

// Compute runs one forward pass and returns a new output slice.
func (nw *NeuralNetwork) Compute(input []float64) ([]float64, error) {
	output := make([]float64, nw.outputCount)
	if err := nw.ComputeInto(input, output); err != nil {
		return nil, err
	}
	return output, nil
}

// ComputeInto runs one forward pass, writing the result into output.
// Context neurons are updated as a side effect and are read on the next call.
func (nw *NeuralNetwork) ComputeInto(input, output []float64) error {
	if len(input) != nw.inputCount {
		return errors.Wrapf(ErrInvalidSize, "input has %d values, network expects %d", len(input), nw.inputCount)
	}
	if len(output) != nw.outputCount {
		return errors.Wrapf(ErrInvalidSize, "output has %d values, network produces %d", len(output), nw.outputCount)
	}

	last := len(nw.layerCounts) - 1
	sourceIndex := len(nw.layerOutput) - nw.layerCounts[last]
	copy(nw.layerOutput[sourceIndex:sourceIndex+nw.inputCount], input)

	for i := last; i > 0; i-- {
		nw.computeLayer(i)
	}

	// The input layer is never the target of computeLayer, so its own
	// context feedback is handled here.
	if size := nw.contextTargetSize[last]; size != 0 {
		offset := nw.contextTargetOffset[last]
		copy(nw.layerOutput[offset:offset+size], nw.layerOutput[sourceIndex:sourceIndex+size])
	}

	copy(output, nw.layerOutput[:nw.outputCount])
	return nil
}

// computeLayer feeds layer currentLayer into currentLayer-1.
func (nw *NeuralNetwork) computeLayer(currentLayer int) {
	inputIndex := nw.layerIndex[currentLayer]
	outputIndex := nw.layerIndex[currentLayer-1]
	inputSize := nw.layerCounts[currentLayer]
	outputSize := nw.layerFeedCounts[currentLayer-1]

	var dropoutRate float64
	if len(nw.layerDropoutRates) > currentLayer-1 {
		dropoutRate = nw.layerDropoutRates[currentLayer-1]
	}

	in := nw.layerOutput[inputIndex : inputIndex+inputSize]
	index := nw.weightIndex[currentLayer-1]

	for x := outputIndex; x < outputIndex+outputSize; x++ {
		sum := floats.Dot(nw.weights[index:index+inputSize], in)
		if dropoutRate != 0 {
			sum *= 1 - dropoutRate
		}
		index += inputSize

		nw.layerSums[x] = sum
		nw.layerOutput[x] = sum
	}

	out := nw.layerOutput[outputIndex : outputIndex+outputSize]
	nw.activationFunctions[currentLayer-1].Apply(out)

	if size := nw.contextTargetSize[currentLayer-1]; size != 0 {
		offset := nw.contextTargetOffset[currentLayer-1]
		copy(nw.layerOutput[offset:offset+size], nw.layerOutput[outputIndex:outputIndex+size])
	}
}

// Randomize fills the weights uniformly in [-1, 1).
func (nw *NeuralNetwork) Randomize() {
	nw.RandomizeRange(1, -1)
}

// RandomizeRange fills the weights uniformly in [lo, hi).
func (nw *NeuralNetwork) RandomizeRange(hi, lo float64) {
	for i := range nw.weights {
		nw.weights[i] = rand.Float64()*(hi-lo) + lo
	}
}

// RandomizeRangeWith is RandomizeRange drawing from r, for reproducible runs.
func (nw *NeuralNetwork) RandomizeRangeWith(r *rand.Rand, hi, lo float64) {
	for i := range nw.weights {
		nw.weights[i] = r.Float64()*(hi-lo) + lo
	}
}

// SetWeights copies w into the weight buffer.
func (nw *NeuralNetwork) SetWeights(w []float64) error {
	if len(w) != len(nw.weights) {
		return errors.Wrapf(ErrInvalidSize, "got %d weights, network has %d", len(w), len(nw.weights))
	}
	copy(nw.weights, w)
	return nil
}

// Weights exposes the weight buffer. Writes through the slice are visible
// to the next Compute.
func (nw *NeuralNetwork) Weights() []float64 { return nw.weights }

// LayerOutput exposes the neuron buffer.
func (nw *NeuralNetwork) LayerOutput() []float64 { return nw.layerOutput }

// LayerSums exposes the pre-activation sums of the last Compute.
func (nw *NeuralNetwork) LayerSums() []float64 { return nw.layerSums }

// CloneStructure returns a network sharing this one's topology and weights
// but owning separate neuron buffers, so each clone can run on its own
// goroutine. Weight updates on either network are seen by both.
func (nw *NeuralNetwork) CloneStructure() *NeuralNetwork {
	clone := &NeuralNetwork{
		Topology:    nw.Topology,
		weights:     nw.weights,
		layerOutput: make([]float64, len(nw.layerOutput)),
		layerSums:   make([]float64, len(nw.layerSums)),
	}
	clone.ClearContext()
	return clone
}
