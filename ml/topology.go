package ml

import "reflect"

// Topology is the flat encoding of a layer stack. Every per-layer table is
// indexed in reverse: index 0 is the output layer and index LayerCount()-1
// is the input layer, so the forward sweep is a descending loop.
type Topology struct {
	inputCount  int
	outputCount int

	layerCounts       []int // neurons per layer including bias and context
	layerFeedCounts   []int // neurons driven by the previous layer
	layerContextCount []int
	layerIndex        []int // start of each layer in the neuron buffer
	weightIndex       []int // start of each layer's incoming weights

	contextTargetOffset []int
	contextTargetSize   []int

	biasActivation      []float64
	activationFunctions []ActivationFunc
	layerDropoutRates   []float64 // empty unless dropout is enabled

	hasContext  bool
	neuronCount int
	weightCount int
}

func encode(configs []*LayerConfig, dropout bool) *Topology {
	layerCount := len(configs)

	t := &Topology{
		inputCount:          configs[0].Neurons,
		outputCount:         configs[layerCount-1].Neurons,
		layerCounts:         make([]int, layerCount),
		layerFeedCounts:     make([]int, layerCount),
		layerContextCount:   make([]int, layerCount),
		layerIndex:          make([]int, layerCount),
		weightIndex:         make([]int, layerCount),
		contextTargetOffset: make([]int, layerCount),
		contextTargetSize:   make([]int, layerCount),
		biasActivation:      make([]float64, layerCount),
		activationFunctions: make([]ActivationFunc, layerCount),
		layerDropoutRates:   []float64{},
	}
	if dropout {
		t.layerDropoutRates = make([]float64, layerCount)
	}

	index := 0
	for i := layerCount - 1; i >= 0; i-- {
		layer := configs[i]

		t.biasActivation[index] = layer.BiasActivation
		t.layerCounts[index] = layer.TotalCount()
		t.layerFeedCounts[index] = layer.Neurons
		t.layerContextCount[index] = layer.ContextCount
		t.activationFunctions[index] = layer.Activation
		if layer.Activation == nil {
			t.activationFunctions[index] = ActLinear
		}
		if dropout {
			t.layerDropoutRates[index] = layer.DropoutRate
		}

		t.neuronCount += layer.TotalCount()
		if i > 0 {
			t.weightCount += layer.Neurons * configs[i-1].TotalCount()
		}

		if index > 0 {
			t.weightIndex[index] = t.weightIndex[index-1] + t.layerCounts[index]*t.layerFeedCounts[index-1]
			t.layerIndex[index] = t.layerIndex[index-1] + t.layerCounts[index-1]
		}

		// Find the layer whose context neurons this layer feeds. The running
		// offset walks the neuron buffer in its own (output first) order.
		neuronIndex := 0
		for j := layerCount - 1; j >= 0; j-- {
			consumer := configs[j]
			if consumer.ContextFedBy == layer {
				t.hasContext = true
				t.contextTargetSize[index] = consumer.ContextCount
				t.contextTargetOffset[index] = neuronIndex + consumer.TotalCount() - consumer.ContextCount
			}
			neuronIndex += consumer.TotalCount()
		}

		index++
	}

	return t
}

// internalLayer maps a forward-order layer number (0 = input) onto the
// reversed index used by the tables.
func (t *Topology) internalLayer(l int) int {
	return len(t.layerCounts) - l - 1
}

func (t *Topology) InputCount() int  { return t.inputCount }
func (t *Topology) OutputCount() int { return t.outputCount }
func (t *Topology) LayerCount() int  { return len(t.layerCounts) }
func (t *Topology) HasContext() bool { return t.hasContext }

// NeuronCount is the length of the neuron buffer.
func (t *Topology) NeuronCount() int { return t.neuronCount }

// EncodeLength is the length of the weight buffer.
func (t *Topology) EncodeLength() int { return t.weightCount }

func (t *Topology) LayerCounts() []int         { return t.layerCounts }
func (t *Topology) LayerFeedCounts() []int     { return t.layerFeedCounts }
func (t *Topology) LayerContextCount() []int   { return t.layerContextCount }
func (t *Topology) LayerIndex() []int          { return t.layerIndex }
func (t *Topology) WeightIndex() []int         { return t.weightIndex }
func (t *Topology) ContextTargetOffset() []int { return t.contextTargetOffset }
func (t *Topology) ContextTargetSize() []int   { return t.contextTargetSize }
func (t *Topology) BiasActivation() []float64  { return t.biasActivation }
func (t *Topology) LayerDropoutRates() []float64 {
	return t.layerDropoutRates
}
func (t *Topology) ActivationFunctions() []ActivationFunc {
	return t.activationFunctions
}

// LayerTotalNeuronCount returns the neuron count of forward-order layer l,
// bias and context included.
func (t *Topology) LayerTotalNeuronCount(l int) int {
	return t.layerCounts[t.internalLayer(l)]
}

// LayerNeuronCount returns the fed neuron count of forward-order layer l.
func (t *Topology) LayerNeuronCount(l int) int {
	return t.layerFeedCounts[t.internalLayer(l)]
}

// HasSameActivation reports whether every layer uses the same kind of
// activation, and returns it.
func (t *Topology) HasSameActivation() (ActivationFunc, bool) {
	if len(t.activationFunctions) == 0 {
		return nil, false
	}
	first := t.activationFunctions[0]
	for _, act := range t.activationFunctions[1:] {
		if reflect.TypeOf(act) != reflect.TypeOf(first) {
			return nil, false
		}
		if a, ok := act.(ActivationType); ok && a != first.(ActivationType) {
			return nil, false
		}
	}
	return first, true
}
