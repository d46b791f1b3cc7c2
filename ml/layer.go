package ml

const (
	// DefaultBiasActivation is the constant written into a layer's bias slot.
	DefaultBiasActivation = 1.0
	// NoBiasActivation marks a layer without a bias neuron.
	NoBiasActivation = 0.0
)

// -------- TYPE DEFINITIONS -------- //
type LayerOption func(*LayerConfig)

// LayerConfig holds the blueprint for a layer. Configs are passed by pointer
// so that ContextFedBy can refer to another layer of the same network.
type LayerConfig struct {
	Neurons        int            // neurons fed by the previous layer
	Activation     ActivationFunc // applied to the fed neurons
	BiasActivation float64        // 0 means no bias neuron
	DropoutRate    float64        // scaling applied to connections into this layer

	// Context neurons hold a copy of ContextFedBy's previous output.
	ContextCount int
	ContextFedBy *LayerConfig
}

// ------- LAYER CONFIG HELPERS ------- //
// Input defines the entry point dimensions
func Input(size int, opts ...LayerOption) *LayerConfig {
	lc := &LayerConfig{
		Neurons:        size,
		Activation:     ActLinear,
		BiasActivation: DefaultBiasActivation,
	}
	for _, opt := range opts {
		opt(lc)
	}
	return lc
}

// Dense defines a fully connected layer.
func Dense(size int, opts ...LayerOption) *LayerConfig {
	lc := &LayerConfig{
		Neurons:        size,
		Activation:     ActSigmoid, // Default for hidden layers
		BiasActivation: DefaultBiasActivation,
	}
	for _, opt := range opts {
		opt(lc)
	}
	return lc
}

// Activation selects a built-in activation by name and panics on an
// unknown one.
func Activation(activation string) LayerOption {
	return func(lc *LayerConfig) {
		act, exists := activationMap[activation]
		if !exists {
			panic("Unknown activation: " + activation)
		}
		lc.Activation = act
	}
}

// ActivationFn sets a caller supplied activation.
func ActivationFn(fn ActivationFunc) LayerOption {
	return func(lc *LayerConfig) {
		lc.Activation = fn
	}
}

// Bias sets the constant value held by the layer's bias neuron.
func Bias(activation float64) LayerOption {
	return func(lc *LayerConfig) {
		lc.BiasActivation = activation
	}
}

// NoBias drops the layer's bias neuron.
func NoBias() LayerOption {
	return Bias(NoBiasActivation)
}

// Dropout scales every connection into the layer by (1 - rate). It only
// takes effect on networks built with NewDropoutNetwork.
func Dropout(rate float64) LayerOption {
	return func(lc *LayerConfig) {
		lc.DropoutRate = rate
	}
}

// FeedContextFrom adds one context neuron per neuron of src. After src is
// activated its output is copied into those slots, to be read on the next
// Compute.
func (lc *LayerConfig) FeedContextFrom(src *LayerConfig) *LayerConfig {
	lc.ContextFedBy = src
	lc.ContextCount = src.Neurons
	return lc
}

// HasBias reports whether the layer carries a bias neuron.
func (lc *LayerConfig) HasBias() bool {
	return lc.BiasActivation != NoBiasActivation
}

// TotalCount is the neuron count including bias and context neurons.
func (lc *LayerConfig) TotalCount() int {
	total := lc.Neurons + lc.ContextCount
	if lc.HasBias() {
		total++
	}
	return total
}
