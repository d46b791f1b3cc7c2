package ml

import "github.com/pkg/errors"

// ContextState is the recurrent state of a network: the values held in every
// layer's context neurons, concatenated output layer first.
type ContextState []float64

// contextSize is the total number of context neurons.
func (nw *NeuralNetwork) contextSize() int {
	n := 0
	for _, c := range nw.layerContextCount {
		n += c
	}
	return n
}

// contextRegion returns the neuron buffer range holding layer i's context.
// Context neurons trail the fed and bias neurons of a layer.
func (nw *NeuralNetwork) contextRegion(i int) (int, int) {
	end := nw.layerIndex[i] + nw.layerCounts[i]
	return end - nw.layerContextCount[i], end
}

// Context returns a copy of the current recurrent state.
func (nw *NeuralNetwork) Context() ContextState {
	state := make(ContextState, 0, nw.contextSize())
	for i := range nw.layerCounts {
		start, end := nw.contextRegion(i)
		state = append(state, nw.layerOutput[start:end]...)
	}
	return state
}

// SetContext loads state into the context neurons. A nil state clears them.
func (nw *NeuralNetwork) SetContext(state ContextState) error {
	if state == nil {
		for i := range nw.layerCounts {
			start, end := nw.contextRegion(i)
			clear(nw.layerOutput[start:end])
		}
		return nil
	}
	if len(state) != nw.contextSize() {
		return errors.Wrapf(ErrInvalidSize, "context state has %d values, network has %d context neurons", len(state), nw.contextSize())
	}
	pos := 0
	for i := range nw.layerCounts {
		start, end := nw.contextRegion(i)
		pos += copy(nw.layerOutput[start:end], state[pos:])
	}
	return nil
}

// Step computes one time step from an explicit state and returns the output
// together with the state to pass to the following step. Threading the
// returned state through successive calls gives the same outputs as calling
// Compute repeatedly on one network.
func (nw *NeuralNetwork) Step(input []float64, state ContextState) ([]float64, ContextState, error) {
	if err := nw.SetContext(state); err != nil {
		return nil, nil, err
	}
	output, err := nw.Compute(input)
	if err != nil {
		return nil, nil, err
	}
	return output, nw.Context(), nil
}
