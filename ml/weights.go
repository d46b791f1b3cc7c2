package ml

import "github.com/pkg/errors"

// ValidateNeuron checks that forward-order layer targetLayer exists and has
// a neuron (bias and context included) numbered neuron.
func (nw *NeuralNetwork) ValidateNeuron(targetLayer, neuron int) error {
	if targetLayer < 0 || targetLayer >= len(nw.layerCounts) {
		return errors.Wrapf(ErrInvalidIndex, "invalid layer count: %d", targetLayer)
	}
	if neuron < 0 || neuron >= nw.LayerTotalNeuronCount(targetLayer) {
		return errors.Wrapf(ErrInvalidIndex, "invalid neuron number: %d", neuron)
	}
	return nil
}

// weightOffset resolves a connection given in forward order to its position
// in the weight buffer.
func (nw *NeuralNetwork) weightOffset(fromLayer, fromNeuron, toNeuron int) (int, error) {
	if err := nw.ValidateNeuron(fromLayer, fromNeuron); err != nil {
		return 0, err
	}
	if fromLayer == len(nw.layerCounts)-1 {
		return 0, errors.Wrapf(ErrInvalidIndex, "the specified layer is not connected to another layer: %d", fromLayer)
	}
	if err := nw.ValidateNeuron(fromLayer+1, toNeuron); err != nil {
		return 0, err
	}

	fromLayerNumber := nw.internalLayer(fromLayer)
	toLayerNumber := fromLayerNumber - 1
	// Bias and context neurons have no incoming weights.
	if toNeuron >= nw.layerFeedCounts[toLayerNumber] {
		return 0, errors.Wrapf(ErrInvalidIndex, "neuron %d of layer %d is not fed by the previous layer", toNeuron, fromLayer+1)
	}

	return nw.weightIndex[toLayerNumber] + fromNeuron + toNeuron*nw.layerCounts[fromLayerNumber], nil
}

// GetWeight returns the weight from neuron fromNeuron of layer fromLayer to
// neuron toNeuron of layer fromLayer+1. Layers are numbered from the input
// layer (0).
func (nw *NeuralNetwork) GetWeight(fromLayer, fromNeuron, toNeuron int) (float64, error) {
	i, err := nw.weightOffset(fromLayer, fromNeuron, toNeuron)
	if err != nil {
		return 0, err
	}
	return nw.weights[i], nil
}

// SetWeight assigns the connection addressed as in GetWeight.
func (nw *NeuralNetwork) SetWeight(fromLayer, fromNeuron, toNeuron int, v float64) error {
	i, err := nw.weightOffset(fromLayer, fromNeuron, toNeuron)
	if err != nil {
		return err
	}
	nw.weights[i] = v
	return nil
}

// WeightMatrix returns the weights between forward-order layer fromLayer
// and the next one as a matrix with one row per fed neuron of the next
// layer and one column per neuron of fromLayer.
func (nw *NeuralNetwork) WeightMatrix(fromLayer int) (*Matrix, error) {
	if fromLayer < 0 || fromLayer >= len(nw.layerCounts)-1 {
		return nil, errors.Wrapf(ErrInvalidIndex, "the specified layer is not connected to another layer: %d", fromLayer)
	}
	from := nw.internalLayer(fromLayer)
	to := from - 1
	rows, cols := nw.layerFeedCounts[to], nw.layerCounts[from]
	if rows == 0 || cols == 0 {
		return nil, errors.Wrapf(ErrInvalidSize, "layers %d and %d have no connections", fromLayer, fromLayer+1)
	}
	start := nw.weightIndex[to]
	return NewMatrixFromSlice(rows, cols, nw.weights[start:start+rows*cols]), nil
}
