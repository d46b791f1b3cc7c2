package ml

import (
	"encoding/gob"
	"fmt"
	"os"
	"slices"

	"github.com/pkg/errors"
)

// networkData is the on-disk form of a network's weights plus enough of the
// topology to reject a file written for a different architecture.
type networkData struct {
	LayerCounts     []int
	LayerFeedCounts []int
	BiasActivation  []float64
	Weights         []float64
}

// SaveToFile saves the neural network weights to a file.
func (nw *NeuralNetwork) SaveToFile(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	encoder := gob.NewEncoder(file)

	fmt.Println("Saving model to", filename)
	return encoder.Encode(networkData{
		LayerCounts:     nw.layerCounts,
		LayerFeedCounts: nw.layerFeedCounts,
		BiasActivation:  nw.biasActivation,
		Weights:         nw.weights,
	})
}

// LoadFromFile replaces the weights with ones saved by SaveToFile. The saved
// layer layout must match the network's.
func (nw *NeuralNetwork) LoadFromFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	decoder := gob.NewDecoder(file)

	var loadedData networkData
	if err := decoder.Decode(&loadedData); err != nil {
		return errors.Wrap(err, "failed to decode gob file")
	}

	// --- VALIDATION STEP ---
	if !slices.Equal(nw.layerCounts, loadedData.LayerCounts) {
		return errors.Errorf("architecture mismatch: layer counts %v, model file has %v",
			nw.layerCounts, loadedData.LayerCounts)
	}
	if !slices.Equal(nw.layerFeedCounts, loadedData.LayerFeedCounts) {
		return errors.Errorf("architecture mismatch: feed counts %v, model file has %v",
			nw.layerFeedCounts, loadedData.LayerFeedCounts)
	}
	if !slices.Equal(nw.biasActivation, loadedData.BiasActivation) {
		return errors.Errorf("architecture mismatch: bias activations %v, model file has %v",
			nw.biasActivation, loadedData.BiasActivation)
	}

	// --- APPLICATION STEP ---
	if err := nw.SetWeights(loadedData.Weights); err != nil {
		return err
	}
	fmt.Println("Weights loaded successfully.")
	return nil
}
