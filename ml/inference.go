package ml

import (
	"sync"

	"github.com/pkg/errors"
)

// greedySample finds the index of the maximum value.
func greedySample(probs []float64) int {
	maxProb := probs[0]
	maxIdx := 0
	for i, p := range probs {
		if p > maxProb {
			maxProb = p
			maxIdx = i
		}
	}
	return maxIdx
}

// Predict runs one forward pass and returns the index of the strongest
// output together with its value.
func (nw *NeuralNetwork) Predict(inputData []float64) (int, float64, error) {
	if nw.outputCount == 0 {
		return 0, 0, errors.Wrap(ErrInvalidSize, "network has no outputs")
	}
	output, err := nw.Compute(inputData)
	if err != nil {
		return 0, 0, err
	}
	bestClass := greedySample(output)
	return bestClass, output[bestClass], nil
}

// RunSequence clears the recurrent state and feeds inputs in order, one
// time step per row.
func (nw *NeuralNetwork) RunSequence(inputs [][]float64) ([][]float64, error) {
	nw.ClearContext()
	outputs := make([][]float64, len(inputs))
	for t, input := range inputs {
		output, err := nw.Compute(input)
		if err != nil {
			return nil, errors.Wrapf(err, "step %d", t)
		}
		outputs[t] = output
	}
	return outputs, nil
}

// ComputeBatch evaluates independent rows on numWorkers clones of the
// network in parallel. Every row starts from a cleared context, so the
// result does not depend on how rows are split between workers.
func (nw *NeuralNetwork) ComputeBatch(inputs [][]float64, numWorkers int) ([][]float64, error) {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if numWorkers > len(inputs) {
		numWorkers = len(inputs)
	}

	outputs := make([][]float64, len(inputs))
	errs := make([]error, numWorkers)

	var wg sync.WaitGroup
	wg.Add(numWorkers)

	// --- Data Parallelism: Dispatch Workers ---
	for i := 0; i < numWorkers; i++ {
		go func(id int) {
			defer wg.Done()
			worker := nw.CloneStructure()
			for row := id; row < len(inputs); row += numWorkers {
				worker.ClearContext()
				out, err := worker.Compute(inputs[row])
				if err != nil {
					errs[id] = errors.Wrapf(err, "row %d", row)
					return
				}
				outputs[row] = out
			}
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return outputs, nil
}
