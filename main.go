package main

import (
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/b0tShaman/flatnet/data"
	. "github.com/b0tShaman/flatnet/ml"
)

// -------- MAIN -------- //
func main() {
	modelFile := "assets/model.gob"
	sequenceFile := "assets/sequence.csv"

	inputDim := 1
	hiddenDim := 8
	outputDim := 1

	// 1. Build an Elman network: the input layer carries the previous hidden state
	in := Input(inputDim)
	hidden := Dense(hiddenDim, Activation("tanh"))
	in.FeedContextFrom(hidden)
	out := Dense(outputDim, Activation("linear"), NoBias())
	nw := NewNetwork(in, hidden, out)

	fmt.Printf("Network: %d layers, %d neurons, %d weights, context=%v\n",
		nw.LayerCount(), nw.NeuronCount(), nw.EncodeLength(), nw.HasContext())

	// 2. Weights: load if present, otherwise a reproducible random fill
	nw.RandomizeRangeWith(rand.New(rand.NewPCG(1, 2)), 0.5, -0.5)
	if _, err := os.Stat(modelFile); err == nil {
		fmt.Println("Found existing model. Loading weights...")
		if err := nw.LoadFromFile(modelFile); err != nil {
			fmt.Printf("⚠️ Model mismatch (%v). Using random weights.\n", err)
		}
	}

	// 3. Load Data
	seq, err := data.LoadCSV(sequenceFile)
	if err != nil {
		fmt.Println("No sequence file, using a sine wave:", err)
		seq = data.SineSequence(16, 0)
	} else {
		data.MinMaxNormalize(seq)
	}

	// 4. Run the sequence, threading the recurrent state explicitly
	var state ContextState
	for t, x := range seq {
		var y []float64
		y, state, err = nw.Step(x, state)
		if err != nil {
			fmt.Println("Error in Step:", err)
			return
		}
		fmt.Printf("t=%2d  x=%v  y=%.4f\n", t, x, y)
	}

	if err := os.MkdirAll("assets", 0o755); err != nil {
		fmt.Println("Error creating assets dir:", err)
		return
	}
	if err := nw.SaveToFile(modelFile); err != nil {
		fmt.Println("Error saving model:", err)
	}
}
