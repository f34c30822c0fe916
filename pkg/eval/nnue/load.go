package nnue

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Model file layout ("CNUE"): 4-byte magic; little-endian uint32 version,
// inputDim, hidden1, hidden2, actMax, shift2, shift3; then inputDim*hidden1
// int16 feature weights (feature-major), hidden1 int32 biases, hidden2*hidden1
// int8 weights, hidden2 int32 biases, hidden2 int8 output weights, one int32
// output bias.
func LoadWeights(f io.Reader) (*Weights, error) {
	var magic [4]byte
	if _, err := io.ReadFull(f, magic[:]); err != nil {
		return nil, fmt.Errorf("nnue: failed to read header: %w", err)
	}
	if string(magic[:]) != "CNUE" {
		return nil, fmt.Errorf("nnue: bad magic %q (expected CNUE)", magic[:])
	}

	var header struct {
		Version  uint32
		InputDim uint32
		Hidden1  uint32
		Hidden2  uint32
		ActMax   uint32
		Shift2   uint32
		Shift3   uint32
	}
	if err := binary.Read(f, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("nnue: failed to read header fields: %w", err)
	}

	if header.Version != Version {
		return nil, fmt.Errorf("nnue: unsupported version %v", header.Version)
	}
	if header.InputDim != InputSize || header.Hidden1 != Hidden1 || header.Hidden2 != Hidden2 {
		return nil, fmt.Errorf("nnue: shape mismatch (model %vx%vx%v, engine %vx%vx%v)",
			header.InputDim, header.Hidden1, header.Hidden2, InputSize, Hidden1, Hidden2)
	}
	if header.ActMax != ActMax {
		return nil, fmt.Errorf("nnue: activation clamp mismatch")
	}
	if header.Shift2 > 31 || header.Shift3 > 31 {
		return nil, fmt.Errorf("nnue: invalid shift values")
	}

	var w = &Weights{
		FtWeights: make([]int16, InputSize*Hidden1),
		L2Weights: make([]int8, Hidden2*Hidden1),
		Shift2:    header.Shift2,
		Shift3:    header.Shift3,
	}

	if err := binary.Read(f, binary.LittleEndian, w.FtWeights); err != nil {
		return nil, fmt.Errorf("nnue: failed to read feature weights: %w", err)
	}
	if err := binary.Read(f, binary.LittleEndian, w.FtBiases[:]); err != nil {
		return nil, fmt.Errorf("nnue: failed to read feature biases: %w", err)
	}
	if err := binary.Read(f, binary.LittleEndian, w.L2Weights); err != nil {
		return nil, fmt.Errorf("nnue: failed to read layer-2 weights: %w", err)
	}
	if err := binary.Read(f, binary.LittleEndian, w.L2Biases[:]); err != nil {
		return nil, fmt.Errorf("nnue: failed to read layer-2 biases: %w", err)
	}
	if err := binary.Read(f, binary.LittleEndian, w.OutWeights[:]); err != nil {
		return nil, fmt.Errorf("nnue: failed to read output weights: %w", err)
	}
	if err := binary.Read(f, binary.LittleEndian, &w.OutBias); err != nil {
		return nil, fmt.Errorf("nnue: failed to read output bias: %w", err)
	}

	return w, nil
}

func LoadWeightsFile(path string) (*Weights, error) {
	var f, err = os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("nnue: %w", err)
	}
	defer f.Close()
	return LoadWeights(bufio.NewReader(f))
}
