// Package main provides the winograd CLI.
package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/born-ml/winograd/backend/cpu"
	"github.com/born-ml/winograd/tensor"
	"github.com/born-ml/winograd/winograd"
)

const version = "v0.0.1-dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	var err error
	switch os.Args[1] {
	case "version":
		fmt.Printf("winograd %s\n", version)
	case "plan":
		err = plan(os.Args[2:])
	case "check":
		err = check(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("winograd - Winograd minimal-filtering convolution")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("  plan       Print tile counts, strides and workspace sizes")
	fmt.Println("  check      Compare against direct convolution on random data")
}

// shapeFlags are the flags shared by plan and check.
type shapeFlags struct {
	tile     int
	kernel   int
	batches  int
	rows     int
	cols     int
	inCh     int
	outCh    int
	same     bool
	seed     int64
	parallel bool
}

func parseShape(name string, args []string) (*shapeFlags, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	s := &shapeFlags{}
	fs.IntVar(&s.tile, "tile", 2, "output tile size m")
	fs.IntVar(&s.kernel, "kernel", 3, "kernel size r")
	fs.IntVar(&s.batches, "batches", 1, "batch size")
	fs.IntVar(&s.rows, "rows", 6, "input rows")
	fs.IntVar(&s.cols, "cols", 6, "input columns")
	fs.IntVar(&s.inCh, "in", 1, "input channels")
	fs.IntVar(&s.outCh, "out", 1, "output channels")
	fs.BoolVar(&s.same, "same", false, "use SAME padding instead of VALID")
	fs.Int64Var(&s.seed, "seed", 1, "random seed (check only)")
	fs.BoolVar(&s.parallel, "parallel", true, "use every CPU")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *shapeFlags) info() (*winograd.Configuration, winograd.Info, error) {
	cfg, err := winograd.Lookup(winograd.TileShape{Rows: s.tile, Cols: s.tile}, s.kernel)
	if err != nil {
		return nil, winograd.Info{}, err
	}
	padding := winograd.PaddingValid
	if s.same {
		padding = winograd.PaddingSame
	}
	info, err := winograd.NewInfo(cfg,
		winograd.NewKernelShape(s.outCh, s.inCh, s.kernel, s.kernel),
		winograd.NewTensor4DShape(s.batches, s.rows, s.cols, s.inCh),
		padding)
	return cfg, info, err
}

func plan(args []string) error {
	s, err := parseShape("plan", args)
	if err != nil {
		return err
	}
	cfg, info, err := s.info()
	if err != nil {
		return err
	}

	inputSize, err := cfg.InputStorageSize(s.batches, s.inCh, s.rows, s.cols, s.same)
	if err != nil {
		return err
	}
	outputSize, err := cfg.OutputStorageSize(s.batches, s.rows, s.cols, s.outCh, s.same)
	if err != nil {
		return err
	}
	workspace, err := cfg.WorkspaceSize(info.Kernel, info.Input, info.Padding)
	if err != nil {
		return err
	}

	fmt.Printf("Configuration:  %s (%d coefficients)\n", cfg, cfg.Coefficients())
	fmt.Printf("Padding:        %s\n", info.Padding)
	fmt.Printf("Input:          %s\n", info.Input)
	fmt.Printf("Output:         %s\n", info.OutputShape())
	fmt.Printf("Tiles:          %dx%d per batch, %d matrix rows\n", info.TileRows(), info.TileCols(), info.MatrixRows())
	fmt.Printf("Matrix stride:  %d\n", info.MatrixStride())
	fmt.Printf("Storage:        input %d, weights %d, output %d (dense)\n",
		inputSize, cfg.WeightStorageSize(s.outCh, s.inCh), outputSize)
	fmt.Printf("Workspace:      %d elements x 3\n", workspace)
	return nil
}

func check(args []string) error {
	s, err := parseShape("check", args)
	if err != nil {
		return err
	}
	cfg, info, err := s.info()
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(s.seed))
	input := random(rng, info.Input.TensorShape())
	weights := random(rng, info.Kernel.TensorShape())
	bias := random(rng, tensor.Shape{s.outCh})
	output, err := tensor.NewRaw(info.OutputShape().TensorShape(), tensor.Float32)
	if err != nil {
		return err
	}

	opts := winograd.DefaultOptions()
	opts.Parallel.Enabled = s.parallel && opts.Parallel.Enabled
	conv, err := winograd.NewConvolution(cfg, info, opts)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := conv.PrepareWeights(weights); err != nil {
		return err
	}
	prepared := time.Since(start)

	start = time.Now()
	if err := conv.Run(input, bias, output); err != nil {
		return err
	}
	ran := time.Since(start)

	pad := 0
	if s.same {
		pad = (s.kernel - 1) / 2
	}
	start = time.Now()
	want := cpu.New().Conv2D(input, weights, bias, 1, pad)
	direct := time.Since(start)

	var maxAbs, maxErr float64
	got := output.AsFloat32()
	for i, v := range want.AsFloat32() {
		maxAbs = math.Max(maxAbs, math.Abs(float64(v)))
		maxErr = math.Max(maxErr, math.Abs(float64(v-got[i])))
	}
	rel := maxErr / math.Max(maxAbs, 1)

	fmt.Printf("Configuration:  %s\n", cfg)
	fmt.Printf("Output:         %s\n", info.OutputShape())
	fmt.Printf("Weights:        %v\n", prepared)
	fmt.Printf("Winograd:       %v\n", ran)
	fmt.Printf("Direct:         %v\n", direct)
	fmt.Printf("Max error:      %.3g (relative %.3g)\n", maxErr, rel)
	if rel > 1e-4 {
		return fmt.Errorf("relative error %.3g exceeds 1e-4", rel)
	}
	fmt.Println("OK")
	return nil
}

func random(rng *rand.Rand, shape tensor.Shape) *tensor.RawTensor {
	values := make([]float32, shape.NumElements())
	for i := range values {
		values[i] = rng.Float32()*2 - 1
	}
	return tensor.MustFromFloat32(shape, values)
}
