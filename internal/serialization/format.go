package serialization

import "google.golang.org/protobuf/encoding/protowire"

// Format constants.
const (
	MagicBytes   = "BWGW"
	ChecksumSize = 32 // SHA-256 checksum size (32 bytes)
	MaxValues    = 1 << 28
)

// Field numbers of the record message.
const (
	fieldConfiguration  protowire.Number = 1
	fieldKernelRows     protowire.Number = 2
	fieldKernelCols     protowire.Number = 3
	fieldOutputChannels protowire.Number = 4
	fieldInputChannels  protowire.Number = 5
	fieldCoefficients   protowire.Number = 6
	fieldValues         protowire.Number = 7
	fieldChecksum       protowire.Number = 8
)

// WeightsRecord is a filter bank in the transform domain.
type WeightsRecord struct {
	Configuration  string    // Configuration name, e.g. "F(2x2,3x3)"
	KernelRows     int       // Spatial kernel height
	KernelCols     int       // Spatial kernel width
	OutputChannels int       // Filters in the bank
	InputChannels  int       // Channels per filter
	Coefficients   int       // Transform-domain matrices
	Values         []float32 // Coefficients*InputChannels*OutputChannels values
}

// Index returns the position of (coefficient, inputChannel, outputChannel) in Values.
func (r *WeightsRecord) Index(coefficient, inputChannel, outputChannel int) int {
	return (coefficient*r.InputChannels+inputChannel)*r.OutputChannels + outputChannel
}
