package serialization

import (
	"fmt"
	"io"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Marshal encodes a record, magic bytes included.
func Marshal(r *WeightsRecord) ([]byte, error) {
	if err := ValidateRecord(r); err != nil {
		return nil, fmt.Errorf("invalid record: %w", err)
	}

	values := make([]byte, 0, len(r.Values)*4)
	for _, v := range r.Values {
		values = protowire.AppendFixed32(values, math.Float32bits(v))
	}
	checksum := ComputeChecksum(values)

	b := make([]byte, 0, len(MagicBytes)+len(values)+len(r.Configuration)+64)
	b = append(b, MagicBytes...)
	b = protowire.AppendTag(b, fieldConfiguration, protowire.BytesType)
	b = protowire.AppendString(b, r.Configuration)
	for _, f := range []struct {
		num   protowire.Number
		value int
	}{
		{fieldKernelRows, r.KernelRows},
		{fieldKernelCols, r.KernelCols},
		{fieldOutputChannels, r.OutputChannels},
		{fieldInputChannels, r.InputChannels},
		{fieldCoefficients, r.Coefficients},
	} {
		b = protowire.AppendTag(b, f.num, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(f.value))
	}
	b = protowire.AppendTag(b, fieldValues, protowire.BytesType)
	b = protowire.AppendBytes(b, values)
	b = protowire.AppendTag(b, fieldChecksum, protowire.BytesType)
	b = protowire.AppendBytes(b, checksum[:])
	return b, nil
}

// Write encodes a record to w.
func Write(w io.Writer, r *WeightsRecord) error {
	b, err := Marshal(r)
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}
