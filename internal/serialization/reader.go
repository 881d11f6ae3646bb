package serialization

import (
	"fmt"
	"io"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Unmarshal decodes and validates a record produced by Marshal.
// Unknown fields are skipped.
func Unmarshal(b []byte) (*WeightsRecord, error) {
	if len(b) < len(MagicBytes) || string(b[:len(MagicBytes)]) != MagicBytes {
		return nil, ErrInvalidMagic
	}
	b = b[len(MagicBytes):]

	var (
		r        WeightsRecord
		values   []byte
		checksum []byte
		seen     = map[protowire.Number]bool{}
	)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrTruncated, protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldConfiguration && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: configuration: %v", ErrTruncated, protowire.ParseError(n))
			}
			r.Configuration, b = s, b[n:]
		case num >= fieldKernelRows && num <= fieldCoefficients && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: field %d: %v", ErrTruncated, num, protowire.ParseError(n))
			}
			if v > math.MaxInt32 {
				return nil, &ValidationError{Type: "invalid_dimension", Field: fmt.Sprint(num), Details: fmt.Sprintf("%d overflows", v)}
			}
			*r.dimension(num) = int(v)
			b = b[n:]
		case (num == fieldValues || num == fieldChecksum) && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: field %d: %v", ErrTruncated, num, protowire.ParseError(n))
			}
			if num == fieldValues {
				values = v
			} else {
				checksum = v
			}
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("%w: field %d: %v", ErrTruncated, num, protowire.ParseError(n))
			}
			b = b[n:]
		}
		seen[num] = true
	}

	if !seen[fieldChecksum] {
		return nil, &ValidationError{Type: "missing_field", Field: "checksum", Details: "record has no checksum"}
	}
	if err := ValidateChecksum(ComputeChecksum(values), checksum); err != nil {
		return nil, err
	}
	if len(values)%4 != 0 {
		return nil, &ValidationError{Type: "size_mismatch", Field: "values", Details: fmt.Sprintf("%d bytes is not a multiple of 4", len(values))}
	}
	if len(values)/4 > MaxValues {
		return nil, fmt.Errorf("%w: %d, max %d", ErrTooManyValues, len(values)/4, MaxValues)
	}

	r.Values = make([]float32, len(values)/4)
	for i := range r.Values {
		v, _ := protowire.ConsumeFixed32(values[i*4:])
		r.Values[i] = math.Float32frombits(v)
	}
	if err := ValidateRecord(&r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Read decodes a record from rd, consuming it to EOF.
func Read(rd io.Reader) (*WeightsRecord, error) {
	b, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("failed to read record: %w", err)
	}
	return Unmarshal(b)
}

// dimension returns the integer field for a varint field number.
func (r *WeightsRecord) dimension(num protowire.Number) *int {
	switch num {
	case fieldKernelRows:
		return &r.KernelRows
	case fieldKernelCols:
		return &r.KernelCols
	case fieldOutputChannels:
		return &r.OutputChannels
	case fieldInputChannels:
		return &r.InputChannels
	default:
		return &r.Coefficients
	}
}
