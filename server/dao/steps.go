package dao

import (
	"encoding/base64"
	"fmt"

	"github.com/dekarrin/rezi"
)

// Steps is the recorded steps of a Solve. It is stored as a single REZI blob.
type Steps []Step

// MarshalBinary encodes the Step into REZI bytes.
func (s Step) MarshalBinary() ([]byte, error) {
	var data []byte
	data = append(data, rezi.EncInt(s.Number)...)
	data = append(data, rezi.EncString(s.Display)...)
	data = append(data, rezi.EncInt(len(s.Changes))...)
	for _, ch := range s.Changes {
		data = append(data, rezi.EncString(ch)...)
	}
	return data, nil
}

// UnmarshalBinary decodes REZI bytes made by MarshalBinary into the Step.
func (s *Step) UnmarshalBinary(data []byte) error {
	var n int
	var err error

	s.Number, n, err = rezi.DecInt(data)
	if err != nil {
		return fmt.Errorf("number: %w", err)
	}
	data = data[n:]

	s.Display, n, err = rezi.DecString(data)
	if err != nil {
		return fmt.Errorf("display: %w", err)
	}
	data = data[n:]

	count, n, err := rezi.DecInt(data)
	if err != nil {
		return fmt.Errorf("change count: %w", err)
	}
	data = data[n:]

	s.Changes = nil
	for i := 0; i < count; i++ {
		var ch string
		ch, n, err = rezi.DecString(data)
		if err != nil {
			return fmt.Errorf("change %d: %w", i, err)
		}
		data = data[n:]
		s.Changes = append(s.Changes, ch)
	}
	return nil
}

// MarshalBinary encodes every Step in order.
func (steps Steps) MarshalBinary() ([]byte, error) {
	data := rezi.EncInt(len(steps))
	for i := range steps {
		data = append(data, rezi.EncBinary(steps[i])...)
	}
	return data, nil
}

// UnmarshalBinary decodes bytes made by MarshalBinary, replacing any Steps
// already present.
func (steps *Steps) UnmarshalBinary(data []byte) error {
	count, n, err := rezi.DecInt(data)
	if err != nil {
		return fmt.Errorf("step count: %w", err)
	}
	data = data[n:]

	if count == 0 {
		*steps = nil
		return nil
	}

	decoded := make(Steps, count)
	for i := range decoded {
		n, err = rezi.DecBinary(data, &decoded[i])
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		data = data[n:]
	}
	*steps = decoded
	return nil
}

// EncodeSteps encodes steps as base64 text suitable for a text column.
func EncodeSteps(steps Steps) string {
	return base64.StdEncoding.EncodeToString(rezi.EncBinary(steps))
}

// DecodeSteps decodes text made by EncodeSteps. Errors match
// ErrDecodingFailure.
func DecodeSteps(s string) (Steps, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %w", ErrDecodingFailure, err)
	}

	var steps Steps
	if _, err := rezi.DecBinary(data, &steps); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodingFailure, err)
	}
	return steps, nil
}
