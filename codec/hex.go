package codec

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidEncoding reports malformed hex input.
var ErrInvalidEncoding = errors.New("invalid encoding")

// BytesToHex encodes b as a lowercase hex string.
func BytesToHex(b []byte) string {
	return hex.EncodeToString(b)
}

// HexToBytes decodes an even-length hex string, upper or lower case.
func HexToBytes(h string) ([]byte, error) {
	if len(h)%2 != 0 {
		return nil, fmt.Errorf("odd length hex string %d: %w", len(h), ErrInvalidEncoding)
	}
	b, err := hex.DecodeString(h)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidEncoding)
	}
	return b, nil
}

// HexBytes is a byte payload that is written as lowercase hex and read from
// either a hex string or an array of byte values.
type HexBytes []byte

func (b HexBytes) String() string {
	return BytesToHex(b)
}

func (b HexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(BytesToHex(b))
}

func (b *HexBytes) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*b = nil
		return nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var values []int
		if err := json.Unmarshal(data, &values); err != nil {
			return fmt.Errorf("%v: %w", err, ErrInvalidEncoding)
		}
		out := make([]byte, len(values))
		for i, v := range values {
			if v < 0 || v > 255 {
				return fmt.Errorf("byte value %d out of range: %w", v, ErrInvalidEncoding)
			}
			out[i] = byte(v)
		}
		*b = out
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%v: %w", err, ErrInvalidEncoding)
	}
	out, err := HexToBytes(s)
	if err != nil {
		return err
	}
	*b = out
	return nil
}
