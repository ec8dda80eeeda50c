package dto

import (
	"bytes"
	"fmt"
	"strconv"
)

// ID is a 64-bit identifier that is written as a JSON string and read from
// either a string or a number, so browser clients never lose precision.
type ID int64

// MarshalJSON encodes the id as a string
func (id ID) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(strconv.FormatInt(int64(id), 10))), nil
}

// UnmarshalJSON accepts 42 and "42"
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) >= 2 && b[0] == '"' && b[len(b)-1] == '"' {
		b = b[1 : len(b)-1]
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %s: must be an integer", string(b))
	}
	*id = ID(n)
	return nil
}

// Int64s converts a list of ids
func Int64s(ids []ID) []int64 {
	if ids == nil {
		return nil
	}
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}
