package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrCorruptRecord is returned when the persisted record is not a JSON user or null.
var ErrCorruptRecord = errors.New("session: corrupt persisted record")

var nullRecord = []byte("null")

// Encode serializes u as the persisted session record. A nil user encodes
// as JSON null.
func Encode(u *User) ([]byte, error) {
	if u == nil {
		return append([]byte(nil), nullRecord...), nil
	}
	return json.Marshal(u)
}

// Decode parses a persisted session record. Empty input and JSON null both
// decode to a nil user.
func Decode(data []byte) (*User, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, nullRecord) {
		return nil, nil
	}
	if data[0] != '{' {
		return nil, fmt.Errorf("%w: expected object or null", ErrCorruptRecord)
	}

	var u User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return &u, nil
}
