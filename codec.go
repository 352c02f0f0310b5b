package httpsession

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// EncodeFunc serializes session data into the text stored as a backend
// record.
type EncodeFunc func(data map[string]any) (string, error)

// DecodeFunc parses a backend record back into session data.
type DecodeFunc func(raw string) (map[string]any, error)

// KeyFactory produces a fresh unique session identity.
type KeyFactory func() (string, error)

var errNotObject = errors.New("decode session data: payload is not an object")

// EncodeJSON is the default EncodeFunc. Nil data encodes as an empty object.
func EncodeJSON(data map[string]any) (string, error) {
	if data == nil {
		data = map[string]any{}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encode session data: %w", err)
	}
	return string(b), nil
}

// DecodeJSON is the default DecodeFunc. The record must hold a JSON object;
// any other JSON value counts as corrupt.
func DecodeJSON(raw string) (map[string]any, error) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("decode session data: %w", err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	return m, nil
}

// HexKeyFactory is the default KeyFactory: 32 lowercase hex characters from
// a random UUID.
func HexKeyFactory() (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate session key: %w", err)
	}
	return hex.EncodeToString(u[:]), nil
}
