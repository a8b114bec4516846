package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/mitchellh/mapstructure"
)

// SessionVersion is the version tag written into every encoded session record.
const SessionVersion = 1

// User is the authenticated identity the client holds: a bearer token and the
// numeric identifier of the account it belongs to.
type User struct {
	Token string `json:"token" mapstructure:"token"`
	ID    int64  `json:"id" mapstructure:"id"`
}

// sessionRecord is the persisted shape of a User.
type sessionRecord struct {
	Version int    `json:"v" mapstructure:"v"`
	Token   string `json:"token" mapstructure:"token"`
	ID      int64  `json:"id" mapstructure:"id"`
}

// EncodeUser serializes a User into the versioned session record.
func EncodeUser(u User) (string, error) {
	if u.Token == "" {
		return "", fmt.Errorf("%w: empty token", ErrMalformedSession)
	}
	data, err := json.Marshal(sessionRecord{
		Version: SessionVersion,
		Token:   u.Token,
		ID:      u.ID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal session: %w", err)
	}
	return string(data), nil
}

// DecodeUser parses a persisted session payload.
// Records without a version tag are read as the legacy {"token","id"} shape,
// where id may have been stored as a number or a numeric string.
func DecodeUser(payload string) (*User, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(payload)))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSession, err)
	}
	if err := dec.Decode(new(json.RawMessage)); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after record", ErrMalformedSession)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: empty record", ErrMalformedSession)
	}

	var rec sessionRecord
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &rec,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSession, err)
	}

	if rec.Version > SessionVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformedSession, rec.Version)
	}
	if rec.Token == "" {
		return nil, fmt.Errorf("%w: missing token", ErrMalformedSession)
	}

	return &User{Token: rec.Token, ID: rec.ID}, nil
}
