package models

import (
	"encoding/json"
	"fmt"
)

// ClaimedSecretField is the reserved JSON key carrying the admin secret
// inside a privileged request body.
const ClaimedSecretField = "claimedSecret"

// Claim wraps a mutation payload together with the admin secret the caller
// claims to hold. On the wire the payload fields and the secret share one
// flat JSON object; in Go they stay apart so that only Payload can reach
// storage.
type Claim[T any] struct {
	Payload       T
	ClaimedSecret string
}

// MarshalJSON flattens the payload object and adds the claimedSecret key.
func (c Claim[T]) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(c.Payload)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]json.RawMessage)
	if string(raw) != "null" {
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("claim payload must encode as a JSON object: %w", err)
		}
	}

	secret, err := json.Marshal(c.ClaimedSecret)
	if err != nil {
		return nil, err
	}
	fields[ClaimedSecretField] = secret

	return json.Marshal(fields)
}

// UnmarshalJSON splits a flat request body into Payload and ClaimedSecret.
func (c *Claim[T]) UnmarshalJSON(data []byte) error {
	var envelope struct {
		ClaimedSecret string `json:"claimedSecret"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}

	var payload T
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}

	c.Payload = payload
	c.ClaimedSecret = envelope.ClaimedSecret
	return nil
}

// String keeps the secret out of formatted output.
func (c Claim[T]) String() string {
	return fmt.Sprintf("Claim{Payload:%+v ClaimedSecret:[redacted]}", c.Payload)
}
