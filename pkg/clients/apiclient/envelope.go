package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// envelope is the superset of the response shapes the API uses: {success, data},
// {data}, or {success: false, error|message}. Some endpoints return the bare payload.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

// unwrapEnvelope returns the payload of a successful response body
func unwrapEnvelope(status int, body []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] != '{' {
		return trimmed, nil
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if env.Success != nil && !*env.Success {
		return nil, &APIError{StatusCode: status, Message: env.serverMessage()}
	}

	if env.Data != nil {
		return env.Data, nil
	}
	if env.Success != nil {
		// {success: true} with nothing else
		return nil, nil
	}
	return trimmed, nil
}

// errorMessage extracts a server-provided message from an error body, if any
func errorMessage(body []byte) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	return env.serverMessage()
}

func (e envelope) serverMessage() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}
