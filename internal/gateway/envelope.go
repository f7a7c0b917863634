package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// envelope is the response wrapper used by every JSON endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Detail  json.RawMessage `json:"detail"`
	Error   json.RawMessage `json:"error"`
	Message json.RawMessage `json:"message"`
	// Tickets is read only by search, which some deployments answer outside data.
	Tickets json.RawMessage `json:"tickets"`

	status int
}

// parseEnvelope decodes body leniently. Empty or malformed bodies yield an unsuccessful envelope.
func parseEnvelope(body []byte) envelope {
	var env envelope
	if len(bytes.TrimSpace(body)) == 0 {
		return env
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return envelope{}
	}
	return env
}

// errorMessage picks detail, then error, then message. Empty means none was usable.
func (e envelope) errorMessage() string {
	for _, raw := range []json.RawMessage{e.Detail, e.Error, e.Message} {
		if text := messageText(raw); text != "" {
			return text
		}
	}
	return ""
}

// hasData reports whether the envelope carries a non-null, non-empty data value.
func (e envelope) hasData() bool {
	switch string(bytes.TrimSpace(e.Data)) {
	case "", "null", "{}", "[]", `""`, "false":
		return false
	}
	return true
}

func (e envelope) decode(route string, out any) error {
	return e.decodeField(route, e.Data, out)
}

// decodeField unmarshals raw into out. Absent and null values leave out untouched.
func (e envelope) decodeField(route string, raw json.RawMessage, out any) error {
	if out == nil {
		return nil
	}
	data := bytes.TrimSpace(raw)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("gateway: decode %s response: %w", route, err)
	}
	return nil
}

// messageText renders one candidate message field. Strings are used as-is,
// other non-falsy JSON values (validation arrays, objects) as their JSON text.
func messageText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	switch string(trimmed) {
	case "", "null", "false", "0", `""`:
		return ""
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return string(trimmed)
}
