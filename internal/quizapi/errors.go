package quizapi

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// TransportError is the single failure kind of the quiz service boundary:
// network failures, non-2xx statuses and undecodable bodies all end up here.
type TransportError struct {
	Op         string // generate | evaluate | reference | health
	StatusCode int    // 0 when no response was received
	Detail     string // server-provided detail, if any
	Err        error
}

func (e *TransportError) Error() string {
	var b strings.Builder
	b.WriteString("quiz api ")
	b.WriteString(e.Op)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *TransportError) Unwrap() error { return e.Err }

const maxErrorBody = 4 << 10

// statusError reads what the service said about a failed request. FastAPI
// answers {"detail": "..."}; anything else is kept as trimmed text.
func statusError(op string, code int, body io.Reader) *TransportError {
	raw, _ := io.ReadAll(io.LimitReader(body, maxErrorBody))
	te := &TransportError{Op: op, StatusCode: code}
	var payload struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Detail != nil {
		switch d := payload.Detail.(type) {
		case string:
			te.Detail = d
		default:
			b, _ := json.Marshal(d)
			te.Detail = string(b)
		}
		return te
	}
	te.Detail = strings.TrimSpace(string(raw))
	return te
}
