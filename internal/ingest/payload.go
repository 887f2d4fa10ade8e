package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrMalformedPayload = errors.New("backend returned a malformed payload")

// BackendError is an `{"error": "..."}` body returned where a list was expected.
type BackendError struct {
	Message string
	// Status is the HTTP status when the error came from a non-2xx reply.
	Status int
}

func (e *BackendError) Error() string {
	return "backend error: " + e.Message
}

func IsBackendError(err error) bool {
	var be *BackendError
	return errors.As(err, &be)
}

// RecordError describes one list element that could not be decoded. The
// element is dropped; the rest of the list survives.
type RecordError struct {
	Index int
	Err   error
}

func (e RecordError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

// decodeRecords only accepts a top-level JSON array. Each element is decoded
// on its own so one wrong-typed field costs one record, not the whole list.
func decodeRecords[T any](body []byte) ([]T, []RecordError, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil, ErrMalformedPayload
	}

	switch trimmed[0] {
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(trimmed, &elems); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}

		records := make([]T, 0, len(elems))
		var skipped []RecordError
		for i, elem := range elems {
			var rec T
			if err := json.Unmarshal(elem, &rec); err != nil {
				skipped = append(skipped, RecordError{Index: i, Err: err})
				continue
			}
			records = append(records, rec)
		}
		return records, skipped, nil
	case '{':
		if err := decodeErrorEnvelope(trimmed); err != nil {
			return nil, nil, err
		}
	}
	return nil, nil, ErrMalformedPayload
}

func decodeErrorEnvelope(body []byte) error {
	var envelope struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil
	}
	if msg := firstString(envelope.Error, envelope.Detail); msg != "" {
		return &BackendError{Message: strings.TrimSpace(msg)}
	}
	return nil
}

// DecodeErrorResponse turns a non-2xx body into an error, preferring the
// backend's own message over the bare status code.
func DecodeErrorResponse(status int, body []byte) error {
	var envelope struct {
		Error   string `json:"error"`
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(body), &envelope); err == nil {
		if msg := firstString(envelope.Error, envelope.Detail, envelope.Message); msg != "" {
			return &BackendError{Message: strings.TrimSpace(msg), Status: status}
		}
	}
	return &BackendError{Message: fmt.Sprintf("server error: %d", status), Status: status}
}
