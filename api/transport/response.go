package transport

import "encoding/json"

// Wire-level error codes shared by the remote service and its clients.
const (
	CodePermissionDenied   = "PERMISSION_DENIED"
	CodeNotFound           = "NOT_FOUND"
	CodeInvalidPayload     = "INVALID_PAYLOAD"
	CodeEmailExists        = "EMAIL_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInternal           = "INTERNAL"
)

// Envelope is the standard response wrapper used for both success and
// error payloads on every remote endpoint.
type Envelope struct {
	Status string          `json:"status"`
	Code   string          `json:"code,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// NewSuccess returns a success envelope with the payload marshaled in place.
func NewSuccess(data interface{}) Envelope {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{Status: "error", Code: CodeInternal, Error: err.Error()}
	}
	return Envelope{
		Status: "success",
		Data:   raw,
	}
}

// NewError returns an error envelope.
func NewError(code string, message string) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  message,
	}
}

// IsError reports whether the envelope carries an error payload.
func (e Envelope) IsError() bool {
	return e.Status != "success"
}

// Decode unmarshals the success payload into out.
func (e Envelope) Decode(out interface{}) error {
	if len(e.Data) == 0 {
		return nil
	}
	return json.Unmarshal(e.Data, out)
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}
