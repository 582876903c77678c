package bridge

import "encoding/json"

// ProtocolVersion is the version tag carried on every request and response frame.
const ProtocolVersion = "2.0"

// request is one host->worker frame. Field order matters only for readability
// of logged frames; the worker keys off field names.
type request struct {
	ProtocolVersion string `json:"protocolVersion"`
	Method          string `json:"method"`
	Params          any    `json:"params"`
	ID              int64  `json:"id"`
}

// response is one worker->host frame. Exactly one of Result and Error is set
// on a well-formed frame.
type response struct {
	ProtocolVersion string          `json:"protocolVersion"`
	ID              int64           `json:"id"`
	Result          json.RawMessage `json:"result,omitempty"`
	Error           *responseError  `json:"error,omitempty"`
}

type responseError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}
