package domain

import (
	"encoding/json"
	"net/http"
)

const (
	MsgInputMissing          = "send a file or text for analysis"
	MsgAnalyzeConnection     = "connection error with the server, try again"
	MsgFeedbackConnection    = "connection error with the server"
	MsgAnalyzeBackendFailed  = "error processing the request"
	MsgFeedbackBackendFailed = "error sending feedback"
)

// Relay is the JSON body and status code handed back to a gateway caller.
type Relay struct {
	StatusCode int
	Body       []byte
}

type detailBody struct {
	Detail string `json:"detail"`
}

func NewDetailRelay(status int, detail string) *Relay {
	body, _ := json.Marshal(detailBody{Detail: detail})
	return &Relay{StatusCode: status, Body: body}
}

func (r *Relay) OK() bool {
	return r != nil && r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// Detail returns the string "detail" field of the body, or "" when the body
// carries none.
func (r *Relay) Detail() string {
	if r == nil {
		return ""
	}
	var body struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(r.Body, &body); err != nil {
		return ""
	}
	detail, _ := body.Detail.(string)
	return detail
}

func (r *Relay) ValidJSON() bool {
	return r != nil && json.Valid(r.Body)
}
