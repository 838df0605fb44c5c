package plan

import (
	"bytes"
	"encoding/json"
	"strings"

	"paymentplan/internal/schedule"
)

// CreateRequest is the body of both the preview and the create endpoints.
// Amounts accept JSON numbers or strings ("1500.50").
type CreateRequest struct {
	Reference string `json:"reference,omitempty"`
	schedule.Params
}

func ParseAndValidate(raw []byte) (CreateRequest, error) {
	var req CreateRequest
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return CreateRequest{}, schedule.ValidationError{Code: "VALIDATION_FAILED", Message: "invalid json: " + err.Error()}
	}
	req.Reference = strings.TrimSpace(req.Reference)
	req.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))

	if err := schedule.Validate(req.Params); err != nil {
		return CreateRequest{}, err
	}
	return req, nil
}
