// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"time"
)

// RefuseRequest carries the refusal reason shown to the document owner.
type RefuseRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// AddApproverRequest adds a user to a document's approver list.
type AddApproverRequest struct {
	UserID string `json:"userId" binding:"required,uuid"`
}

// SetDateRequest moves an inventory or scrap date.
type SetDateRequest struct {
	Date *time.Time `json:"date" binding:"required"`
}

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorEnvelope is the body of every failed request.
type ErrorEnvelope struct {
	Error ErrorResponse `json:"error"`
}
