package api

// ErrorResponse is the single-message error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ValidationMessage is one field-level validation failure.
type ValidationMessage struct {
	Message string `json:"message"`
}

// ValidationErrorResponse is the multi-message validation error body.
type ValidationErrorResponse struct {
	Errors []ValidationMessage `json:"errors"`
}

// ShareRequest is the body of POST /tasks/:id/share.
type ShareRequest struct {
	UserID      uint     `json:"userId"`
	Permissions []string `json:"permissions"`
}

// UpdateShareRequest is the body of PUT /tasks/:id/share/:userId.
type UpdateShareRequest struct {
	Permissions []string `json:"permissions"`
}

// WSMessage is the client-to-server WebSocket message.
type WSMessage struct {
	Type    string    `json:"type"`
	Payload WSPayload `json:"payload"`
}

// WSPayload carries the join payload fields.
type WSPayload struct {
	UserID uint `json:"userId"`
}
