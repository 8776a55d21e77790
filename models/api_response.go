package models

// ApiResponse is the envelope every food API endpoint answers with.
// Data carries the payload (a food record, a list of them, or nothing);
// Success=false or a missing payload on reads means the operation failed
// and Message explains why.
type ApiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}
