package api

import (
	"encoding/json"

	"github.com/starford/recvault/internal/models"
	"github.com/starford/recvault/internal/vault"
)

// RecordRequest is the request body for adding or updating a record.
// Value may be any JSON value; non-strings are stored as their JSON text.
type RecordRequest struct {
	Name  string          `json:"name" example:"github token" validate:"required"`
	Value json.RawMessage `json:"value" swaggertype:"string" example:"ghp_123" validate:"required"`
}

// Input converts the request into a record candidate.
func (req RecordRequest) Input() models.Input {
	return models.Input{Name: req.Name, Value: models.ValueText(req.Value)}
}

// AddRecordResponse is returned after a successful add.
type AddRecordResponse struct {
	Message string         `json:"message" example:"Record added" validate:"required"`
	Record  *models.Record `json:"record" validate:"required"`
}

// UpdateRecordResponse is returned after a successful update.
type UpdateRecordResponse struct {
	Updated *models.Record `json:"updated" validate:"required"`
}

// DeleteRecordResponse is returned after a successful delete.
type DeleteRecordResponse struct {
	Deleted *models.Record `json:"deleted" validate:"required"`
}

// FileResponse reports a file written by export or backup.
type FileResponse struct {
	Message string `json:"message" example:"Exported" validate:"required"`
	File    string `json:"file" example:"/data/export.txt" validate:"required"`
}

// StatsResponse is the statistics object (aliased from the domain layer).
type StatsResponse = vault.Statistics
