package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/recvault/internal/models"
	"github.com/starford/recvault/internal/vault"
)

// Handler holds API route handlers.
type Handler struct {
	svc *vault.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *vault.Service) *Handler {
	return &Handler{svc: svc}
}

func recordID(r *http.Request) models.ID {
	return models.ParseID(chi.URLParam(r, "id"))
}

func orEmpty(records []models.Record) []models.Record {
	if records == nil {
		return []models.Record{}
	}
	return records
}

func decodeRecord(w http.ResponseWriter, r *http.Request) (models.Input, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return models.Input{}, false
	}
	return req.Input(), true
}

// ListRecords handles GET /records.
//
//	@Summary		List all records in insertion order
//	@Tags			records
//	@Produce		json
//	@Success		200	{array}	models.Record
//	@Router			/records [get]
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, r, "list records", err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(records))
}

// AddRecord handles POST /records.
//
//	@Summary		Add a record
//	@Tags			records
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RecordRequest	true	"Record to add"
//	@Success		201		{object}	AddRecordResponse
//	@Failure		400		{object}	errResponse
//	@Router			/records [post]
func (h *Handler) AddRecord(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeRecord(w, r)
	if !ok {
		return
	}
	rec, err := h.svc.Add(r.Context(), in)
	if err != nil {
		writeError(w, r, "add record", err)
		return
	}
	writeJSON(w, http.StatusCreated, AddRecordResponse{Message: "Record added", Record: rec})
}

// UpdateRecord handles PUT /records/{id}.
//
//	@Summary		Replace the name and value of a record
//	@Tags			records
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Record id"
//	@Param			body	body		RecordRequest	true	"New name and value"
//	@Success		200		{object}	UpdateRecordResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Router			/records/{id} [put]
func (h *Handler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeRecord(w, r)
	if !ok {
		return
	}
	rec, err := h.svc.Update(r.Context(), recordID(r), in)
	if err != nil {
		writeError(w, r, "update record", err)
		return
	}
	writeJSON(w, http.StatusOK, UpdateRecordResponse{Updated: rec})
}

// DeleteRecord handles DELETE /records/{id}.
//
//	@Summary		Delete a record
//	@Tags			records
//	@Produce		json
//	@Param			id	path		string	true	"Record id"
//	@Success		200	{object}	DeleteRecordResponse
//	@Failure		404	{object}	errResponse
//	@Router			/records/{id} [delete]
func (h *Handler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Delete(r.Context(), recordID(r))
	if err != nil {
		writeError(w, r, "delete record", err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteRecordResponse{Deleted: rec})
}

// Search handles GET /search.
//
//	@Summary		Case-insensitive search on id and name
//	@Tags			records
//	@Produce		json
//	@Param			q	query	string	false	"Search term (empty matches all)"
//	@Success		200	{array}	models.Record
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	results, err := h.svc.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(results))
}

// Sort handles GET /sort.
//
//	@Summary		List records sorted by name or id
//	@Tags			records
//	@Produce		json
//	@Param			field	query		string	false	"Sort field"	Enums(id, name)
//	@Param			order	query		string	false	"Sort order"	Enums(asc, desc)
//	@Success		200		{array}		models.Record
//	@Failure		400		{object}	errResponse
//	@Router			/sort [get]
func (h *Handler) Sort(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	field, order, err := vault.ParseSort(q.Get("field"), q.Get("order"))
	if err != nil {
		writeError(w, r, "sort", err)
		return
	}
	sorted, err := h.svc.Sort(r.Context(), field, order)
	if err != nil {
		writeError(w, r, "sort", err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(sorted))
}

// Export handles GET /export.
//
//	@Summary		Write the plain-text export report
//	@Tags			files
//	@Produce		json
//	@Success		200	{object}	FileResponse
//	@Failure		500	{object}	errResponse
//	@Router			/export [get]
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	path, err := h.svc.Export(r.Context())
	if err != nil {
		slog.Error("export failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("export failed"))
		return
	}
	writeJSON(w, http.StatusOK, FileResponse{Message: "Exported", File: path})
}

// Backup handles POST /backup.
//
//	@Summary		Write a backup snapshot now
//	@Tags			files
//	@Produce		json
//	@Success		201	{object}	FileResponse
//	@Failure		500	{object}	errResponse
//	@Router			/backup [post]
func (h *Handler) Backup(w http.ResponseWriter, r *http.Request) {
	path, err := h.svc.Backup(r.Context())
	if err != nil {
		writeError(w, r, "backup", err)
		return
	}
	writeJSON(w, http.StatusCreated, FileResponse{Message: "Backup created", File: path})
}

// Stats handles GET /stats.
//
//	@Summary		Vault statistics
//	@Tags			records
//	@Produce		json
//	@Success		200	{object}	StatsResponse
//	@Router			/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Stats(r.Context())
	if err != nil {
		writeError(w, r, "stats", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
