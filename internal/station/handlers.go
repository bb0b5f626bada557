package station

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/zombor/scan-station/internal/session"
	"github.com/zombor/scan-station/internal/workbook"
)

// archiveNameHeader names the archived copy of a downloaded export
const archiveNameHeader = "X-Archive-Name"

// sessionResponse is the body of every API call that returns session state
type sessionResponse struct {
	Session session.View        `json:"session"`
	Record  *session.ScanRecord `json:"record,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// confirmationResponse asks the client to confirm and retry
type confirmationResponse struct {
	Prompt string `json:"prompt"`
}

type enterRequest struct {
	Field session.Field `json:"field"`
	Form  *session.Form `json:"form,omitempty"`
}

type scanRequest struct {
	Form *session.Form `json:"form,omitempty"`
}

type confirmRequest struct {
	Confirmed bool `json:"confirmed"`
}

// requestConfirmer answers prompts with the client's confirmed flag and
// remembers the prompt so it can be sent back when unconfirmed
type requestConfirmer struct {
	confirmed bool
	prompt    string
}

func (c *requestConfirmer) Confirm(prompt string) bool {
	c.prompt = prompt
	return c.confirmed
}

// corsError writes an error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, "+archiveNameHeader)
	w.Header().Set("Access-Control-Max-Age", "3600")
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// decodeOptional decodes a JSON body into v, accepting an empty body
func decodeOptional(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// statusFor maps a session error to an HTTP status code
func statusFor(err error) int {
	var vErr *session.ValidationError
	switch {
	case errors.As(err, &vErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrEmptyExport):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// handleIndex serves the HTML interface
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// handleStaticCSS serves the CSS file
func (s *Server) handleStaticCSS(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "text/css")
	w.Write(appCSS)
}

// handleStaticJS serves the JavaScript file
func (s *Server) handleStaticJS(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Write(appJS)
}

// handleGetSession returns the current session
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionResponse{Session: s.service.View()})
}

// handleUpdateForm replaces the pending input
func (s *Server) handleUpdateForm(w http.ResponseWriter, r *http.Request) {
	var form session.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Session: s.service.UpdateForm(form)})
}

// handleEnter confirms a field as the Enter key would
func (s *Server) handleEnter(w http.ResponseWriter, r *http.Request) {
	var req enterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	switch req.Field {
	case session.FieldOperator, session.FieldSensorSerial, session.FieldPackageSerial:
	default:
		corsError(w, fmt.Sprintf("Unknown field: %q", req.Field), http.StatusBadRequest)
		return
	}

	record, view, err := s.service.Enter(req.Field, req.Form)
	if err != nil {
		writeJSON(w, statusFor(err), sessionResponse{Session: view, Error: err.Error()})
		return
	}

	code := http.StatusOK
	if record != nil {
		code = http.StatusCreated
	}
	writeJSON(w, code, sessionResponse{Session: view, Record: record})
}

// handleSubmitScan verifies the pending serials
func (s *Server) handleSubmitScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := decodeOptional(r, &req); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	record, view, err := s.service.Submit(req.Form)
	if err != nil {
		writeJSON(w, statusFor(err), sessionResponse{Session: view, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{Session: view, Record: record})
}

// handleExport downloads the scan history as a workbook
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := decodeOptional(r, &req); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	confirm := &requestConfirmer{confirmed: req.Confirmed}
	export, err := s.service.Export(confirm)
	if err != nil {
		if !errors.Is(err, session.ErrEmptyExport) {
			slog.Error("Error exporting scan history", "error", err)
		}
		writeJSON(w, statusFor(err), sessionResponse{Session: s.service.View(), Error: err.Error()})
		return
	}
	if export == nil {
		writeJSON(w, http.StatusConflict, confirmationResponse{Prompt: confirm.prompt})
		return
	}

	setCORSHeaders(w)
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Data)))
	if export.ArchiveName != "" {
		w.Header().Set(archiveNameHeader, export.ArchiveName)
	}
	w.Write(export.Data)
}

// handleGetArchivedExport downloads a workbook from the export archive
func (s *Server) handleGetArchivedExport(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	data, err := s.service.ArchivedExport(name)
	if err != nil {
		corsError(w, "Export not found", http.StatusNotFound)
		return
	}

	setCORSHeaders(w)
	w.Header().Set("Content-Type", workbook.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Write(data)
}

// handleReset starts a new scanning session
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := decodeOptional(r, &req); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	confirm := &requestConfirmer{confirmed: req.Confirmed}
	reset, view := s.service.Reset(confirm)
	if !reset {
		writeJSON(w, http.StatusConflict, confirmationResponse{Prompt: confirm.prompt})
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Session: view})
}

// handleDismissNotification clears a notification whose display time is up
func (s *Server) handleDismissNotification(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		corsError(w, "Invalid notification ID", http.StatusBadRequest)
		return
	}

	s.service.DismissNotification(id)
	setCORSHeaders(w)
	w.WriteHeader(http.StatusNoContent)
}
