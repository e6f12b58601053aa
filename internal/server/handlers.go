package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jimelj/mailApp/internal/export"
	"github.com/jimelj/mailApp/internal/pipeline"
	"github.com/jimelj/mailApp/internal/report"
	"github.com/jimelj/mailApp/internal/schemas"
	"github.com/jimelj/mailApp/internal/table"
)

const maxRequestBytes = 1 << 20

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CSMRequest represents the request body for /csm
type CSMRequest struct {
	Path           string `json:"path"`
	FacilityReport string `json:"facility_report,omitempty"`
	Capstone       bool   `json:"capstone,omitempty"`
}

// ReportRequest represents the request body for /reports
type ReportRequest struct {
	Paths []string `json:"paths"`
}

// TableResponse is a table rendered as display text.
type TableResponse struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// CSMResponse represents the response for /csm
type CSMResponse struct {
	RunID           string            `json:"run_id"`
	Job             string            `json:"job"`
	Matched         int               `json:"matched"`
	EnrichmentError string            `json:"enrichment_error,omitempty"`
	Display         TableResponse     `json:"display"`
	Capstone        *TableResponse    `json:"capstone,omitempty"`
	Postage         *report.Aggregate `json:"postage,omitempty"`
}

// ReportResponse represents the response for /reports
type ReportResponse struct {
	Table      TableResponse `json:"table"`
	GrandTotal report.Totals `json:"grand_total"`
	Files      int           `json:"files"`
	Skipped    []string      `json:"skipped,omitempty"`
	Errors     []string      `json:"errors,omitempty"`
}

func newTableResponse(t table.Table) TableResponse {
	resp := TableResponse{Columns: t.Columns(), Rows: make([][]string, 0, t.Len())}
	for i := 0; i < t.Len(); i++ {
		row := make([]string, len(resp.Columns))
		for j, c := range resp.Columns {
			row[j] = t.Text(i, c)
		}
		resp.Rows = append(resp.Rows, row)
	}
	return resp
}

// decodeBody reads the request body, checks it against the named schema and
// unmarshals it into dst.
func decodeBody(r *http.Request, schema string, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		return &ErrValidation{Field: "body", Message: err.Error()}
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return schemas.Validate(schema, body)
}

// jobOptions builds pipeline options for a request, falling back to the
// server configuration.
func (s *Server) jobOptions(req CSMRequest) pipeline.JobOptions {
	facilityReport := req.FacilityReport
	if facilityReport == "" {
		facilityReport = s.cfg.FacilityReport
	}
	return pipeline.JobOptions{
		Options: pipeline.Options{
			InputPath:      req.Path,
			FacilityReport: facilityReport,
			ScratchDir:     s.cfg.ScratchDir,
			BatchSize:      s.cfg.BatchSize,
			DatabaseURL:    s.cfg.DatabaseURL,
			Out:            log.Writer(),
		},
	}
}

func (s *Server) buildCSMResponse(jr *pipeline.JobResult, origin *export.Origin) CSMResponse {
	resp := CSMResponse{
		RunID:   jr.RunID,
		Job:     jr.Job,
		Matched: jr.Matched,
		Display: newTableResponse(jr.Display),
		Postage: jr.Postage,
	}
	if jr.EnrichmentErr != nil {
		resp.EnrichmentError = jr.EnrichmentErr.Error()
	}
	if origin != nil {
		capstone := newTableResponse(export.Capstone(jr.Display, *origin))
		resp.Capstone = &capstone
	}
	return resp
}

// capstoneOrigin returns the configured origin when the request asks for a
// Capstone table.
func (s *Server) capstoneOrigin(req CSMRequest) (*export.Origin, error) {
	if !req.Capstone {
		return nil, nil
	}
	origin, err := s.cfg.CapstoneOrigin()
	if err != nil {
		return nil, &ErrValidation{Field: "capstone", Message: err.Error()}
	}
	return &origin, nil
}

// handleCSM processes one CSM file or mailing archive. With ?format=xlsx the
// display table is returned as a workbook instead of JSON.
func (s *Server) handleCSM(w http.ResponseWriter, r *http.Request) {
	var req CSMRequest
	if err := decodeBody(r, schemas.CSMRequest, &req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	origin, err := s.capstoneOrigin(req)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	jr, err := pipeline.RunJob(r.Context(), s.jobOptions(req))
	if err != nil {
		log.Printf("CSM run failed for %s: %v", req.Path, err)
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	defer func() {
		if err := jr.Cleanup(); err != nil {
			log.Printf("Warning: failed to remove scratch data: %v", err)
		}
	}()

	if r.URL.Query().Get("format") == "xlsx" {
		data, err := export.XLSX(jr.Display)
		if err != nil {
			s.errorResponse(w, HTTPStatus(err), err.Error())
			return
		}
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.ReportFileName(jr.Job)))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(data); err != nil {
			log.Printf("Error writing workbook: %v", err)
		}
		return
	}

	s.jsonResponse(w, http.StatusOK, s.buildCSMResponse(jr, origin))
}

// handleCSMStream processes a CSM file and streams its progress as
// Server-Sent Events
func (s *Server) handleCSMStream(w http.ResponseWriter, r *http.Request) {
	var req CSMRequest
	if err := decodeBody(r, schemas.CSMRequest, &req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	origin, err := s.capstoneOrigin(req)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	stream, err := newCSMStream(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Printf("Starting streaming CSM run for %s", req.Path)

	opts := s.jobOptions(req)
	opts.OnProgress = func(event pipeline.ProgressEvent) {
		if err := stream.Progress(event); err != nil {
			log.Printf("Error writing progress event: %v", err)
		}
	}

	jr, err := pipeline.RunJob(r.Context(), opts)
	if err != nil {
		log.Printf("CSM run failed for %s: %v", req.Path, err)
		if werr := stream.Fail(err); werr != nil {
			log.Printf("Error writing error event: %v", werr)
		}
		return
	}
	defer jr.Cleanup() //nolint:errcheck

	if err := stream.Result(s.buildCSMResponse(jr, origin)); err != nil {
		log.Printf("Error writing result event: %v", err)
	}
	if err := stream.Complete(jr.RunID, jr.Display.Len()); err != nil {
		log.Printf("Error writing complete event: %v", err)
	}
	log.Printf("Streaming CSM run completed")
}

// handleReports aggregates one or more postage reports
func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if err := decodeBody(r, schemas.ReportRequest, &req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	agg, err := report.AggregateFiles(r.Context(), req.Paths)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	pipeline.RecordReport(r.Context(), s.cfg.DatabaseURL, req.Paths, agg, log.Writer())
	if len(agg.Errors) == len(req.Paths) {
		first := agg.Errors[0]
		s.errorResponse(w, HTTPStatus(first), first.Error())
		return
	}

	resp := ReportResponse{
		Table:      newTableResponse(agg.Table()),
		GrandTotal: agg.GrandTotal,
		Files:      agg.Files,
	}
	for _, sl := range agg.Skipped {
		resp.Skipped = append(resp.Skipped, sl.String())
	}
	for _, fe := range agg.Errors {
		resp.Errors = append(resp.Errors, fe.Error())
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleListRuns returns recent runs, newest first
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		err := &ErrNoDatabase{}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.errorResponse(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	runs, err := s.store.ListRuns(r.Context(), limit)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"runs": runs})
}

// handleGetRun returns one run by ID
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		err := &ErrNoDatabase{}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid run ID format")
		return
	}

	run, err := s.store.GetRun(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if run == nil {
		s.errorResponse(w, http.StatusNotFound, "Run not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, run)
}
