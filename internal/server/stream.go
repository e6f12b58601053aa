package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jimelj/mailApp/internal/pipeline"
)

// Event names on the /csm/stream response.
const (
	eventStep     = "step"
	eventResult   = "result"
	eventError    = "error"
	eventComplete = "complete"
)

// StepEvent is one pipeline progress update. Seq starts at 1 and
// increases by one per step event within a stream.
type StepEvent struct {
	Seq     int    `json:"seq"`
	Step    string `json:"step"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`
}

// StreamError ends a stream that failed. Status is what the plain /csm
// endpoint would have answered.
type StreamError struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// StreamComplete is the last event of a successful stream.
type StreamComplete struct {
	RunID string `json:"run_id"`
	Rows  int    `json:"rows"`
}

// csmStream writes one CSM run as Server-Sent Events: step events while
// the pipeline runs, then either result and complete, or error.
type csmStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
	seq     int
}

func newCSMStream(w http.ResponseWriter) (*csmStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	return &csmStream{w: w, flusher: flusher}, nil
}

func (s *csmStream) write(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// Progress forwards a pipeline progress event.
func (s *csmStream) Progress(event pipeline.ProgressEvent) error {
	s.seq++
	return s.write(eventStep, StepEvent{
		Seq:     s.seq,
		Step:    event.Step,
		Message: event.Message,
		RunID:   event.RunID,
	})
}

// Result sends the finished table.
func (s *csmStream) Result(resp CSMResponse) error {
	return s.write(eventResult, resp)
}

// Fail sends the run's error with the status it maps to.
func (s *csmStream) Fail(err error) error {
	return s.write(eventError, StreamError{Error: err.Error(), Status: HTTPStatus(err)})
}

// Complete closes a successful stream.
func (s *csmStream) Complete(runID string, rows int) error {
	return s.write(eventComplete, StreamComplete{RunID: runID, Rows: rows})
}
