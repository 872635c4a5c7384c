package handlers

import (
	"encoding/json"
	"fmt"
	"iter"
	"net/http"

	"github.com/akolanti/DocsChat/internal/metrics"
)

// fragmentPayload is one SSE data line. Wrapping the text in JSON keeps
// multi-line fragments intact on the wire.
type fragmentPayload struct {
	Response string `json:"response"`
}

// streamAnswer drains the fragment sequence into an SSE response. The
// content channel only ever carries answer text: a mid-stream generation
// error ends the stream with no done event and no error text, which is the
// client's signal that the answer is incomplete.
func streamAnswer(w http.ResponseWriter, stream iter.Seq2[string, error]) {
	flush := func() {}
	if f, ok := w.(http.Flusher); ok {
		flush = f.Flush
	} else {
		//a non-flushable writer still gets the whole stream, just buffered
		logRH.Warn("Response writer is not flushable, SSE will be buffered")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flush()

	for fragment, err := range stream {
		if err != nil {
			logRH.Error("Generation failed mid-stream", "error", err)
			metrics.CountAnswerStream("generation_error")
			return
		}
		if fragment == "" {
			continue
		}
		if err := writeFragment(w, fragment); err != nil {
			//write failure means the client hung up
			logRH.Debug("Client disconnected mid-stream", "error", err)
			metrics.CountAnswerStream("client_gone")
			return
		}
		flush()
	}

	if _, err := fmt.Fprint(w, "event: done\ndata: \n\n"); err == nil {
		flush()
	}
	metrics.CountAnswerStream("completed")
}

func writeFragment(w http.ResponseWriter, fragment string) error {
	payload, err := json.Marshal(fragmentPayload{Response: fragment})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", payload)
	return err
}
