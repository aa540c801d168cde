package httpapi

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/tinoosan/finledger/internal/errs"
	"github.com/tinoosan/finledger/internal/idempotency"
)

const replayHeader = "Idempotent-Replay"

// captureWriter tees the response so it can be stored for replay.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    []byte
}

func (w *captureWriter) WriteHeader(code int) { w.status = code; w.ResponseWriter.WriteHeader(code) }
func (w *captureWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	w.buf = append(w.buf, b...)
	return w.ResponseWriter.Write(b)
}

// idempotent replays the stored response when a request repeats its Idempotency-Key
// with the same body, and answers 409 when the key comes back with a different body
// or while the first request holding it is still running.
// Requests without the header pass straight through.
func (s *Server) idempotent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
		if key == "" || s.idem == nil {
			next.ServeHTTP(w, r)
			return
		}
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			badRequest(w, "could not read body")
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		scoped := r.URL.Path + ":" + key
		hash := idempotency.HashBody(body)
		ctx := r.Context()

		rec, ok, err := idempotency.Lookup(ctx, s.idem, scoped, hash)
		if err == nil && !ok {
			var won bool
			won, err = s.idem.Reserve(ctx, scoped, hash)
			if err == nil && won {
				s.serveReserved(w, r, next, key, scoped, hash)
				return
			}
			if err == nil {
				// Lost the race to another request between lookup and reservation.
				rec, ok, err = idempotency.Lookup(ctx, s.idem, scoped, hash)
				if err == nil && !ok {
					err = idempotency.ErrInFlight
				}
			}
		}
		switch {
		case errors.Is(err, idempotency.ErrInFlight):
			writeErr(w, http.StatusConflict, "a request with this idempotency key is still in progress", "idempotency_in_flight")
		case errors.Is(err, errs.ErrConflict):
			writeErr(w, http.StatusConflict, "idempotency key reused with a different body", "idempotency_mismatch")
		case err != nil:
			s.writeServiceErr(w, r, err)
		default:
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set(replayHeader, "true")
			w.WriteHeader(rec.Status)
			_, _ = w.Write(rec.Payload)
		}
	})
}

// serveReserved runs the handler for a key this request reserved. The outcome is stored
// unless the handler failed with a server error or panicked; then the reservation is
// released so the client may retry.
func (s *Server) serveReserved(w http.ResponseWriter, r *http.Request, next http.Handler, key, scoped, hash string) {
	// The client may hang up; the reservation must still be settled.
	ctx := context.WithoutCancel(r.Context())
	saved := false
	defer func() {
		if saved {
			return
		}
		if err := s.idem.Release(ctx, scoped); err != nil {
			s.log.Warn("idempotency release failed", "req_id", chimw.GetReqID(ctx), "key", key, "err", err)
		}
	}()

	cw := &captureWriter{ResponseWriter: w}
	next.ServeHTTP(cw, r)
	if cw.status == 0 || cw.status >= http.StatusInternalServerError {
		return
	}
	err := s.idem.Save(ctx, scoped, idempotency.Record{BodyHash: hash, Status: cw.status, Payload: append([]byte(nil), cw.buf...)})
	if err != nil {
		s.log.Warn("idempotency save failed", "req_id", chimw.GetReqID(ctx), "key", key, "err", err)
		return
	}
	saved = true
}
