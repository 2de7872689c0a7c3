package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/regintel/riskscan/internal/govern"
	"github.com/regintel/riskscan/internal/model"
)

// uploadField is the multipart form field carrying the workbook.
const uploadField = "file"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int64(s.uptime().Seconds()),
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeEnvelope(w, &model.Envelope{
			Success: false,
			Error:   &model.ErrorBody{Code: model.CodeNoFile, Message: "use POST with a multipart file upload"},
		}, http.StatusMethodNotAllowed)
		return
	}

	req := govern.Request{Identity: clientIdentity(r)}

	// "true"/"false" assertion from an upstream auth proxy; absence means
	// the governor consults the entitlement resolver itself.
	if v := r.Header.Get("X-Entitled"); v != "" {
		entitled := strings.EqualFold(v, "true")
		req.Entitled = &entitled
	}

	// Cap the multipart read a little above the file ceiling so oversized
	// uploads fail with the file-too-large code, not a read error.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Limits.MaxFileBytes+1024*1024)

	file, header, err := r.FormFile(uploadField)
	if err == nil {
		defer file.Close()
		data, readErr := io.ReadAll(file)
		if readErr != nil {
			s.log.Warn("upload read failed", "error", readErr)
			writeEnvelope(w, errorEnvelope(model.CodeFileTooLarge, "upload could not be read"), model.StatusFor(model.CodeFileTooLarge))
			return
		}
		req.FileName = header.Filename
		req.Data = data
	}

	env := s.governor.Process(r.Context(), req)

	status := http.StatusOK
	if env.Error != nil {
		status = model.StatusFor(env.Error.Code)
	}
	writeEnvelope(w, env, status)
}

// recoverPanics converts a handler panic into a 500 envelope carrying a
// correlation id, and keeps the server alive.
func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				requestID := uuid.NewString()
				s.log.Error("handler panic", "request_id", requestID, "path", r.URL.Path, "panic", fmt.Sprint(rec))
				env := errorEnvelope(model.CodeInternal, "unexpected error while processing the request")
				env.Meta.RequestID = requestID
				writeEnvelope(w, env, http.StatusInternalServerError)
			}
		}()
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("request served", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start).String())
	})
}

// clientIdentity picks the rate-limiting identity for a request. A trusted
// proxy's X-Forwarded-For wins; otherwise the peer address without the port.
func clientIdentity(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func errorEnvelope(code model.ErrorCode, message string) *model.Envelope {
	return &model.Envelope{
		Success: false,
		Error:   &model.ErrorBody{Code: code, Message: message},
	}
}

func writeEnvelope(w http.ResponseWriter, env *model.Envelope, status int) {
	writeJSON(w, status, env)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, `{"success":false}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
