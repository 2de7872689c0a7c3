package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/xuri/excelize/v2"

	"github.com/regintel/riskscan/internal/govern"
	"github.com/regintel/riskscan/internal/model"
	"github.com/regintel/riskscan/internal/pipeline"
)

func newTestServer(t *testing.T, entitler govern.Entitler) *Server {
	t.Helper()

	cfg := model.DefaultConfig()
	cfg.LLM.Provider = ""
	pipe := pipeline.New(cfg, hclog.NewNullLogger())
	limiter := govern.NewRateLimiter(cfg.Limits.RateMaxRequests, cfg.Limits.RateWindow)
	governor := govern.NewGovernor(cfg, limiter, entitler, pipe, hclog.NewNullLogger())
	return New(cfg, governor, hclog.NewNullLogger())
}

func registerUpload(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(uploadField, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &body, mw.FormDataContentType()
}

func validRegister(t *testing.T) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	rows := [][]string{
		{"Tehlike", "Faaliyet", "Risk Skoru"},
		{"Yüksekte çalışma", "Çatı bakımı", "540"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) *model.Envelope {
	t.Helper()
	var env model.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v\nbody: %s", err, rec.Body.String())
	}
	return &env
}

func TestHandleAnalyze_Success(t *testing.T) {
	s := newTestServer(t, govern.StaticEntitler(true))

	body, contentType := registerUpload(t, "register.xlsx", validRegister(t))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", body)
	req.Header.Set("Content-Type", contentType)
	req.RemoteAddr = "198.51.100.7:54321"
	rec := httptest.NewRecorder()

	s.handleAnalyze(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if !env.Success || env.Type != model.ReportType {
		t.Errorf("unexpected envelope: success=%v type=%q", env.Success, env.Type)
	}
	if env.Analysis == nil || env.Deterministic == nil {
		t.Error("expected analysis in successful response")
	}
	if env.Meta.RequestID == "" {
		t.Error("missing request id")
	}
}

func TestHandleAnalyze_MissingFile(t *testing.T) {
	s := newTestServer(t, govern.StaticEntitler(true))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", nil)
	req.RemoteAddr = "198.51.100.8:1"
	rec := httptest.NewRecorder()

	s.handleAnalyze(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Error == nil || env.Error.Code != model.CodeNoFile {
		t.Errorf("error = %+v, want no_file", env.Error)
	}
}

func TestHandleAnalyze_RejectedExtension(t *testing.T) {
	s := newTestServer(t, govern.StaticEntitler(true))

	body, contentType := registerUpload(t, "register.csv", []byte("a,b\n1,2\n"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", body)
	req.Header.Set("Content-Type", contentType)
	req.RemoteAddr = "198.51.100.9:1"
	rec := httptest.NewRecorder()

	s.handleAnalyze(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Error.Code != model.CodeFileType {
		t.Errorf("code = %s, want file_type", env.Error.Code)
	}
}

func TestHandleAnalyze_EntitlementHeader(t *testing.T) {
	// Resolver would deny, but the upstream assertion wins.
	s := newTestServer(t, govern.StaticEntitler(false))

	body, contentType := registerUpload(t, "register.xlsx", validRegister(t))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Entitled", "true")
	req.RemoteAddr = "198.51.100.10:1"
	rec := httptest.NewRecorder()

	s.handleAnalyze(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	// And the negative assertion is honored too.
	body, contentType = registerUpload(t, "register.xlsx", validRegister(t))
	req = httptest.NewRequest(http.MethodPost, "/api/v1/analyze", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Entitled", "false")
	req.RemoteAddr = "198.51.100.10:1"
	rec = httptest.NewRecorder()

	s.handleAnalyze(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestHandleAnalyze_MethodNotAllowed(t *testing.T) {
	s := newTestServer(t, govern.StaticEntitler(true))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyze", nil)
	rec := httptest.NewRecorder()

	s.handleAnalyze(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRecoverPanics(t *testing.T) {
	s := newTestServer(t, govern.StaticEntitler(true))

	h := s.recoverPanics(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Error == nil || env.Error.Code != model.CodeInternal {
		t.Errorf("error = %+v", env.Error)
	}
	if env.Meta.RequestID == "" {
		t.Error("panic response must carry a correlation id")
	}
}

func TestClientIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.4:9999"
	if got := clientIdentity(req); got != "203.0.113.4" {
		t.Errorf("identity = %q", got)
	}

	req.Header.Set("X-Forwarded-For", "192.0.2.1, 10.0.0.1")
	if got := clientIdentity(req); got != "192.0.2.1" {
		t.Errorf("forwarded identity = %q", got)
	}
}

func TestServerLifecycle(t *testing.T) {
	s := newTestServer(t, govern.StaticEntitler(true))
	s.cfg.Server.Addr = "127.0.0.1:0"

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.Shutdown(ctx); err != nil {
			t.Errorf("shutdown: %v", err)
		}
	}()

	resp, err := http.Get("http://" + s.Addr() + "/healthz")
	if err != nil {
		t.Fatalf("health check: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d", resp.StatusCode)
	}
}
