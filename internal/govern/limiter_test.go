package govern

import (
	"errors"
	"testing"
	"time"

	"github.com/regintel/riskscan/internal/model"
)

func TestAllow_CeilingWithinWindow(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(25, 10*time.Minute).WithNow(func() time.Time { return now })

	for i := 0; i < 25; i++ {
		if err := limiter.Allow("10.0.0.1"); err != nil {
			t.Fatalf("request %d unexpectedly rejected: %v", i+1, err)
		}
		now = now.Add(10 * time.Second)
	}

	// The 26th request inside the same window must be rejected.
	if err := limiter.Allow("10.0.0.1"); !errors.Is(err, model.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited on request 26, got %v", err)
	}
}

func TestAllow_WindowExpiryResets(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(25, 10*time.Minute).WithNow(func() time.Time { return now })

	for i := 0; i < 25; i++ {
		if err := limiter.Allow("10.0.0.1"); err != nil {
			t.Fatalf("request %d rejected: %v", i+1, err)
		}
	}
	if err := limiter.Allow("10.0.0.1"); !errors.Is(err, model.ErrRateLimited) {
		t.Fatal("expected rejection before window elapsed")
	}

	// After the window elapses the same identity starts fresh.
	now = now.Add(10*time.Minute + time.Second)
	if err := limiter.Allow("10.0.0.1"); err != nil {
		t.Fatalf("expected success after window elapsed, got %v", err)
	}
}

func TestAllow_IdentitiesAreIndependent(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(1, 10*time.Minute).WithNow(func() time.Time { return now })

	if err := limiter.Allow("10.0.0.1"); err != nil {
		t.Fatalf("first identity rejected: %v", err)
	}
	if err := limiter.Allow("10.0.0.2"); err != nil {
		t.Fatalf("second identity must not share the first window: %v", err)
	}
	if err := limiter.Allow("10.0.0.1"); !errors.Is(err, model.ErrRateLimited) {
		t.Fatal("expected first identity to be limited")
	}
}

func TestValidateUpload(t *testing.T) {
	maxBytes := int64(12 * 1024 * 1024)

	tests := []struct {
		name     string
		filename string
		size     int64
		wantErr  error
	}{
		{"valid xlsx", "register.xlsx", 1024, nil},
		{"valid xlsm", "register.xlsm", 1024, nil},
		{"missing file", "", 0, model.ErrNoFile},
		{"empty file", "register.xlsx", 0, model.ErrNoFile},
		{"csv rejected", "register.csv", 1024, model.ErrFileType},
		{"pdf rejected", "register.pdf", 1024, model.ErrFileType},
		{"oversized", "register.xlsx", maxBytes + 1, model.ErrFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpload(tt.filename, tt.size, maxBytes)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
