package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockStorePinger struct {
	err error
}

func (m *mockStorePinger) Ping(_ context.Context) error { return m.err }

type mockGenerationChecker struct {
	err error
}

func (m *mockGenerationChecker) HealthCheck(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockStorePinger{}, &mockGenerationChecker{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["cache_store"] != CheckOK {
		t.Errorf("expected cache_store %q, got %q", CheckOK, r.Checks["cache_store"])
	}
	if r.Checks["generation"] != CheckOK {
		t.Errorf("expected generation %q, got %q", CheckOK, r.Checks["generation"])
	}
}

func TestCheck_StoreError(t *testing.T) {
	svc := New(&mockStorePinger{err: errors.New("conn refused")}, &mockGenerationChecker{})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["cache_store"] != CheckError {
		t.Errorf("expected cache_store %q, got %q", CheckError, r.Checks["cache_store"])
	}
	if r.Checks["generation"] != CheckOK {
		t.Errorf("expected generation %q, got %q", CheckOK, r.Checks["generation"])
	}
}

func TestCheck_GenerationError(t *testing.T) {
	svc := New(&mockStorePinger{}, &mockGenerationChecker{err: errors.New("timeout")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["generation"] != CheckError {
		t.Errorf("expected generation %q, got %q", CheckError, r.Checks["generation"])
	}
}

func TestCheck_NilGenerationChecker(t *testing.T) {
	svc := New(&mockStorePinger{}, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks["generation"]; ok {
		t.Error("generation check present without a checker")
	}
}
