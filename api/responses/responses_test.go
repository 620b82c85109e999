package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/posbok/storefront/pkg/errors"
)

func TestWriteSuccessEnvelope(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteSuccess(rec, map[string]int{"itemCount": 3})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var env SuccessEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	data, ok := env.Data.(map[string]any)
	if !ok || data["itemCount"] != float64(3) {
		t.Fatalf("unexpected payload: %+v", env.Data)
	}
}

func TestWriteErrorMapsTypedCodes(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found"))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var env ErrorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Error.Code != "NOT_FOUND" || env.Error.Message != "cart not found" {
		t.Fatalf("unexpected error payload: %+v", env.Error)
	}
}

func TestWriteErrorHidesInternalMessages(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec, errors.New("pointer dereference at 0x7f"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var env ErrorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Error.Message != "internal server error" {
		t.Fatalf("internal details leaked: %q", env.Error.Message)
	}
}
