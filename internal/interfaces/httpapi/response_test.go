package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/budget-gm/internal/domain/player"
	"github.com/riskibarqy/budget-gm/internal/domain/prediction"
	"github.com/riskibarqy/budget-gm/internal/domain/roster"
	"github.com/riskibarqy/budget-gm/internal/domain/session"
	"github.com/riskibarqy/budget-gm/internal/domain/submission"
	"github.com/riskibarqy/budget-gm/internal/usecase"
)

func TestWriteSuccess_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	if _, ok := body["data"]; !ok {
		t.Fatalf("expected data key in success response")
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("did not expect error key in success response")
	}
}

func TestWriteError_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: bad payload", usecase.ErrInvalidInput))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	errorObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object in response")
	}
	if got, _ := errorObj["status"].(string); got != "INVALID_ARGUMENT" {
		t.Fatalf("expected error status INVALID_ARGUMENT, got %v", errorObj["status"])
	}
}

func TestMapError_DomainErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantReason string
	}{
		{name: "duplicate", err: fmt.Errorf("add player: %w", roster.ErrDuplicatePlayer), wantStatus: http.StatusConflict, wantReason: "duplicatePlayer"},
		{name: "full", err: roster.ErrRosterFull, wantStatus: http.StatusConflict, wantReason: "rosterFull"},
		{name: "budget", err: roster.ErrInsufficientBudget, wantStatus: http.StatusUnprocessableEntity, wantReason: "insufficientBudget"},
		{name: "locked", err: roster.ErrSubmissionLocked, wantStatus: http.StatusConflict, wantReason: "rosterLocked"},
		{name: "not on roster", err: roster.ErrPlayerNotFound, wantStatus: http.StatusNotFound, wantReason: "playerNotOnRoster"},
		{name: "incomplete", err: prediction.ErrIncompleteRoster, wantStatus: http.StatusUnprocessableEntity, wantReason: "incompleteRoster"},
		{name: "nickname", err: session.ErrInvalidNickname, wantStatus: http.StatusBadRequest, wantReason: "invalidInput"},
		{name: "nickname taken", err: fmt.Errorf("submit roster: %w", submission.ErrNicknameTaken), wantStatus: http.StatusConflict, wantReason: "nicknameTaken"},
		{name: "submission failed", err: submission.ErrSubmissionFailed, wantStatus: http.StatusBadGateway, wantReason: "submissionFailed"},
		{name: "backend down", err: fmt.Errorf("%w: %w", usecase.ErrDependencyUnavailable, submission.ErrSubmissionFailed), wantStatus: http.StatusServiceUnavailable, wantReason: "dependencyUnavailable"},
		{name: "empty pool", err: player.ErrNoPlayersAvailable, wantStatus: http.StatusServiceUnavailable, wantReason: "noPlayersAvailable"},
		{name: "unknown", err: fmt.Errorf("boom"), wantStatus: http.StatusInternalServerError, wantReason: "internalError"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := mapError(context.Background(), tc.err)
			if got.HTTPStatus != tc.wantStatus || got.Reason != tc.wantReason {
				t.Fatalf("mapError(%v) = %d %q, want %d %q", tc.err, got.HTTPStatus, got.Reason, tc.wantStatus, tc.wantReason)
			}
		})
	}
}

func TestWriteError_HidesInternalMessages(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("pq: password authentication failed"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}

	var body envelope[any]
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	if body.Error == nil || body.Error.Message != "internal server error" {
		t.Fatalf("expected masked internal error, got %+v", body.Error)
	}
}
