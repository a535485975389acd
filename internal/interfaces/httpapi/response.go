package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/budget-gm/internal/domain/player"
	"github.com/riskibarqy/budget-gm/internal/domain/prediction"
	"github.com/riskibarqy/budget-gm/internal/domain/roster"
	"github.com/riskibarqy/budget-gm/internal/domain/session"
	"github.com/riskibarqy/budget-gm/internal/domain/submission"
	"github.com/riskibarqy/budget-gm/internal/usecase"
)

const (
	googleAPIVersion = "2.0"
	errorDomain      = "budget-gm"
)

type googleResponseEnvelope struct {
	APIVersion string           `json:"apiVersion"`
	Data       any              `json:"data,omitempty"`
	Error      *googleErrorBody `json:"error,omitempty"`
}

type googleErrorBody struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Status  string            `json:"status"`
	Errors  []googleErrorItem `json:"errors,omitempty"`
}

type googleErrorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type mappedError struct {
	HTTPStatus int
	Reason     string
	Status     string
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	ctx, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	ctx, span := startSpan(ctx, "httpapi.writeSuccess")
	defer span.End()

	writeJSON(ctx, w, status, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Data:       data,
	})
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	ctx, span := startSpan(ctx, "httpapi.writeError")
	defer span.End()

	mapped := mapError(ctx, err)
	if mapped.HTTPStatus == http.StatusInternalServerError {
		writeInternalError(ctx, w)
		return
	}
	writeJSON(ctx, w, mapped.HTTPStatus, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    mapped.HTTPStatus,
			Message: err.Error(),
			Status:  mapped.Status,
			Errors: []googleErrorItem{
				{
					Domain:  errorDomain,
					Reason:  mapped.Reason,
					Message: err.Error(),
				},
			},
		},
	})
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	ctx, span := startSpan(ctx, "httpapi.writeInternalError")
	defer span.End()

	const msg = "internal server error"

	writeJSON(ctx, w, http.StatusInternalServerError, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    http.StatusInternalServerError,
			Message: msg,
			Status:  "INTERNAL",
			Errors: []googleErrorItem{
				{
					Domain:  errorDomain,
					Reason:  "internalError",
					Message: msg,
				},
			},
		},
	})
}

func mapError(ctx context.Context, err error) mappedError {
	ctx, span := startSpan(ctx, "httpapi.mapError")
	defer span.End()

	switch {
	case errors.Is(err, submission.ErrNicknameTaken):
		return mappedError{
			HTTPStatus: http.StatusConflict,
			Reason:     "nicknameTaken",
			Status:     "ALREADY_EXISTS",
		}
	case errors.Is(err, usecase.ErrInvalidInput),
		errors.Is(err, session.ErrInvalidNickname),
		errors.Is(err, roster.ErrInvalidPlayer):
		return mappedError{
			HTTPStatus: http.StatusBadRequest,
			Reason:     "invalidInput",
			Status:     "INVALID_ARGUMENT",
		}
	case errors.Is(err, roster.ErrPlayerNotFound):
		return mappedError{
			HTTPStatus: http.StatusNotFound,
			Reason:     "playerNotOnRoster",
			Status:     "NOT_FOUND",
		}
	case errors.Is(err, usecase.ErrNotFound):
		return mappedError{
			HTTPStatus: http.StatusNotFound,
			Reason:     "notFound",
			Status:     "NOT_FOUND",
		}
	case errors.Is(err, roster.ErrDuplicatePlayer):
		return mappedError{
			HTTPStatus: http.StatusConflict,
			Reason:     "duplicatePlayer",
			Status:     "FAILED_PRECONDITION",
		}
	case errors.Is(err, roster.ErrRosterFull):
		return mappedError{
			HTTPStatus: http.StatusConflict,
			Reason:     "rosterFull",
			Status:     "FAILED_PRECONDITION",
		}
	case errors.Is(err, roster.ErrSubmissionLocked),
		errors.Is(err, session.ErrInvalidTransition):
		return mappedError{
			HTTPStatus: http.StatusConflict,
			Reason:     "rosterLocked",
			Status:     "FAILED_PRECONDITION",
		}
	case errors.Is(err, roster.ErrInsufficientBudget):
		return mappedError{
			HTTPStatus: http.StatusUnprocessableEntity,
			Reason:     "insufficientBudget",
			Status:     "FAILED_PRECONDITION",
		}
	case errors.Is(err, prediction.ErrIncompleteRoster):
		return mappedError{
			HTTPStatus: http.StatusUnprocessableEntity,
			Reason:     "incompleteRoster",
			Status:     "FAILED_PRECONDITION",
		}
	case errors.Is(err, player.ErrNoPlayersAvailable):
		return mappedError{
			HTTPStatus: http.StatusServiceUnavailable,
			Reason:     "noPlayersAvailable",
			Status:     "UNAVAILABLE",
		}
	case errors.Is(err, usecase.ErrDependencyUnavailable):
		return mappedError{
			HTTPStatus: http.StatusServiceUnavailable,
			Reason:     "dependencyUnavailable",
			Status:     "UNAVAILABLE",
		}
	case errors.Is(err, submission.ErrSubmissionFailed):
		return mappedError{
			HTTPStatus: http.StatusBadGateway,
			Reason:     "submissionFailed",
			Status:     "UNAVAILABLE",
		}
	default:
		return mappedError{
			HTTPStatus: http.StatusInternalServerError,
			Reason:     "internalError",
			Status:     "INTERNAL",
		}
	}
}
