package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"character-chat/internal/usecase"
)

// reasonMessages holds the user-facing copy for reasons the web client shows verbatim.
var reasonMessages = map[string]string{
	"invalid_json":              "요청 데이터 형식이 올바르지 않습니다.",
	"empty_message":             "Message is required",
	"message_too_long":          "Message is too long",
	"unknown_persona":           "Unknown character",
	"unsupported_provider":      "Unsupported provider",
	"empty_email":               "이메일 주소를 입력해주세요.",
	"invalid_email":             "유효한 이메일 주소를 입력해주세요.",
	"duplicate_email":           "이미 등록된 이메일 주소입니다.",
	"store_not_configured":      "데이터베이스가 설정되지 않았습니다. 관리자에게 문의하세요.",
	"invalid_selected_features": "선택된 기능 목록이 올바르지 않습니다.",
}

var codeMessages = map[usecase.ErrorCode]string{
	usecase.ErrorRateLimited: "Too many requests, please try again later",
	usecase.ErrorUpstream:    "No response from AI",
	usecase.ErrorInternal:    "서버 오류가 발생했습니다.",
}

func statusFor(code usecase.ErrorCode) int {
	switch code {
	case usecase.ErrorInvalidInput, usecase.ErrorMissingInput, usecase.ErrorInvalidPersona:
		return http.StatusBadRequest
	case usecase.ErrorConflict:
		return http.StatusConflict
	case usecase.ErrorRateLimited:
		return http.StatusTooManyRequests
	case usecase.ErrorUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorResponseFor renders err; fallback is used for store failures that have
// no reason-specific copy.
func errorResponseFor(err error, fallback string) events.APIGatewayProxyResponse {
	var ucErr *usecase.Error
	if !errors.As(err, &ucErr) {
		slog.Error("unexpected error", "err", err)
		ucErr = &usecase.Error{Code: usecase.ErrorInternal, Reason: "unexpected", Err: err}
	}
	msg := reasonMessages[ucErr.Reason]
	if msg == "" && ucErr.Code == usecase.ErrorBackendUnavailable {
		msg = fallback
	}
	if msg == "" {
		msg = codeMessages[ucErr.Code]
	}
	if msg == "" {
		msg = codeMessages[usecase.ErrorInternal]
	}
	return jsonResponse(statusFor(ucErr.Code), errorResponse{Error: string(ucErr.Code), Message: msg})
}

func methodNotAllowed(allowed ...string) events.APIGatewayProxyResponse {
	resp := jsonResponse(http.StatusMethodNotAllowed, errorResponse{Error: "METHOD_NOT_ALLOWED", Message: "method not allowed"})
	resp.Headers["Allow"] = strings.Join(allowed, ", ")
	return resp
}

func jsonResponse(status int, body any) events.APIGatewayProxyResponse {
	b, err := json.Marshal(body)
	if err != nil {
		slog.Error("failed to marshal response", "err", err)
		status = http.StatusInternalServerError
		b = []byte(`{"error":"INTERNAL_ERROR","message":"failed to encode response"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(b),
	}
}
