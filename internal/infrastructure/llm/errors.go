package llm

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"

	apperrors "study-assistant-api/pkg/errors"
)

// ClassifyError 把上游错误归类：安全拦截与一般失败为 502，配额/不可用/超时为 503
func ClassifyError(err error) *apperrors.AppError {
	if err == nil {
		return nil
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return apperrors.ErrUpstreamGeneration.WithError(err).WithDetail("content blocked by safety policy")
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.ErrUpstreamUnavailable.WithError(err).WithDetail("model call timed out")
	}
	if errors.Is(err, context.Canceled) {
		return apperrors.ErrUpstreamUnavailable.WithError(err).WithDetail("model call canceled")
	}

	if status, ok := upstreamStatus(err); ok {
		switch status {
		case http.StatusTooManyRequests:
			return apperrors.ErrUpstreamUnavailable.WithError(err).WithDetail("quota exceeded")
		case http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return apperrors.ErrUpstreamUnavailable.WithError(err).WithDetail("model service unavailable")
		}
	}

	return apperrors.ErrUpstreamGeneration.WithError(err)
}

// IsRetryable 仅配额与不可用类错误允许重试
func IsRetryable(err *apperrors.AppError) bool {
	if err == nil || err.Code != apperrors.CodeUpstreamUnavailable {
		return false
	}
	return !errors.Is(err.Err, context.Canceled) && !errors.Is(err.Err, context.DeadlineExceeded)
}

// upstreamStatus 从 apierror / googleapi 错误中提取 HTTP 语义状态码
func upstreamStatus(err error) (int, bool) {
	if ae, ok := apierror.FromError(err); ok {
		if code := ae.HTTPCode(); code > 0 {
			return code, true
		}
		if st := ae.GRPCStatus(); st != nil {
			switch st.Code() {
			case codes.ResourceExhausted:
				return http.StatusTooManyRequests, true
			case codes.Unavailable:
				return http.StatusServiceUnavailable, true
			case codes.DeadlineExceeded:
				return http.StatusGatewayTimeout, true
			}
		}
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code, true
	}
	return 0, false
}
