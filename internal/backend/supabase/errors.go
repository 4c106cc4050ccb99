package supabase

import (
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/supabase-community/gotrue-go/types"

	"zheliyou/internal/remote"
)

var (
	// postgrest-go reports API errors as "(code) message".
	restErrRe = regexp.MustCompile(`(?s)^\(([^)]*)\) (.*)$`)
	// gotrue-go reports API errors as "response status code N[: body]".
	authErrRe = regexp.MustCompile(`(?s)^response status code (\d+)(?:: (.*))?$`)
)

type authErrorBody struct {
	Code             any    `json:"code"`
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// translate turns SDK errors that carry a backend response into
// *remote.ServiceError. Other errors are returned unchanged.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, types.ErrInvalidTokenRequest) {
		return &remote.ServiceError{Status: 400, Code: "validation_failed", Message: "email and password are required"}
	}

	msg := err.Error()
	if m := restErrRe.FindStringSubmatch(msg); m != nil {
		return &remote.ServiceError{Code: m[1], Message: strings.TrimSpace(m[2])}
	}
	if m := authErrRe.FindStringSubmatch(msg); m != nil {
		status, _ := strconv.Atoi(m[1])
		return authServiceError(status, m[2])
	}
	return err
}

func authServiceError(status int, body string) *remote.ServiceError {
	out := &remote.ServiceError{Status: status}
	body = strings.TrimSpace(body)

	var parsed authErrorBody
	if body != "" && json.Unmarshal([]byte(body), &parsed) == nil {
		out.Code = parsed.ErrorCode
		if out.Code == "" {
			if s, ok := parsed.Code.(string); ok {
				out.Code = s
			}
		}
		for _, candidate := range []string{parsed.Msg, parsed.Message, parsed.ErrorDescription, parsed.Error} {
			if strings.TrimSpace(candidate) != "" {
				out.Message = strings.TrimSpace(candidate)
				break
			}
		}
	} else if body != "" {
		out.Message = body
	}
	if out.Message == "" {
		out.Message = "auth request failed with status " + strconv.Itoa(status)
	}
	return out
}
