package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ekazakov/taskmate/internal/common"
	"github.com/ekazakov/taskmate/internal/server/services"
)

// Boundary messages. The wording matches what API clients of the original
// deployment already expect.
const (
	msgNoCredentials   = "Authentication credentials were not provided."
	msgInvalidToken    = "Invalid token."
	msgForbidden       = "You do not have permission to perform this action."
	msgNotFound        = "Not found."
	msgInternal        = "Internal server error."
	msgLoggedOut       = "Successfully logged out."
	msgPasswordSaved   = "New password has been saved."
	msgResetEmailSent  = "Password reset e-mail has been sent."
	msgPasswordReset   = "Password has been reset with the new password."
	msgBadCredentials  = "Unable to log in with provided credentials."
	msgWrongOldPass    = "Your old password was entered incorrectly. Please enter it again."
	msgPasswordsDiffer = "The two password fields didn't match."
	msgInvalidResetTok = "Invalid or expired reset token."
)

type detailResponse struct {
	Detail string `json:"detail"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (s *Server) writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error(ctx, "error encoding response", "error", err.Error())
	}
}

func (s *Server) writeDetail(ctx context.Context, w http.ResponseWriter, status int, detail string) {
	s.writeJSON(ctx, w, status, detailResponse{Detail: detail})
}

// writeServiceError maps sentinel service errors onto the response contract.
// Anything unrecognized is a 500 and gets logged.
func (s *Server) writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		s.writeDetail(ctx, w, http.StatusNotFound, msgNotFound)
	case errors.Is(err, common.ErrorForbidden):
		s.writeDetail(ctx, w, http.StatusForbidden, msgForbidden)
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		s.writeDetail(ctx, w, http.StatusUnauthorized, msgInvalidToken)
	case errors.Is(err, services.ErrWrongOldPassword):
		s.writeJSON(ctx, w, http.StatusBadRequest, fieldErrors{"old_password": {msgWrongOldPass}})
	default:
		s.logger.Error(ctx, "request failed", "error", err.Error())
		s.writeDetail(ctx, w, http.StatusInternalServerError, msgInternal)
	}
}
