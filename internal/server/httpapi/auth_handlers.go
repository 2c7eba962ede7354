package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ekazakov/taskmate/internal/common"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type passwordChangeRequest struct {
	OldPassword  string `json:"old_password"`
	NewPassword1 string `json:"new_password1"`
	NewPassword2 string `json:"new_password2"`
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

type passwordResetConfirmRequest struct {
	Token        string `json:"token"`
	NewPassword1 string `json:"new_password1"`
	NewPassword2 string `json:"new_password2"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	decodeJSON(r, &req)

	ferrs := fieldErrors{}
	ferrs.requireNonBlank("email", req.Email)
	ferrs.requireNonBlank("password", req.Password)
	if req.Email != "" && !emailRegex.MatchString(req.Email) {
		ferrs.add("email", msgInvalidEmail)
	}
	if len(ferrs) > 0 {
		s.writeJSON(r.Context(), w, http.StatusBadRequest, ferrs)
		return
	}

	token, err := s.users.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			s.writeJSON(r.Context(), w, http.StatusBadRequest, fieldErrors{
				"email": {fmt.Sprintf("%s already registered", req.Email)},
			})
			return
		}
		s.writeServiceError(r.Context(), w, err)
		return
	}

	s.writeJSON(r.Context(), w, http.StatusCreated, tokenResponse{Token: token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	decodeJSON(r, &req)

	ferrs := fieldErrors{}
	ferrs.requireNonBlank("email", req.Email)
	ferrs.requireNonBlank("password", req.Password)
	if len(ferrs) > 0 {
		s.writeJSON(r.Context(), w, http.StatusBadRequest, ferrs)
		return
	}

	token, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			s.writeJSON(r.Context(), w, http.StatusBadRequest, fieldErrors{
				"non_field_errors": {msgBadCredentials},
			})
			return
		}
		s.writeServiceError(r.Context(), w, err)
		return
	}

	s.writeJSON(r.Context(), w, http.StatusOK, tokenResponse{Token: token})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		s.writeDetail(r.Context(), w, http.StatusUnauthorized, msgNoCredentials)
		return
	}

	if err := s.users.Logout(r.Context(), user.ID); err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}

	s.writeDetail(r.Context(), w, http.StatusOK, msgLoggedOut)
}

func (s *Server) handlePasswordChange(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		s.writeDetail(r.Context(), w, http.StatusUnauthorized, msgNoCredentials)
		return
	}

	var req passwordChangeRequest
	decodeJSON(r, &req)

	ferrs := fieldErrors{}
	ferrs.requireNonBlank("old_password", req.OldPassword)
	ferrs.requireNonBlank("new_password1", req.NewPassword1)
	ferrs.requireNonBlank("new_password2", req.NewPassword2)
	if len(ferrs) > 0 {
		s.writeJSON(r.Context(), w, http.StatusBadRequest, ferrs)
		return
	}
	if req.NewPassword1 != req.NewPassword2 {
		s.writeJSON(r.Context(), w, http.StatusBadRequest, fieldErrors{
			"new_password2": {msgPasswordsDiffer},
		})
		return
	}

	if err := s.users.ChangePassword(r.Context(), user.ID, req.OldPassword, req.NewPassword1); err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}

	s.writeDetail(r.Context(), w, http.StatusOK, msgPasswordSaved)
}

func (s *Server) handlePasswordReset(w http.ResponseWriter, r *http.Request) {
	var req passwordResetRequest
	decodeJSON(r, &req)

	ferrs := fieldErrors{}
	ferrs.requireNonBlank("email", req.Email)
	if req.Email != "" && !emailRegex.MatchString(req.Email) {
		ferrs.add("email", msgInvalidEmail)
	}
	if len(ferrs) > 0 {
		s.writeJSON(r.Context(), w, http.StatusBadRequest, ferrs)
		return
	}

	if err := s.users.RequestPasswordReset(r.Context(), req.Email); err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}

	// Same acknowledgement whether or not the account exists.
	s.writeDetail(r.Context(), w, http.StatusOK, msgResetEmailSent)
}

func (s *Server) handlePasswordResetConfirm(w http.ResponseWriter, r *http.Request) {
	var req passwordResetConfirmRequest
	decodeJSON(r, &req)

	ferrs := fieldErrors{}
	ferrs.requireNonBlank("token", req.Token)
	ferrs.requireNonBlank("new_password1", req.NewPassword1)
	ferrs.requireNonBlank("new_password2", req.NewPassword2)
	if len(ferrs) > 0 {
		s.writeJSON(r.Context(), w, http.StatusBadRequest, ferrs)
		return
	}
	if req.NewPassword1 != req.NewPassword2 {
		s.writeJSON(r.Context(), w, http.StatusBadRequest, fieldErrors{
			"new_password2": {msgPasswordsDiffer},
		})
		return
	}

	if err := s.users.ConfirmPasswordReset(r.Context(), req.Token, req.NewPassword1); err != nil {
		if errors.Is(err, common.ErrInvalidToken) || errors.Is(err, common.ErrTokenExpired) {
			s.writeJSON(r.Context(), w, http.StatusBadRequest, fieldErrors{
				"token": {msgInvalidResetTok},
			})
			return
		}
		s.writeServiceError(r.Context(), w, err)
		return
	}

	s.writeDetail(r.Context(), w, http.StatusOK, msgPasswordReset)
}
