package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/clubhub-app/backend/internal/auth"
)

// APIResponse is the uniform envelope for every endpoint.
type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse{Status: "success", Message: message, Data: data})
}

func writeErrorMsg(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse{Status: "error", Message: msg})
}

// writeError maps the service taxonomy onto HTTP statuses. The three OTP
// verification failures collapse into one external message; internally they
// stay distinct error kinds.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrValidation):
		writeErrorMsg(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrInvalidOTP),
		errors.Is(err, auth.ErrNoOutstandingCode),
		errors.Is(err, auth.ErrOTPExpired):
		writeErrorMsg(w, http.StatusBadRequest, "Invalid or expired OTP")
	case errors.Is(err, auth.ErrInvalidResetGrant):
		writeErrorMsg(w, http.StatusBadRequest, "Invalid or expired reset token")
	case errors.Is(err, auth.ErrDuplicateEmail):
		writeErrorMsg(w, http.StatusBadRequest, "Email already registered")
	case errors.Is(err, auth.ErrIncorrectPassword):
		writeErrorMsg(w, http.StatusUnauthorized, "Invalid credentials: Incorrect password")
	case errors.Is(err, auth.ErrUserNotFound):
		writeErrorMsg(w, http.StatusNotFound, "User not found")
	case errors.Is(err, auth.ErrDelivery):
		writeErrorMsg(w, http.StatusInternalServerError, "Failed to send OTP")
	default:
		writeErrorMsg(w, http.StatusInternalServerError, "Internal server error")
	}
}
