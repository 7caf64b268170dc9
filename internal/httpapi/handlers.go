package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/clubhub-app/backend/internal/auth"
	"github.com/clubhub-app/backend/internal/domain"
)

const maxUploadBytes = 10 << 20

// BlobStore converts raw bytes into a durable, publicly fetchable URL.
type BlobStore interface {
	Upload(ctx context.Context, image []byte) (string, error)
}

// Notifier delivers a message to an email address.
type Notifier interface {
	Send(to, subject, body string) error
}

// MediaStore persists upload records.
type MediaStore interface {
	Insert(ctx context.Context, media *domain.Media) error
	List(ctx context.Context) ([]domain.Media, error)
}

// Handler bundles the services behind the HTTP surface.
type Handler struct {
	svc          *auth.Service
	archiver     *auth.Archiver
	blob         BlobStore
	media        MediaStore
	notifier     Notifier
	contactInbox string
	log          *zap.Logger
}

func NewHandler(svc *auth.Service, archiver *auth.Archiver, blob BlobStore, media MediaStore, notifier Notifier, contactInbox string, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		svc:          svc,
		archiver:     archiver,
		blob:         blob,
		media:        media,
		notifier:     notifier,
		contactInbox: contactInbox,
		log:          log,
	}
}

func decode(r *http.Request, dst interface{}) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

func (h *Handler) handleSignupRequestOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decode(r, &req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.svc.RequestSignupOTP(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "OTP sent successfully", nil)
}

func (h *Handler) handleSignupComplete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		OTP      string `json:"otp"`
	}
	if err := decode(r, &req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	user, err := h.svc.CompleteSignup(r.Context(), req.Username, req.Email, req.Password, req.OTP)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, "Signup successful", map[string]interface{}{
		"id":       user.ID.Hex(),
		"username": user.Username,
		"email":    user.Email,
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UsernameOrEmail string `json:"usernameOrEmail"`
		Password        string `json:"password"`
	}
	if err := decode(r, &req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	user, token, err := h.svc.Login(r.Context(), req.UsernameOrEmail, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "Login successful", map[string]interface{}{
		"token":    token,
		"username": user.Username,
	})
}

func (h *Handler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decode(r, &req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.svc.ForgotPassword(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "OTP sent to your email", nil)
}

func (h *Handler) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := decode(r, &req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	token, err := h.svc.VerifyResetOTP(r.Context(), req.Email, req.OTP)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "OTP verified successfully", map[string]string{
		"resetToken": token,
	})
}

func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		ResetToken  string `json:"resetToken"`
		NewPassword string `json:"newPassword"`
	}
	if err := decode(r, &req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.svc.ResetPassword(r.Context(), req.Email, req.ResetToken, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "Password reset successfully", nil)
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.Users(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]map[string]string, 0, len(users))
	for _, u := range users {
		out = append(out, map[string]string{
			"id":       u.ID.Hex(),
			"username": u.Username,
			"email":    u.Email,
		})
	}
	writeJSON(w, http.StatusOK, "Users fetched successfully", out)
}

func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.archiver.ArchiveAndDelete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "User deleted and stored in the deleted users collection", nil)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "No image file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "Failed to read image")
		return
	}

	url, err := h.blob.Upload(r.Context(), data)
	if err != nil {
		h.log.Error("blob upload failed", zap.String("op", "httpapi.upload"), zap.Error(err))
		writeErrorMsg(w, http.StatusInternalServerError, "Failed to upload image")
		return
	}

	media := &domain.Media{URL: url, Filename: header.Filename}
	if err := h.media.Insert(r.Context(), media); err != nil {
		h.log.Error("media insert failed", zap.String("op", "httpapi.upload"), zap.Error(err))
		writeErrorMsg(w, http.StatusInternalServerError, "Failed to save upload")
		return
	}

	writeJSON(w, http.StatusCreated, "Image uploaded successfully", map[string]string{
		"url": url,
	})
}

func (h *Handler) handleListUploads(w http.ResponseWriter, r *http.Request) {
	media, err := h.media.List(r.Context())
	if err != nil {
		writeErrorMsg(w, http.StatusInternalServerError, "Failed to fetch uploads")
		return
	}
	urls := make([]string, 0, len(media))
	for _, m := range media {
		urls = append(urls, m.URL)
	}
	writeJSON(w, http.StatusOK, "Uploads fetched successfully", urls)
}

func (h *Handler) handleContact(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Message string `json:"message"`
	}
	if err := decode(r, &req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Message == "" {
		writeErrorMsg(w, http.StatusBadRequest, "Name, email and message are required")
		return
	}

	confirmation := fmt.Sprintf(
		"<p>Dear %s,</p><p>Your message has been successfully received. We'll get back to you shortly.</p><p>Thank you!</p>",
		req.Name)
	if err := h.notifier.Send(req.Email, "Message Successfully Received", confirmation); err != nil {
		h.log.Error("contact confirmation failed", zap.String("op", "httpapi.contact"), zap.Error(err))
		writeErrorMsg(w, http.StatusInternalServerError, "Failed to send emails")
		return
	}

	forward := fmt.Sprintf(
		"<h3>New Contact Form Submission</h3><p><strong>Name:</strong> %s</p><p><strong>Email:</strong> %s</p><p><strong>Message:</strong><br/>%s</p>",
		req.Name, req.Email, req.Message)
	if err := h.notifier.Send(h.contactInbox, "New Contact Form Submission", forward); err != nil {
		h.log.Error("contact forward failed", zap.String("op", "httpapi.contact"), zap.Error(err))
		writeErrorMsg(w, http.StatusInternalServerError, "Failed to send emails")
		return
	}

	writeJSON(w, http.StatusOK, "Emails sent successfully", nil)
}

func (h *Handler) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, "ok", nil)
}
