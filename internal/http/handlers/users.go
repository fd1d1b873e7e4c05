package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"

	"server/internal/domain"
	"server/internal/middleware"
	"server/internal/validate"
)

// Me returns the authenticated user's profile.
func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "Please sign in to continue")
		return
	}
	user, err := a.Users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "User not found")
			return
		}
		a.Logger.Error().Err(err).Msg("load user failed")
		a.error(w, http.StatusInternalServerError, "internal", "An error occurred. Please try again")
		return
	}
	a.json(w, http.StatusOK, toUserDTO(user))
}

type userPatchRequest struct {
	Name         *string `json:"name"`
	Phone        *string `json:"phone"`
	ProfileImage *string `json:"profile_image"`
}

// UpdateMe applies a field-scoped profile edit. Email and role are not
// client-writable.
func (a *App) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "Please sign in to continue")
		return
	}

	var req userPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	var patch domain.UserPatch
	if req.Name != nil {
		if msg := validate.NameError(*req.Name); msg != "" {
			a.error(w, http.StatusBadRequest, "validation", msg)
			return
		}
		name := validate.SanitizeInput(*req.Name)
		patch.Name = &name
	}
	if req.Phone != nil {
		if msg := validate.PhoneError(*req.Phone); msg != "" {
			a.error(w, http.StatusBadRequest, "validation", msg)
			return
		}
		patch.Phone = req.Phone
	}
	if req.ProfileImage != nil {
		patch.ProfileImage = req.ProfileImage
	}
	if patch.IsEmpty() {
		a.error(w, http.StatusBadRequest, "bad_request", "no fields to update")
		return
	}

	if err := a.Users.Patch(r.Context(), userID, patch); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "User not found")
			return
		}
		a.Logger.Error().Err(err).Msg("patch user failed")
		a.error(w, http.StatusInternalServerError, "internal", "An error occurred. Please try again")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

const maxImageBytes = 5 << 20

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// UploadImage stores raw image bytes and returns the durable URL. With no
// blob store configured the endpoint degrades gracefully: the client gets
// an empty URL and the surrounding flow proceeds with no image reference.
func (a *App) UploadImage(w http.ResponseWriter, r *http.Request) {
	if a.Images == nil {
		a.json(w, http.StatusOK, map[string]string{"url": ""})
		return
	}

	ext, ok := imageExtensions[r.Header.Get("Content-Type")]
	if !ok {
		a.error(w, http.StatusUnsupportedMediaType, "bad_request", "unsupported image type")
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImageBytes))
	if err != nil {
		a.error(w, http.StatusRequestEntityTooLarge, "too_large", "image exceeds the size limit")
		return
	}
	if len(data) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "empty image")
		return
	}

	key := "images/" + uuid.NewString() + ext
	url, err := a.Images.Save(r.Context(), key, data)
	if err != nil {
		a.Logger.Error().Err(err).Msg("image upload failed")
		a.error(w, http.StatusInternalServerError, "internal", "An error occurred. Please try again")
		return
	}
	a.json(w, http.StatusCreated, map[string]string{"url": url})
}
