package controllers

import (
	"errors"
	"net/http"
	"time"

	"ewaste-pickup/models"
	"ewaste-pickup/services"
	"ewaste-pickup/utils"
)

// UserController handles registration, login and profile requests
type UserController struct {
	Accounts AccountService
	Timeout  time.Duration
}

// NewUserController creates a new UserController
func NewUserController(accounts AccountService, timeout time.Duration) *UserController {
	return &UserController{Accounts: accounts, Timeout: timeout}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles user registration
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := requestContext(r, uc.Timeout)
	defer cancel()
	user, err := uc.Accounts.Register(ctx, in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]any{"user": user})
}

// Login handles user authentication
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var creds loginRequest
	if err := decodeJSON(w, r, &creds); err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := requestContext(r, uc.Timeout)
	defer cancel()
	result, err := uc.Accounts.Login(ctx, creds.Email, creds.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"user":      result.User,
		"token":     result.Token,
		"expiresAt": result.ExpiresAt,
	})
}

// GetProfile retrieves the authenticated user's profile
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := requestContext(r, uc.Timeout)
	defer cancel()
	user, err := uc.Accounts.GetProfile(ctx, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{"user": user})
}

// UpdateProfile writes the contact fields present in the body
func (uc *UserController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var update models.ProfileUpdate
	if err := decodeJSON(w, r, &update); err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := requestContext(r, uc.Timeout)
	defer cancel()
	user, err := uc.Accounts.UpdateProfile(ctx, userID, update)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"user":    user,
		"message": "Profile updated successfully",
	})
}

// UploadProfilePicture stores the multipart "file" field as the profile picture
func (uc *UserController) UploadProfilePicture(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(maxUploadBody); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, utils.ValidationError("Image must be 5MB or smaller"))
			return
		}
		writeError(w, r, utils.ValidationError("Invalid upload"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, utils.ValidationError("No file provided"))
		return
	}
	defer file.Close()

	if ct := header.Header.Get("Content-Type"); ct != "" && !isImage(ct) {
		writeError(w, r, utils.ValidationError("Only image uploads are allowed"))
		return
	}

	ctx, cancel := requestContext(r, uc.Timeout)
	defer cancel()
	user, err := uc.Accounts.UpdateProfilePicture(ctx, userID, file)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"user":    user,
		"message": "Profile picture updated successfully",
	})
}

func isImage(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}
