package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/models"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/repository"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/validation"
)

type CreateUserRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
	Company  string      `json:"company"`
	IsActive *bool       `json:"isActive"`
}

type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

type UserDetail struct {
	models.User
	NetworkCount int64 `json:"networkCount"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repository.UserFilter{Search: strings.TrimSpace(q.Get("search"))}

	if role := q.Get("role"); role != "" {
		f.Role = models.Role(role)
		if !f.Role.Valid() {
			h.fail(w, http.StatusBadRequest, "Invalid role filter")
			return
		}
	}
	if active := q.Get("active"); active != "" {
		v, err := strconv.ParseBool(active)
		if err != nil {
			h.fail(w, http.StatusBadRequest, "active must be true or false")
			return
		}
		f.Active = &v
	}

	users, err := h.repo.ListUsers(r.Context(), f)
	if err != nil {
		h.sendError(w, err)
		return
	}

	h.sendJSON(w, http.StatusOK, Response{Success: true, Data: users})
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	user, err := h.repo.GetUser(r.Context(), id)
	if err != nil {
		h.userError(w, err)
		return
	}

	count, err := h.repo.CountNetworks(r.Context(), repository.NetworkFilter{Owner: id})
	if err != nil {
		h.sendError(w, err)
		return
	}

	h.sendJSON(w, http.StatusOK, Response{Success: true, Data: UserDetail{User: *user, NetworkCount: count}})
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		h.fail(w, http.StatusBadRequest, "Name, email and password are required")
		return
	}
	if err := validation.Password(req.Password); err != nil {
		h.fail(w, http.StatusBadRequest, err.Error())
		return
	}

	user := models.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    normalizeEmail(req.Email),
		Role:     req.Role,
		Company:  req.Company,
		IsActive: true,
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if errs := validation.User(user); !errs.Empty() {
		h.invalid(w, errs)
		return
	}

	hashed, err := hashPassword(req.Password)
	if err != nil {
		h.sendError(w, err)
		return
	}
	user.Password = hashed

	if err := h.repo.CreateUser(r.Context(), &user); err != nil {
		h.userError(w, err)
		return
	}

	h.audit(r.Context(), r, models.SystemLog{
		Source:  "users",
		Message: fmt.Sprintf("User created: %s", user.Email),
		Details: details(map[string]interface{}{"userId": user.ID, "role": user.Role}),
	})
	h.logger.Info("User created", "user_id", user.ID)
	h.sendJSON(w, http.StatusCreated, Response{Success: true, Message: "User created successfully", Data: user})
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var patch models.UserPatch
	if !h.decode(w, r, &patch) {
		return
	}

	user, err := h.repo.GetUser(r.Context(), id)
	if err != nil {
		h.userError(w, err)
		return
	}

	patch.Apply(user)
	user.Email = normalizeEmail(user.Email)
	if errs := validation.User(*user); !errs.Empty() {
		h.invalid(w, errs)
		return
	}

	if err := h.repo.UpdateUser(r.Context(), user); err != nil {
		h.userError(w, err)
		return
	}

	h.audit(r.Context(), r, models.SystemLog{
		Source:  "users",
		Message: fmt.Sprintf("User updated: %s", user.Email),
		Details: details(map[string]interface{}{"userId": user.ID}),
	})
	h.logger.Info("User updated", "user_id", id)
	h.sendJSON(w, http.StatusOK, Response{Success: true, Message: "User updated successfully", Data: user})
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	user, err := h.repo.GetUser(r.Context(), id)
	if err != nil {
		h.userError(w, err)
		return
	}
	if err := h.repo.DeleteUser(r.Context(), id); err != nil {
		h.userError(w, err)
		return
	}

	h.audit(r.Context(), r, models.SystemLog{
		Level:   models.LevelWarning,
		Source:  "users",
		Message: fmt.Sprintf("User deleted: %s", user.Email),
		Details: details(map[string]interface{}{"userId": id}),
	})
	h.logger.Info("User deleted", "user_id", id)
	h.sendJSON(w, http.StatusOK, Response{Success: true, Message: "User deleted successfully"})
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req ResetPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.NewPassword == "" {
		h.fail(w, http.StatusBadRequest, "newPassword is required")
		return
	}
	if err := validation.Password(req.NewPassword); err != nil {
		h.fail(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.repo.GetUser(r.Context(), id)
	if err != nil {
		h.userError(w, err)
		return
	}

	hashed, err := hashPassword(req.NewPassword)
	if err != nil {
		h.sendError(w, err)
		return
	}
	user.Password = hashed
	if err := h.repo.UpdateUser(r.Context(), user); err != nil {
		h.sendError(w, err)
		return
	}

	h.audit(r.Context(), r, models.SystemLog{
		Source:  "users",
		Message: fmt.Sprintf("Password reset for %s", user.Email),
		Details: details(map[string]interface{}{"userId": id}),
	})
	h.sendJSON(w, http.StatusOK, Response{Success: true, Message: "Password reset successfully"})
}

func (h *Handler) userError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		h.fail(w, http.StatusNotFound, "User not found")
	case errors.Is(err, repository.ErrDuplicate):
		h.fail(w, http.StatusBadRequest, "A user with this email already exists")
	default:
		h.sendError(w, err)
	}
}
