package auth

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"go.uber.org/zap"

	"github.com/packline/catalog/app/api"
	"github.com/packline/catalog/models"
)

type TokenResponse struct {
	Token string `json:"token"`
}

type CredentialChecker interface {
	Login(username, password string) (*models.Token, error)
}

type TokenHandler struct {
	repo CredentialChecker
	log  *zap.Logger
}

func NewTokenHandler(r CredentialChecker, log *zap.Logger) *TokenHandler {
	return &TokenHandler{repo: r, log: log}
}

// HandleObtainToken exchanges a username and password for the account's API
// token. The body may be JSON or a form.
func (h *TokenHandler) HandleObtainToken(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch ct {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		input.Username = r.FormValue("username")
		input.Password = r.FormValue("password")
	default:
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			api.BadJSON(w, err)
			return
		}
	}

	v := &models.ValidationError{}
	if input.Username == "" {
		v.Add("username", "This field is required.")
	}
	if input.Password == "" {
		v.Add("password", "This field is required.")
	}
	if err := v.OrNil(); err != nil {
		api.WriteError(w, h.log, err, "Token")
		return
	}

	token, err := h.repo.Login(input.Username, input.Password)
	if errors.Is(err, models.ErrInvalidCredentials) {
		api.WriteJSON(w, http.StatusUnauthorized, api.ErrorBody{Error: "Invalid credentials"})
		return
	}
	if err != nil {
		api.WriteError(w, h.log, err, "Token")
		return
	}

	api.WriteJSON(w, http.StatusOK, TokenResponse{Token: token.Key})
}
