package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"guardlog-backend/internal/jwt"
	"guardlog-backend/internal/keyValue"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const sessionLifeTime = time.Hour * 24

func Login(w http.ResponseWriter, r *http.Request) {
	type Login struct {
		ClientID string `json:"clientID" validate:"required,max=64"`
		ApiKey   string `json:"apiKey" validate:"required"`
	}

	var login Login
	err := json.NewDecoder(r.Body).Decode(&login)
	if err != nil {
		sugar.Debug(err)
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	err = validate.Struct(login)
	if err != nil {
		var validateErrs validator.ValidationErrors
		if errors.As(err, &validateErrs) {
			sugar.Debug(err)
			http.Error(w, "", http.StatusBadRequest)
		} else {
			sugar.Error(err)
			http.Error(w, "", http.StatusInternalServerError)
		}
		return
	}

	err = bcrypt.CompareHashAndPassword(apiKeyHash, []byte(login.ApiKey))
	if err != nil {
		sugar.Debug(err)
		http.Error(w, "", http.StatusUnauthorized)
		return
	}

	jwtCookie, err := jwt.CreateToken(login.ClientID)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	state := uuid.NewString()

	err = keyValue.Set("session:"+state, login.ClientID, sessionLifeTime)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	sessionCookie := http.Cookie{
		Name:     "session",
		Value:    state,
		Path:     "/",
		Expires:  time.Now().UTC().Add(sessionLifeTime),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	http.SetCookie(w, &jwtCookie)
	http.SetCookie(w, &sessionCookie)

	sugar.Debugf("Client [%s] logged in with session state [%s]", login.ClientID, state)
}

func Logout(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Context().Value(SessionIDKeyType{}).(string)

	err := keyValue.Delete("session:" + sessionID)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	expiredJwtCookie := &http.Cookie{
		Name:     "JWT",
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
	}

	expiredSessionCookie := &http.Cookie{
		Name:     "session",
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
	}

	http.SetCookie(w, expiredJwtCookie)
	http.SetCookie(w, expiredSessionCookie)
}
