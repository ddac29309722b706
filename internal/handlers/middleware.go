package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"guardlog-backend/internal/jwt"
	"guardlog-backend/internal/keyValue"
)

type SessionIDKeyType struct{}
type ClientIDKeyType struct{}

func AllowCors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// SessionVerifier checks the JWT cookie and the server side session state
// behind it, then passes the session and client identity to the next handler.
func SessionVerifier(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		jwtCookie, err := r.Cookie("JWT")
		if err != nil {
			sugar.Debug(err)
			switch {
			case errors.Is(err, http.ErrNoCookie):
				http.Error(w, "No jwt cookie was provided", http.StatusUnauthorized)
			default:
				http.Error(w, "Couldn't read jwt cookie", http.StatusInternalServerError)
			}
			return
		}

		ingestToken, err := jwt.VerifyToken(jwtCookie.Value)
		if err != nil {
			sugar.Debug(err)
			http.Error(w, "Couldn't verify JWT", http.StatusBadRequest)
			return
		}

		expired := time.Now().UTC().After(ingestToken.ExpiresAt.UTC())
		if expired {
			http.Error(w, "Login expired", http.StatusUnauthorized)
			return
		}

		sessionCookie, err := r.Cookie("session")
		if err != nil {
			sugar.Debug(err)
			http.Error(w, "No session cookie was provided", http.StatusUnauthorized)
			return
		}

		// a jwt outliving its logged-out session must not keep working
		value, err := keyValue.Get("session:" + sessionCookie.Value)
		if err != nil {
			sugar.Error(err)
			http.Error(w, "", http.StatusInternalServerError)
			return
		}

		if value == "" {
			http.Error(w, "Session is no longer active", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), SessionIDKeyType{}, sessionCookie.Value)
		ctx = context.WithValue(ctx, ClientIDKeyType{}, ingestToken.ClientID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
