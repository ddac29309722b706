package jwt

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IngestToken identifies an authenticated ingest client (the bot or the
// dashboard), not an end user; the store has no user accounts of its own.
type IngestToken struct {
	ClientID string `json:"clientID"`
	jwt.RegisteredClaims
}

const tokenLifeTime = time.Hour * 24

var jwtSecret []byte
var isHttps bool

func Setup(_key string, _isHttps bool) {
	jwtSecret = []byte(_key)
	isHttps = _isHttps
}

func CreateToken(clientID string) (http.Cookie, error) {
	currentTime := time.Now().UTC()
	expirationDate := currentTime.Add(tokenLifeTime)

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, IngestToken{
		ClientID: clientID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(expirationDate),
		},
	})

	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		return http.Cookie{}, err
	}

	cookie := http.Cookie{
		Name:     "JWT",
		Value:    tokenString,
		Path:     "/",
		Expires:  expirationDate,
		HttpOnly: true,
		Secure:   isHttps,
		SameSite: http.SameSiteLaxMode,
	}

	return cookie, nil
}

func VerifyToken(tokenString string) (IngestToken, error) {
	token, err := jwt.ParseWithClaims(tokenString, &IngestToken{}, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	})
	if err != nil {
		return IngestToken{}, err
	} else if claims, ok := token.Claims.(*IngestToken); ok {
		return *claims, nil
	} else {
		return IngestToken{}, errors.New("invalid token")
	}
}
