package handlers

import (
	"fmt"
	"net/http"
	"time"

	"guardlog-backend/internal/chatlog"
	"guardlog-backend/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var sugar *zap.SugaredLogger
var service *chatlog.Service
var apiKeyHash []byte

var validate = validator.New(validator.WithRequiredStructEnabled())

func Setup(isHttps bool, cfg *models.ConfigFile, _sugar *zap.SugaredLogger, _service *chatlog.Service) error {
	sugar = _sugar
	service = _service
	apiKeyHash = []byte(cfg.ApiKeyHash)

	r := chi.NewRouter()
	if cfg.Cors {
		r.Use(AllowCors)
	}
	if cfg.PrintHttpRequests {
		r.Use(middleware.Logger)
	}

	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/api", func(api chi.Router) {
		api.Get("/test/health", Health)

		api.Route("/auth", func(r chi.Router) {
			r.Post("/login", Login)
			r.With(SessionVerifier).Post("/logout", Logout)
			r.With(SessionVerifier).Get("/isLoggedIn", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
		})

		api.Route("/user", func(r chi.Router) {
			r.Use(SessionVerifier)
			r.Post("/create", CreateUser)
			r.Post("/delete", DeleteUser)
			r.Get("/fetch", GetUser)
		})

		api.Route("/guild", func(r chi.Router) {
			r.Use(SessionVerifier)
			r.Post("/create", CreateGuild)
			r.Post("/delete", DeleteGuild)
			r.Get("/fetch", GetGuild)
		})

		api.Route("/message", func(r chi.Router) {
			r.Use(SessionVerifier)
			r.Post("/save", SaveMessage)
			r.Post("/reset", ResetMessage)
			r.Post("/delete", DeleteMessage)
			r.Get("/get", GetMessage)
			r.Get("/listByUser", ListMessagesByUser)
			r.Get("/listByServer", ListMessagesByServer)
		})
	})

	var websocketPath string

	if cfg.BehindNginx {
		websocketPath = "/ws/"
	} else {
		websocketPath = "/ws"
	}

	r.With(SessionVerifier).Get(websocketPath, Feed)

	address := fmt.Sprintf("%s:%s", cfg.Address, cfg.Port)

	if isHttps {
		return http.ListenAndServeTLS(address, cfg.TlsCert, cfg.TlsKey, r)
	}
	return http.ListenAndServe(address, r)
}
