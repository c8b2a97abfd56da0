package devserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// NewRouter builds the dev backend's route tree. Login, registration and the
// connectivity heartbeat are public; everything else requires a bearer token.
func NewRouter(store *MemStore, jwtManager *JWTManager, logger zerolog.Logger) http.Handler {
	h := NewHandlers(store, jwtManager, logger)

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logging(logger))
	r.Use(Metrics)

	r.Get("/", h.Root)
	r.Post("/login", h.Login)
	r.Post("/registro", h.Register)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(Authenticate(jwtManager, store))

		r.Get("/me", h.Me)
		r.Get("/ping-auth", h.PingAuth)
		r.Get("/logout", h.Logout)

		r.Route("/acesso", func(r chi.Router) {
			r.Get("/", h.ListAccesses)
			r.Post("/", h.CreateAccess)
			r.Put("/{id}", h.UpdateAccess)
			r.Delete("/{id}", h.DeleteAccess)
		})

		r.Put("/permissao/{id}", h.SetPermissions)

		r.Route("/responsavel", func(r chi.Router) {
			r.Get("/", h.ListParties)
			r.Post("/", h.CreateParty)
			r.Put("/{id}", h.UpdateParty)
			r.Delete("/{id}", h.DeleteParty)
		})

		r.Route("/banco", func(r chi.Router) {
			r.Get("/", h.ListBanks)
			r.Post("/", h.CreateBank)
			r.Put("/{id}", h.UpdateBank)
			r.Delete("/{id}", h.DeleteBank)
		})

		r.Route("/conta", func(r chi.Router) {
			r.Get("/", h.ListAccounts)
			r.Post("/", h.CreateAccount)
			r.Put("/{id}", h.UpdateAccount)
			r.Delete("/{id}", h.DeleteAccount)
		})

		r.Route("/cheque", func(r chi.Router) {
			r.Get("/", h.ListChecks)
			r.Post("/", h.CreateCheck)
			r.Put("/{id}", h.UpdateCheck)
			r.Delete("/{id}", h.DeleteCheck)
		})
	})

	return r
}
