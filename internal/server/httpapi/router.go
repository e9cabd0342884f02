// Package httpapi exposes the auth, todo and user services over REST using
// chi. Protected routes resolve the caller from a bearer token.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/server/auth"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/dmitrijs2005/todokeeper/internal/server/result"
	"github.com/dmitrijs2005/todokeeper/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Authenticator interface {
	Register(ctx context.Context, req services.RegisterRequest) result.Result[string]
	Login(ctx context.Context, req services.LoginRequest) result.Result[string]
	ValidateToken(ctx context.Context, token string) *models.User
}

type ToDoManager interface {
	ListAll(ctx context.Context) result.Result[[]*models.ToDoItem]
	ListByOwner(ctx context.Context, callerUserID string) result.Result[[]*models.ToDoItem]
	GetByID(ctx context.Context, id int64) result.Result[*models.ToDoItem]
	Create(ctx context.Context, item *models.ToDoItem) result.Result[*models.ToDoItem]
	Update(ctx context.Context, callerUserID string, id int64, item *models.ToDoItem) result.Result[*models.ToDoItem]
	DeleteByOwner(ctx context.Context, callerUserID string, id int64) result.Result[*models.ToDoItem]
}

type UserLister interface {
	ListAllUsers(ctx context.Context) result.Result[[]*models.User]
}

type Exporter interface {
	Export(ctx context.Context, callerUserID string) result.Result[*services.ExportLink]
}

// Deps groups what the router needs.
type Deps struct {
	Auth           Authenticator
	ToDo           ToDoManager
	Users          UserLister
	Export         Exporter
	Tokens         auth.TokenIssuer
	Log            logging.Logger
	AllowedOrigins []string
}

type handler struct {
	auth   Authenticator
	todo   ToDoManager
	users  UserLister
	export Exporter
	tokens auth.TokenIssuer
	log    logging.Logger
}

// NewRouter builds the HTTP handler tree.
func NewRouter(d Deps) http.Handler {
	h := &handler{
		auth:   d.Auth,
		todo:   d.ToDo,
		users:  d.Users,
		export: d.Export,
		tokens: d.Tokens,
		log:    d.Log,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(d.Log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.register)
		r.Post("/auth/login", h.login)

		r.Get("/user", h.listUsers)

		r.Route("/todo", func(r chi.Router) {
			r.Use(h.requireCaller)

			r.Get("/", h.listMine)
			r.Get("/all", h.listAll)
			r.Post("/", h.create)
			r.Post("/export", h.exportItems)
			r.Get("/{id}", h.getByID)
			r.Put("/{id}", h.update)
			r.Delete("/{id}", h.deleteItem)
		})
	})

	return r
}

func requestLogger(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.Info(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
