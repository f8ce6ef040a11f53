package router

import (
	"database/sql"
	"net/http"
	"os"

	mem "concierium/internal/adapters/storage/memory"
	pg "concierium/internal/adapters/storage/postgres"
	"concierium/internal/domain/attachments"
	"concierium/internal/domain/catalog"
	"concierium/internal/domain/dashboard"
	"concierium/internal/domain/requests"
	"concierium/internal/domain/users"
	"concierium/internal/middleware"
	"concierium/internal/platform/logger"
	"concierium/internal/ports/auth"
	"concierium/internal/ports/notify"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev: headers X-Debug-*)
	Tokens       users.TokenIssuer // nil => login deshabilitado

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	Notifier notify.Notifier // nil => transiciones sin correo
	Log      logger.Logger
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	var (
		usersRepo    users.Repository
		requestsRepo requests.Repository
		catalogRepo  catalog.Repository
		attachRepo   attachments.Repository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			}
		}
	}

	if db != nil {
		usersRepo = pg.NewUsersRepo(db)
		requestsRepo = pg.NewRequestsRepo(db)
		catalogRepo = pg.NewCatalogRepo(db)
		attachRepo = pg.NewAttachmentsRepo(db)
	} else {
		usersRepo = mem.NewUsersRepo()
		requestsRepo = mem.NewRequestsRepo()
		catalogRepo = mem.NewCatalogRepo()
		attachRepo = mem.NewAttachmentsRepo()
	}

	// Services por módulo
	usersSvc := users.NewService(usersRepo, opts.Tokens)
	requestsSvc := requests.NewService(requestsRepo, usersSvc, opts.Notifier, opts.Log)
	catalogSvc := catalog.NewService(catalogRepo)
	attachSvc := attachments.NewService(attachRepo, requestsSvc)
	dashboardSvc := dashboard.NewService(requestsSvc, usersSvc, catalogSvc)

	// Rutas por módulo
	users.RegisterRoutes(r, usersSvc)
	requests.RegisterRoutes(r, requestsSvc)
	catalog.RegisterRoutes(r, catalogSvc)
	attachments.RegisterRoutes(r, attachSvc)
	dashboard.RegisterRoutes(r, dashboardSvc)

	return r
}
