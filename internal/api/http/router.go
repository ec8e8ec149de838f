package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mind-engage/skillcheck/internal/api/envelope"
	auth "github.com/mind-engage/skillcheck/internal/auth/middleware"
	"github.com/mind-engage/skillcheck/internal/quiz"
	"github.com/mind-engage/skillcheck/internal/rbac"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps is everything the router mounts handlers over.
type Deps struct {
	Auth        *auth.AuthService
	Users       UserStore
	Catalog     quiz.Catalog
	Options     OptionWriter
	Engine      Submitter
	Reports     ReportReader
	Events      EventReader
	DB          Pinger
	CORSOrigins []string
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.DB != nil {
			if err := d.DB.PingContext(r.Context()); err != nil {
				envelope.Fail(w, http.StatusServiceUnavailable, envelope.KindStoreUnavailable, "database unavailable")
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Post("/auth/register", RegisterHandler(d.Users))
	r.Post("/auth/login", LoginHandler(d.Auth, d.Users))
	r.Get("/auth/logout", LogoutHandler(d.Auth))

	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(d.Auth))
		pr.Use(auth.AttachRoleFromStore(d.Users))

		pr.Get("/auth/me", MeHandler(d.Users))
		pr.Put("/auth/password", ChangePasswordHandler(d.Users))

		pr.With(rbac.Require(rbac.PermSkillView)).Get("/skills", ListSkillsHandler(d.Catalog))
		pr.With(rbac.Require(rbac.PermSkillManage)).Post("/skills", CreateSkillHandler(d.Catalog))
		pr.With(rbac.Require(rbac.PermSkillManage)).Put("/skills/{id}", UpdateSkillHandler(d.Catalog))
		pr.With(rbac.Require(rbac.PermSkillManage)).Delete("/skills/{id}", DeleteSkillHandler(d.Catalog))

		pr.With(rbac.Require(rbac.PermQuestionView)).Get("/questions", ListQuestionsHandler(d.Catalog))
		pr.With(rbac.Require(rbac.PermQuizTake)).
			Get("/questions/questionWithOptions", QuestionsWithOptionsHandler(d.Catalog))
		pr.With(rbac.Require(rbac.PermQuestionManage)).Post("/questions", CreateQuestionHandler(d.Catalog))
		pr.With(rbac.Require(rbac.PermQuestionManage)).Delete("/questions/{id}", DeleteQuestionHandler(d.Catalog))

		pr.With(rbac.Require(rbac.PermOptionManage)).Post("/options", CreateOptionHandler(d.Options))
		pr.With(rbac.Require(rbac.PermOptionManage)).Put("/options/{id}", UpdateOptionHandler(d.Options))
		pr.With(rbac.Require(rbac.PermOptionManage)).Delete("/options/{id}", DeleteOptionHandler(d.Options))

		pr.With(rbac.Require(rbac.PermQuizTake)).Post("/quiz/submit", SubmitQuizHandler(d.Engine))

		pr.With(rbac.RequireAny(rbac.PermReportViewOwn, rbac.PermReportViewAll),
			rbac.RequireOwnerOr(rbac.PermReportViewAll, OwnsUserParam)).
			Get("/report/user/{userID}", UserReportHandler(d.Reports))
		pr.With(rbac.Require(rbac.PermReportViewAll)).Get("/report/all", AllReportsHandler(d.Reports))
		pr.With(rbac.RequireAny(rbac.PermReportViewOwn, rbac.PermReportViewAll)).
			Get("/report/attempt/{attemptID}", AttemptReportHandler(d.Reports))

		pr.With(rbac.Require(rbac.PermAuditView)).Get("/events", EventsHandler(d.Events))
	})

	return r
}
