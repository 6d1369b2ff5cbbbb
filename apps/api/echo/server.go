package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/abelmak/chapterdesk/core"
	"github.com/abelmak/chapterdesk/core/audit"
	"github.com/abelmak/chapterdesk/core/campaign"
	"github.com/abelmak/chapterdesk/core/chapter"
	"github.com/abelmak/chapterdesk/core/event"
	"github.com/abelmak/chapterdesk/core/finance"
	"github.com/abelmak/chapterdesk/core/member"
	"github.com/abelmak/chapterdesk/core/user"
)

type (
	ServerDeps struct {
		Conf           *core.Config
		Logger         core.Logger
		Validate       *validator.Validate
		Translator     ut.Translator
		DisableReqLogs bool

		UserSvc     user.Service
		ChapterSvc  chapter.Service
		MemberSvc   member.Service
		EventSvc    event.Service
		CampaignSvc campaign.Service
		FinanceSvc  finance.Service
		AuditSvc    audit.Service
	}

	Server interface {
		http.Handler
		Start()
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
		Shutdown(context.Context) error
		Close() error
	}

	server struct {
		deps     ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	initAuth(deps.Conf)

	s := &server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, syscall.SIGINT, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.deps.Conf.Debug || s.deps.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator)
	s.app.Debug = s.deps.Conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)
	auditmw := auditMiddleware(s.deps.AuditSvc)

	registerUserAPI(v1, jwt, auditmw, s.deps.UserSvc, s.deps.AuditSvc, s.deps.Validate)
	registerChapterAPI(v1, jwt, auditmw, s.deps.ChapterSvc, s.deps.Validate)
	registerMemberAPI(v1, jwt, auditmw, s.deps.MemberSvc, s.deps.ChapterSvc, s.deps.Validate)
	registerEventAPI(v1, jwt, auditmw, s.deps.EventSvc, s.deps.Validate)
	registerCampaignAPI(v1, jwt, auditmw, s.deps.CampaignSvc, s.deps.Validate)
	registerFinanceAPI(v1, jwt, auditmw, s.deps.FinanceSvc, s.deps.Validate)
	registerAuditAPI(v1, jwt, s.deps.AuditSvc)
}

func (s *server) Start() {
	s.errors <- s.app.Start(s.deps.Conf.Server.Addr)
}

func (s *server) Errors() <-chan error {
	return s.errors
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to ChapterDesk API!")
}
