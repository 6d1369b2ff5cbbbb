package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/abelmak/chapterdesk/apps/api/echo"
	"github.com/abelmak/chapterdesk/core"
	"github.com/abelmak/chapterdesk/core/audit"
	"github.com/abelmak/chapterdesk/core/campaign"
	"github.com/abelmak/chapterdesk/core/chapter"
	"github.com/abelmak/chapterdesk/core/event"
	"github.com/abelmak/chapterdesk/core/finance"
	"github.com/abelmak/chapterdesk/core/member"
	"github.com/abelmak/chapterdesk/core/user"
	emailsvc "github.com/abelmak/chapterdesk/services/email"
	logsvc "github.com/abelmak/chapterdesk/services/logger"
	"github.com/abelmak/chapterdesk/storage/database"
	inmemdb "github.com/abelmak/chapterdesk/storage/database/inmem"
	sqlxrepos "github.com/abelmak/chapterdesk/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up repositories
	repos, closeDB, err := setUpRepos(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = closeDB(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	usrSvc := user.NewService(conf, repos.user, mailSvc)
	chapterSvc := chapter.NewService(repos.chapter, repos.stats)
	memberSvc := member.NewService(repos.member, mailSvc)
	eventSvc := event.NewService(repos.event)
	financeSvc := finance.NewService(repos.finance)
	campaignSvc := campaign.NewService(repos.campaign, memberSvc, mailSvc)
	auditSvc := audit.NewService(repos.audit, logger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	chapter.InitValidators(validate, translator)
	member.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	core.ParseEmailTemplates(conf, logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err = http.ListenAndServe(conf.Server.DebugAddr, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:        conf,
			Logger:      logger,
			Validate:    validate,
			Translator:  translator,
			UserSvc:     usrSvc,
			ChapterSvc:  chapterSvc,
			MemberSvc:   memberSvc,
			EventSvc:    eventSvc,
			CampaignSvc: campaignSvc,
			FinanceSvc:  financeSvc,
			AuditSvc:    auditSvc,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

type repositories struct {
	user     user.Repository
	chapter  chapter.Repository
	member   member.Repository
	event    event.Repository
	finance  finance.Repository
	campaign campaign.Repository
	audit    audit.Repository
	stats    chapter.StatsSource
}

// setUpRepos wires the configured storage engine; an empty engine runs
// everything in memory (useful for local hacking and demos).
func setUpRepos(conf *core.Config) (*repositories, func() error, error) {
	if conf.Database.Engine == "" {
		db, err := inmemdb.Open()
		if err != nil {
			return nil, nil, err
		}
		repos := &repositories{
			user:     inmemdb.NewUserRepository(db),
			chapter:  inmemdb.NewChapterRepository(db),
			member:   inmemdb.NewMemberRepository(db),
			event:    inmemdb.NewEventRepository(db),
			finance:  inmemdb.NewTransactionRepository(db),
			campaign: inmemdb.NewCampaignRepository(db),
			audit:    inmemdb.NewAuditRepository(db),
			stats:    inmemdb.NewChapterStats(db),
		}
		return repos, func() error { return nil }, nil
	}

	db, err := setUpDB(conf)
	if err != nil {
		return nil, nil, err
	}
	repos := &repositories{
		user:     sqlxrepos.NewUserRepository(db),
		chapter:  sqlxrepos.NewChapterRepository(db),
		member:   sqlxrepos.NewMemberRepository(db),
		event:    sqlxrepos.NewEventRepository(db),
		finance:  sqlxrepos.NewTransactionRepository(db),
		campaign: sqlxrepos.NewCampaignRepository(db),
		audit:    sqlxrepos.NewAuditRepository(db),
		stats:    sqlxrepos.NewChapterStats(db),
	}
	return repos, db.Close, nil
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
