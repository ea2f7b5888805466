package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cessadesk/cessadesk/internal/auth"
	"github.com/cessadesk/cessadesk/internal/config"
	"github.com/cessadesk/cessadesk/internal/db"
	"github.com/cessadesk/cessadesk/internal/errs"
	"github.com/cessadesk/cessadesk/internal/events"
	"github.com/cessadesk/cessadesk/internal/handler"
	"github.com/cessadesk/cessadesk/internal/intake"
	"github.com/cessadesk/cessadesk/internal/objstore"
	"github.com/cessadesk/cessadesk/internal/repository"
	"github.com/cessadesk/cessadesk/internal/router"
	"github.com/cessadesk/cessadesk/internal/service"
	"github.com/cessadesk/cessadesk/internal/sqlstore"
	"github.com/cessadesk/cessadesk/internal/store"
	"github.com/cessadesk/cessadesk/internal/upload"
)

const keepAliveInterval = 30 * time.Second

// App is the fully wired application for one configuration.
type App struct {
	cfg     *config.Config
	catalog *intake.Catalog

	submissions store.Submissions
	lawyers     store.Lawyers
	objects     store.Objects
	events      events.Publisher

	Intake      *service.IntakeService
	Submissions *service.SubmissionService
	Lawyers     *service.LawyerService
	Auth        *service.AuthService

	pool    *db.Pool
	sql     *sqlstore.DB
	setup   []setupStep
	closers []func() error
}

// setupStep is an idempotent backend preparation, like index creation.
type setupStep struct {
	name string
	run  func(context.Context) error
}

// Build connects every configured backend. SQL migrations run here;
// OxiDB index and bucket creation is left to Setup.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg}
	if err := a.build(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context) error {
	cfg := a.cfg
	catalog, err := intake.LoadCatalog(cfg.Intake.Catalog)
	if err != nil {
		return errs.Config(err.Error(), "set "+config.EnvName("intake.catalog")+" to default, judicial or a YAML file")
	}
	a.catalog = catalog

	if cfg.UsesOxiDB() {
		o := cfg.Backend.OxiDB
		pool, err := db.NewPool(o.Host, o.Port, o.PoolSize, keepAliveInterval)
		if err != nil {
			return errs.Persistence(fmt.Sprintf("connect to OxiDB at %s:%d", o.Host, o.Port), err)
		}
		a.pool = pool
		a.closers = append(a.closers, func() error { pool.Close(); return nil })
		log.Printf("Connected to OxiDB at %s:%d (pool size: %d)", o.Host, o.Port, o.PoolSize)
	}

	if err := a.buildTables(ctx); err != nil {
		return err
	}
	if err := a.buildObjects(ctx); err != nil {
		return err
	}
	a.buildEvents()

	a.Intake = service.NewIntakeService(catalog, upload.NewOrchestrator(a.objects), a.submissions, a.events)
	a.Submissions = service.NewSubmissionService(a.submissions, a.objects, a.events)
	a.Lawyers = service.NewLawyerService(a.lawyers, a.events)
	a.Auth = service.NewAuthService(a.authenticator(), cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	return nil
}

func (a *App) buildTables(ctx context.Context) error {
	cfg := a.cfg
	switch cfg.Backend.Driver {
	case "oxidb":
		subs := repository.NewSubmissionRepo(a.pool)
		lawyers := repository.NewLawyerRepo(a.pool)
		a.submissions, a.lawyers = subs, lawyers
		a.setup = append(a.setup,
			setupStep{"lawyer indexes", lawyers.EnsureIndexes},
			setupStep{"submission indexes", subs.EnsureIndexes},
		)
	default:
		sqlDB, err := sqlstore.Open(ctx, sqlstore.Dialect(cfg.Backend.Driver), cfg.Backend.DatabaseURL)
		if err != nil {
			return errs.Persistence("open "+cfg.Backend.Driver+" database", err)
		}
		a.sql = sqlDB
		a.closers = append(a.closers, sqlDB.Close)
		if _, err := sqlstore.NewMigrationRunner(sqlDB).Run(ctx); err != nil {
			return err
		}
		a.submissions = sqlstore.NewSubmissions(sqlDB)
		a.lawyers = sqlstore.NewLawyers(sqlDB)
		log.Printf("Using %s backend", cfg.Backend.Driver)
	}
	return nil
}

func (a *App) buildObjects(ctx context.Context) error {
	s := a.cfg.Storage
	switch s.Driver {
	case "s3":
		st, err := objstore.NewS3Store(ctx, objstore.S3Config{
			Bucket:        s.Bucket,
			Endpoint:      s.Endpoint,
			Region:        s.Region,
			AccessKey:     s.AccessKey,
			SecretKey:     s.SecretKey,
			PublicBaseURL: s.PublicBaseURL,
			PathStyle:     s.PathStyle,
		})
		if err != nil {
			return errs.Config(err.Error(), "check the "+config.EnvName("storage")+"_* settings")
		}
		a.objects = st
		log.Printf("Storing documents in bucket %s", s.Bucket)
	default:
		blobs := repository.NewBlobStore(a.pool, s.Bucket, a.cfg.Server.PublicURL)
		a.objects = blobs
		a.setup = append(a.setup, setupStep{"blob bucket", blobs.EnsureBucket})
	}
	return nil
}

func (a *App) buildEvents() {
	ev := a.cfg.Events
	if len(ev.Brokers) == 0 {
		a.events = events.LogPublisher{}
		return
	}
	p := events.NewKafkaPublisher(ev.Brokers, ev.Topic)
	a.events = p
	a.closers = append(a.closers, p.Close)
	log.Printf("Publishing events to %s on %v", ev.Topic, ev.Brokers)
}

// authenticator tries the configured superadmin first, then lawyer
// accounts.
func (a *App) authenticator() auth.Authenticator {
	ac := a.cfg.Auth
	if ac.SuperadminPassword == "" {
		log.Printf("Warning: superadmin login disabled; set %s", config.EnvName("auth.superadmin_password"))
	}
	if ac.JWTSecret == config.DevJWTSecret {
		log.Printf("Warning: using the development JWT secret; set %s", config.EnvName("auth.jwt_secret"))
	}
	return auth.Chain{
		auth.StaticAuthenticator{User: ac.SuperadminUser, Password: ac.SuperadminPassword},
		auth.TableAuthenticator{Lawyers: a.lawyers},
	}
}

// Setup runs the backend preparation steps. Failures are logged and the
// remaining steps still run; the first error is returned.
func (a *App) Setup(ctx context.Context) error {
	var first error
	for _, step := range a.setup {
		log.Printf("Background init: %s...", step.name)
		start := time.Now()
		if err := step.run(ctx); err != nil {
			log.Printf("Warning: %s failed: %v", step.name, err)
			if first == nil {
				first = err
			}
			continue
		}
		log.Printf("Background init: %s ready (%s)", step.name, time.Since(start).Round(time.Millisecond))
	}
	return first
}

func (a *App) Router() *chi.Mux {
	return router.New(a.cfg.Auth.JWTSecret, a.lawyers,
		handler.NewAuthHandler(a.Auth, a.Lawyers),
		handler.NewIntakeHandler(a.Intake, a.cfg.Intake.MaxUploadMB),
		handler.NewSubmissionHandler(a.Submissions),
		handler.NewLawyerHandler(a.Lawyers),
		handler.NewDashboardHandler(a.Submissions),
	)
}

// Close releases backends in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("Warning: close: %v", err)
		}
	}
	a.closers = nil
}
