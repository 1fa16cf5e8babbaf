// cmd/container.go
//
// Root composition root. Owns infrastructure (DB, Redis, FS, mail provider)
// and wires the bounded contexts. This is the only place that knows about
// ALL modules.
package main

import (
	"context"

	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/applicant/applicanthttp"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/applicant/applicantinfra"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/applicant/applicantsrv"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/bulkmail"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/bulkmail/bulkmailhttp"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/bulkmail/bulkmailinfra"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/bulkmail/bulkmailsrv"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/config"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/fsx"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/fsx/fsxlocal"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/fsx/fsxs3"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/logx"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/notifx"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/notifx/notifxconsole"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/notifx/notifxses"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/verification/verificationinfra"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/verification/verificationsrv"
)

// Container holds shared infrastructure and the composed modules.
type Container struct {
	Config *config.Config

	// Infrastructure (shared across all modules)
	DB         *sqlx.DB
	Redis      *redis.Client
	FileSystem fsx.FileSystem
	Mailer     *notifx.Client

	// Applicant registration
	ApplicantService *applicantsrv.Service
	ApplicantHandler *applicanthttp.Handler

	// Bulk mailing pipeline
	Tracker         *bulkmail.Tracker
	Broadcaster     *bulkmail.Broadcaster
	BulkMailService *bulkmailsrv.Service
	BulkMailHandler *bulkmailhttp.Handler
}

func NewContainer(cfg *config.Config) *Container {
	logx.Info("🔧 Initializing application container...")

	c := &Container{Config: cfg}

	c.initInfrastructure()
	c.initModules()

	logx.Info("✅ Application container initialized")
	return c
}

// ---------------------------------------------------------------------------
// Infrastructure — DB, Redis, file storage, mail provider
// ---------------------------------------------------------------------------

func (c *Container) initInfrastructure() {
	logx.Info("🏗️ Initializing infrastructure...")

	// 1. Database
	db, err := sqlx.Connect("postgres", c.Config.Database.DSN())
	if err != nil {
		logx.Fatalf("Failed to connect to database: %v", err)
	}
	db.SetMaxOpenConns(c.Config.Database.MaxOpenConns)
	db.SetMaxIdleConns(c.Config.Database.MaxIdleConns)
	db.SetConnMaxLifetime(c.Config.Database.ConnMaxLifetime)
	c.DB = db
	logx.Info("  ✅ Database connected")

	// 2. Redis
	c.Redis = redis.NewClient(&redis.Options{
		Addr:     c.Config.Redis.Address(),
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	})
	if _, err := c.Redis.Ping(context.Background()).Result(); err != nil {
		logx.Fatalf("Failed to connect to Redis: %v (Redis is required)", err)
	}
	logx.Info("  ✅ Redis connected")

	// 3. File storage
	c.initFileStorage()

	// 4. Mail provider
	c.initMailer()

	logx.Info("✅ Infrastructure initialized")
}

func (c *Container) initFileStorage() {
	switch c.Config.Storage.Mode {
	case "s3":
		awsCfg, err := awsConfig.LoadDefaultConfig(context.TODO(),
			awsConfig.WithRegion(c.Config.Storage.S3Region))
		if err != nil {
			logx.Fatalf("Unable to load AWS SDK config: %v", err)
		}
		client := s3.NewFromConfig(awsCfg)
		c.FileSystem = fsxs3.NewS3FileSystem(client, c.Config.Storage.S3Bucket, c.Config.Storage.S3Prefix)
		logx.Infof("  ✅ S3 file system configured (bucket: %s, region: %s)",
			c.Config.Storage.S3Bucket, c.Config.Storage.S3Region)

	case "local":
		localFS, err := fsxlocal.NewLocalFileSystem(c.Config.Storage.LocalDir)
		if err != nil {
			logx.Fatalf("Failed to initialize local file system: %v", err)
		}
		c.FileSystem = localFS
		logx.Infof("  ✅ Local file system configured (path: %s)", localFS.GetBasePath())

	default:
		logx.Fatalf("Unknown STORAGE_MODE: %s (use 'local' or 's3')", c.Config.Storage.Mode)
	}
}

func (c *Container) initMailer() {
	var provider notifx.EmailSender

	switch c.Config.Notifx.Provider {
	case "ses":
		awsCfg, err := awsConfig.LoadDefaultConfig(context.TODO(),
			awsConfig.WithRegion(c.Config.Notifx.AWSRegion))
		if err != nil {
			logx.Fatalf("Unable to load AWS SDK config for SES: %v", err)
		}
		provider = notifxses.NewSESProvider(ses.NewFromConfig(awsCfg), c.Config.Notifx.FromAddress)
		logx.Infof("  ✅ SES mail provider configured (region: %s)", c.Config.Notifx.AWSRegion)

	case "console":
		provider = notifxconsole.NewConsoleProvider()
		logx.Info("  ✅ Console mail provider configured (emails are logged, not sent)")

	default:
		logx.Fatalf("Unknown NOTIFX_PROVIDER: %s (use 'console' or 'ses')", c.Config.Notifx.Provider)
	}

	c.Mailer = notifx.NewClient(provider)

	if err := c.Mailer.RegisterTemplate(verificationinfra.CodeTemplate, verificationinfra.DefaultCodeHTML); err != nil {
		logx.Fatalf("Failed to register verification email template: %v", err)
	}
	if err := c.Mailer.RegisterTemplate(bulkmail.NotificationTemplate, bulkmail.DefaultNotificationHTML); err != nil {
		logx.Fatalf("Failed to register notification email template: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Module composition — each bounded context wires itself
// ---------------------------------------------------------------------------

func (c *Container) initModules() {
	logx.Info("📦 Initializing modules...")

	// Verification codes: Redis-backed store, codes delivered via notifx.
	codeStore := verificationinfra.NewRedisStore(c.Redis)
	codeSender := verificationinfra.NewNotifxCodeSender(c.Mailer)
	verificationService := verificationsrv.NewService(codeStore, codeSender, verificationsrv.DefaultOptions())

	// Applicant registration
	applicantRepo := applicantinfra.NewPostgresRepository(c.DB)
	c.ApplicantService = applicantsrv.NewService(applicantRepo, verificationService)
	c.ApplicantHandler = applicanthttp.NewHandler(c.ApplicantService)
	logx.Info("  ✅ Applicant module wired")

	// Bulk mailing pipeline
	outcomeRepo := bulkmailinfra.NewPostgresOutcomeRepository(c.DB)

	c.Tracker = bulkmail.NewTracker()

	broadcasterOpts := []bulkmail.BroadcasterOption{
		bulkmail.WithSubscriberBuffer(c.Config.BulkMail.SubscriberBuffer),
	}
	if c.Config.BulkMail.PruneSubscribers {
		broadcasterOpts = append(broadcasterOpts, bulkmail.WithAutoPrune())
	}
	c.Broadcaster = bulkmail.NewBroadcaster(broadcasterOpts...)

	gate := bulkmail.NewFixedIntervalGate(c.Config.BulkMail.SendDelay)
	policy := bulkmail.RetryPolicy{MaxAttempts: c.Config.BulkMail.MaxAttempts}
	dispatcher := bulkmail.NewDispatcher(c.Mailer, outcomeRepo, gate, policy, "")

	var orchestratorOpts []bulkmail.OrchestratorOption
	if c.Config.BulkMail.BatchLock {
		lock := bulkmailinfra.NewRedisBatchLock(c.Redis, c.Config.BulkMail.BatchLockTTL)
		orchestratorOpts = append(orchestratorOpts, bulkmail.WithBatchLock(lock))
		logx.Info("  ✅ Batch lock enabled")
	}
	orchestrator := bulkmail.NewOrchestrator(dispatcher, c.Tracker, c.Broadcaster, orchestratorOpts...)

	c.BulkMailService = bulkmailsrv.NewService(orchestrator, outcomeRepo, c.FileSystem)
	c.BulkMailHandler = bulkmailhttp.NewHandler(c.BulkMailService, c.Tracker, c.Broadcaster)
	logx.Info("  ✅ Bulk mailing module wired")
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

func (c *Container) Cleanup() {
	logx.Info("🧹 Cleaning up resources...")

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logx.Errorf("Error closing database: %v", err)
		} else {
			logx.Info("  ✅ Database connection closed")
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logx.Errorf("Error closing Redis: %v", err)
		} else {
			logx.Info("  ✅ Redis connection closed")
		}
	}

	logx.Info("✅ Cleanup complete")
}
