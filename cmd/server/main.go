package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/clubhub-app/backend/internal/auth"
	"github.com/clubhub-app/backend/internal/blob"
	"github.com/clubhub-app/backend/internal/config"
	"github.com/clubhub-app/backend/internal/httpapi"
	"github.com/clubhub-app/backend/internal/mailer"
	"github.com/clubhub-app/backend/internal/otp"
	"github.com/clubhub-app/backend/internal/password"
	"github.com/clubhub-app/backend/internal/store"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	mongoClient, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("mongo connect failed", zap.Error(err))
	}
	defer mongoClient.Disconnect(context.Background())
	if err := mongoClient.Ping(connectCtx, nil); err != nil {
		log.Fatal("mongo ping failed", zap.Error(err))
	}
	db := mongoClient.Database(cfg.MongoDatabase)

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	defer rdb.Close()
	if err := rdb.Ping(connectCtx).Err(); err != nil {
		log.Fatal("redis ping failed", zap.Error(err))
	}

	users := store.NewUserStore(db)
	archive := store.NewArchiveStore(db)
	media := store.NewMediaStore(db)
	if err := users.EnsureIndexes(connectCtx); err != nil {
		log.Fatal("user indexes failed", zap.Error(err))
	}
	if err := archive.EnsureIndexes(connectCtx); err != nil {
		log.Fatal("archive indexes failed", zap.Error(err))
	}

	signupLedger := store.NewSignupLedger(rdb, "signup")
	grants := store.NewResetGrantStore(rdb, "rg")

	hasher, err := password.NewHasher(password.DefaultConfig())
	if err != nil {
		log.Fatal("password config invalid", zap.Error(err))
	}

	notifier := mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)

	signupIssuer := otp.NewIssuer(signupLedger, notifier, mailer.SignupOTPMessage, cfg.OTPTTL, log)
	resetIssuer := otp.NewIssuer(users, notifier, mailer.ResetOTPMessage, cfg.OTPTTL, log)

	svc := auth.NewService(auth.ServiceParams{
		Users:        users,
		SignupLedger: signupLedger,
		Grants:       grants,
		SignupOTP:    signupIssuer,
		ResetOTP:     resetIssuer,
		Hasher:       hasher,
		GrantTTL:     cfg.ResetGrantTTL,
		Log:          log,
	})
	archiver := auth.NewArchiver(users, archive, log)

	imgbb := blob.NewImgBBClient(cfg.ImgBBAPIKey)

	handler := httpapi.NewHandler(svc, archiver, imgbb, media, notifier, cfg.ContactInbox, log)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.Router(cfg.CORSAllowedOrigins, cfg.RequestTimeout),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", zap.Error(err))
	}
}
