package main

import (
	"context"
	"crypto/rsa"
	"encoding/pem"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"

	"github.com/relaycore/securemsg/config"
	"github.com/relaycore/securemsg/internal/clockwork"
	"github.com/relaycore/securemsg/internal/directory"
	"github.com/relaycore/securemsg/internal/handler"
	"github.com/relaycore/securemsg/internal/janitor"
	"github.com/relaycore/securemsg/internal/ledger"
	"github.com/relaycore/securemsg/internal/middleware"
	"github.com/relaycore/securemsg/internal/replay"
	"github.com/relaycore/securemsg/internal/routes"
	"github.com/relaycore/securemsg/internal/validator"
)

func init() {
	binding.EnableDecoderDisallowUnknownFields = true
}

func main() {
	cfg := config.MustLoad()

	pub, err := loadJWTPublicKey(cfg.JWT.PublicKeyPath)
	if err != nil {
		logrus.Fatalf("failed to load jwt public key: %v", err)
	}

	store, err := ledger.NewPostgres(cfg.Postgres.DSN)
	if err != nil {
		logrus.Fatalf("failed to open ledger store: %v", err)
	}
	store.DB().SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
	store.DB().SetConnMaxLifetime(cfg.Postgres.ConnMaxLifetime)
	if err := ledger.Migrate(context.Background(), store.DB()); err != nil {
		logrus.Fatalf("failed to run ledger migrations: %v", err)
	}

	baseDir, err := directory.NewPostgresDirectory(cfg.Postgres.DSN)
	if err != nil {
		logrus.Fatalf("failed to open directory: %v", err)
	}
	dir := directory.NewCached(baseDir, 5*time.Minute)

	clock := clockwork.System{}

	v := validator.New(dir, store, clock)
	v.FreshnessWindow = cfg.Session.FreshnessWindow
	v.SessionTTL = cfg.Session.TTL
	v.Nonces = replay.NewNonceCache(cfg.Redis.ServerAddr, cfg.Redis.NonceTTL)

	h := handler.New(v, store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	j := janitor.New(store, cfg.Session.JanitorInterval)
	go j.Run(ctx)

	r := gin.Default()
	r.Use(cors.Default())

	routes.Register(r, cfg, h, middleware.BearerAuth(pub))

	go func() {
		logrus.Infof("starting relay on %s", cfg.HTTPServ.ServerAddr)
		if err := r.Run(cfg.HTTPServ.ServerAddr); err != nil {
			logrus.Fatalf("relay server stopped: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logrus.Info("shutting down")
	cancel()
}

func loadJWTPublicKey(path string) (*rsa.PublicKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(raw)
	if block == nil {
		return jwt.ParseRSAPublicKeyFromPEM(raw)
	}
	return jwt.ParseRSAPublicKeyFromPEM(raw)
}
