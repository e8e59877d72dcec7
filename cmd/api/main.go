package main

import (
	"context"
	"database/sql"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"soberhaven.org/internal/authz"
	"soberhaven.org/internal/httpapi"
	"soberhaven.org/internal/identity"
	"soberhaven.org/internal/obs"
	"soberhaven.org/internal/profile"
	"soberhaven.org/internal/tenant"
)

var version = "0.1.0"

func main() {
	obs.Init()

	// Postgres is optional at boot; /readyz reports it once configured.
	var db *sql.DB
	if dsn := os.Getenv("SOBERHAVEN_PG_DSN"); dsn != "" {
		var err error
		db, err = sql.Open("pgx", dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	// Redis backs the token revocation list. Without it, tokens simply
	// cannot be revoked before expiry.
	var identityOpts []identity.Option
	if addr := os.Getenv("SOBERHAVEN_REDIS_ADDR"); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		identityOpts = append(identityOpts, identity.WithRevocationList(identity.NewRedisRevocationList(rdb)))
	}
	issuer := identity.NewService(identityOpts...)
	validator, err := authz.NewValidator(issuer)
	if err != nil {
		log.Fatalf("authz: %v", err)
	}

	var (
		profiles *profile.Service
		tenants  *tenant.Service
	)
	if db != nil {
		profileStore, err := profile.NewPGStore(db)
		if err != nil {
			log.Fatalf("profile store: %v", err)
		}
		profiles, err = profile.NewService(profileStore)
		if err != nil {
			log.Fatalf("profile service: %v", err)
		}
		tenantStore, err := tenant.NewPGStore(db)
		if err != nil {
			log.Fatalf("tenant store: %v", err)
		}
		tenants, err = tenant.NewService(tenantStore, profiles)
		if err != nil {
			log.Fatalf("tenant service: %v", err)
		}
	}

	probe := httpapi.ReadyProbe{DB: db}
	api, err := httpapi.New(httpapi.Config{
		Version:   version,
		Ready:     probe,
		Issuer:    issuer,
		Validator: validator,
		Tenants:   tenants,
		Profiles:  profiles,
	})
	if err != nil {
		log.Fatalf("httpapi: %v", err)
	}

	httpAddr := os.Getenv("SOBERHAVEN_HTTP_ADDR")
	if httpAddr == "" {
		httpAddr = ":8080"
	}
	srv := &http.Server{
		Addr:              httpAddr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	grpcSrv := httpapi.NewGRPCServer(probe)
	grpcAddr := os.Getenv("SOBERHAVEN_GRPC_ADDR")
	if grpcAddr == "" {
		grpcAddr = ":9090"
	}

	log.Printf("Starting soberhaven-api %s on %s (grpc %s)", version, srv.Addr, grpcAddr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()
	go func() {
		lis, err := net.Listen("tcp", grpcAddr)
		if err != nil {
			log.Fatalf("grpc listen: %v", err)
		}
		if err := grpcSrv.Serve(lis); err != nil {
			log.Fatalf("grpc serve: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	grpcSrv.GracefulStop()
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}
