package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	stdhttp "net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"

	"github.com/askaway/backend/internal/adapters/handler/http"
	"github.com/askaway/backend/internal/adapters/repository/entity"
	"github.com/askaway/backend/internal/adapters/store/postgres"
	"github.com/askaway/backend/internal/core/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found")
	}

	var (
		port          string
		jwtSecret     string
		postShards    int
		commentShards int
	)
	flag.StringVar(&port, "port", envOr("PORT", "8080"), "HTTP listen port")
	flag.StringVar(&jwtSecret, "jwt-secret", os.Getenv("JWT_SECRET"), "Access token signing secret")
	flag.IntVar(&postShards, "post-shards", envIntOr("POST_SHARD_COUNT", 20), "Counter shards per post")
	flag.IntVar(&commentShards, "comment-shards", envIntOr("COMMENT_SHARD_COUNT", 5), "Counter shards per comment")
	flag.Parse()

	if jwtSecret == "" {
		log.Warn("JWT_SECRET not set")
	}

	db, err := sql.Open("postgres", dbConnString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}

	store := postgres.NewStore(db)
	voteRepo := entity.NewVoteRepository(store)
	shardRepo := entity.NewShardRepository(store)
	accountRepo := entity.NewAccountRepository(store)
	votableRepo := entity.NewVotableRepository(store)

	shardService := services.NewShardService(shardRepo, services.ShardConfig{
		PostShardCount:    postShards,
		CommentShardCount: commentShards,
	})
	voteService := services.NewVoteService(store, shardService, voteRepo, shardRepo, accountRepo)
	votableService := services.NewVotableService(votableRepo, shardService)

	handler := http.NewHandler(
		http.NewVoteHandler(voteService),
		http.NewVotableHandler(votableService),
		http.NewAuthMiddleware(jwtSecret),
	)
	server := &stdhttp.Server{Addr: "0.0.0.0:" + port, Handler: handler}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Infof("Listening on :%s", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Info("Gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal(err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func dbConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		os.Getenv("POSTGRES_HOST"),
		os.Getenv("POSTGRES_PORT"),
		os.Getenv("POSTGRES_DB"),
	)
}
