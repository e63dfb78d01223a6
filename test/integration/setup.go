package integration

import (
	"context"
	"database/sql"
	"fmt"
	stdhttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/askaway/backend/internal/adapters/handler/http"
	"github.com/askaway/backend/internal/adapters/repository/entity"
	pgstore "github.com/askaway/backend/internal/adapters/store/postgres"
	"github.com/askaway/backend/internal/core/domain"
	"github.com/askaway/backend/internal/core/ports"
	"github.com/askaway/backend/internal/core/services"
)

const testJWTSecret = "test-secret"

type testApp struct {
	Container testcontainers.Container
	DB        *sql.DB
	Store     ports.Store
	Accounts  ports.AccountRepository
	Server    *httptest.Server
	Client    *stdhttp.Client
}

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}

	return pgContainer, connStr, nil
}

func applyMigrations(db *sql.DB) error {
	dirPath := "../../internal/adapters/store/postgres/migrations"

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), "up.sql") {
			continue
		}

		content, err := os.ReadFile(filepath.Join(dirPath, entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}

		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

// setupTestApp boots the full HTTP stack against a throwaway Postgres.
// Posts get 3 shards and comments 2 so shard distribution is observable
// without hundreds of votes.
func setupTestApp(t *testing.T) *testApp {
	t.Helper()
	ctx := context.Background()

	container, connStr, err := setupPostgresContainer(ctx)
	require.NoError(t, err)

	db, err := sql.Open("postgres", connStr)
	require.NoError(t, err)
	require.NoError(t, applyMigrations(db))

	store := pgstore.NewStore(db)
	voteRepo := entity.NewVoteRepository(store)
	shardRepo := entity.NewShardRepository(store)
	accountRepo := entity.NewAccountRepository(store)
	votableRepo := entity.NewVotableRepository(store)

	shardService := services.NewShardService(shardRepo, services.ShardConfig{
		PostShardCount:    3,
		CommentShardCount: 2,
	})
	voteService := services.NewVoteService(store, shardService, voteRepo, shardRepo, accountRepo)
	votableService := services.NewVotableService(votableRepo, shardService)

	handler := http.NewHandler(
		http.NewVoteHandler(voteService),
		http.NewVotableHandler(votableService),
		http.NewAuthMiddleware(testJWTSecret),
	)
	server := httptest.NewServer(handler)

	return &testApp{
		Container: container,
		DB:        db,
		Store:     store,
		Accounts:  accountRepo,
		Server:    server,
		Client:    server.Client(),
	}
}

func (a *testApp) Teardown(t *testing.T) {
	t.Helper()
	a.Server.Close()
	require.NoError(t, a.DB.Close())
	require.NoError(t, a.Container.Terminate(context.Background()))
}

// createVoter saves an account entity and returns a signed access token
// for it.
func createVoter(t *testing.T, app *testApp, userID string) string {
	t.Helper()

	err := app.Accounts.Save(context.Background(), &domain.Account{
		ID:        userID,
		Username:  userID,
		Email:     fmt.Sprintf("%s@example.com", userID),
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	claims := jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(15 * time.Minute).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}
