package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"iqai-quiz-service/internal/app"
	"iqai-quiz-service/internal/domain"
	pgloader "iqai-quiz-service/internal/infra/postgres"
	pgmigrations "iqai-quiz-service/internal/infra/postgres/migrations"
	infraredis "iqai-quiz-service/internal/infra/redis"
	"iqai-quiz-service/internal/trap"
)

type staticGenerator struct{}

func (staticGenerator) Generate(_ context.Context, n int, _ []string) ([]byte, error) {
	items := make([]string, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, fmt.Sprintf(`{"q":"Piège numéro %d","options":["a","b","c","d"],"answer":"a","explanation":"La bonne réponse est b."}`, i))
	}
	return []byte(`{"questions":[` + strings.Join(items, ",") + `]}`), nil
}

func TestBuildQuizEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedBank(t, ctx, pgURL, sampleBank(20))

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	loader := pgloader.NewBankLoader(pool, "")
	bankRepo := infraredis.NewBankRepository(redisClient, loader, 5*time.Minute)
	synth := trap.NewSynthesizer(staticGenerator{})
	service := app.NewQuizService(bankRepo, synth, app.Options{
		TrapCount: 2,
		Seed:      func() int64 { return 42 },
	})

	items, err := service.BuildQuiz(ctx, domain.QuizRequest{})
	if err != nil {
		t.Fatalf("build quiz: %v", err)
	}
	if len(items) != domain.QuizSize {
		t.Fatalf("quiz length = %d, want %d", len(items), domain.QuizSize)
	}
	trapCount := 0
	for pos, q := range items {
		switch q.Kind {
		case domain.KindTrap:
			trapCount++
			if pos != 3 && pos != 7 {
				t.Fatalf("trap at unexpected slot %d", pos)
			}
		case domain.KindSafe:
		default:
			t.Fatalf("slot %d has no kind", pos)
		}
	}
	if trapCount != 2 {
		t.Fatalf("%d traps, want 2", trapCount)
	}

	// A second build hits the Redis cache rather than Postgres.
	if _, err := service.BuildQuiz(ctx, domain.QuizRequest{}); err != nil {
		t.Fatalf("second build: %v", err)
	}

	// Leaderboard and results ride the same Redis instance.
	lb := infraredis.NewLeaderboard(redisClient, "")
	if err := lb.AddScore(ctx, "alice", 80); err != nil {
		t.Fatalf("add score: %v", err)
	}
	top, err := lb.TopN(ctx, 3)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 1 || top[0].Pseudo != "alice" {
		t.Fatalf("unexpected leaderboard: %+v", top)
	}

	results := infraredis.NewResultStore(redisClient, "")
	if err := results.Save(ctx, domain.GameResult{ID: "r1", Name: "alice", Score: 8, Total: 10}); err != nil {
		t.Fatalf("save result: %v", err)
	}
	saved, err := results.List(ctx)
	if err != nil {
		t.Fatalf("list results: %v", err)
	}
	if len(saved) != 1 || saved[0].Name != "alice" {
		t.Fatalf("unexpected results: %+v", saved)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedBank(t *testing.T, ctx context.Context, dsn string, questions []domain.Question) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	data, err := json.Marshal(map[string]any{"questions": questions})
	if err != nil {
		t.Fatalf("marshal bank: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO question_banks (id, data) VALUES (?, ?::jsonb) ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`, pgloader.DefaultBankID, string(data)); err != nil {
		t.Fatalf("insert bank: %v", err)
	}
}

func sampleBank(n int) []domain.Question {
	questions := make([]domain.Question, n)
	for i := range questions {
		questions[i] = domain.Question{
			ID:       fmt.Sprintf("%d", i+1),
			Text:     fmt.Sprintf("Question de culture générale numéro %d", i+1),
			Options:  []string{"a", "b", "c", "d"},
			Answer:   "a",
			Category: fmt.Sprintf("cat-%d", i%6),
		}
	}
	return questions
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
