package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	openai "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"iqai-quiz-service/internal/app"
	"iqai-quiz-service/internal/config"
	"iqai-quiz-service/internal/domain"
	"iqai-quiz-service/internal/infra/memory"
	pgloader "iqai-quiz-service/internal/infra/postgres"
	redisinfra "iqai-quiz-service/internal/infra/redis"
	"iqai-quiz-service/internal/infra/sqlite"
	"iqai-quiz-service/internal/quiz"
	"iqai-quiz-service/internal/scan"
	transport "iqai-quiz-service/internal/transport/http"
	"iqai-quiz-service/internal/trap"
)

// NewServeCmd builds the CLI subcommand to start the server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the quiz service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	bankRepo, cleanup, err := buildBankRepository(ctx, cfg, redisClient)
	if err != nil {
		return err
	}
	defer cleanup()

	var openaiClient *openai.Client
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		openaiClient = openai.NewClient(key)
	} else {
		log.Printf("OPENAI_API_KEY not set: traps come from the fallback pool, scanner disabled")
	}

	synthOpts := []trap.SynthesizerOption{
		trap.WithRetryPolicy(cfg.Trap.MaxAttempts, config.TTLDuration(cfg.Trap.AttemptTimeout, trap.DefaultAttemptTimeout)),
		trap.WithDegradedPadding(cfg.Trap.PadOptions),
	}
	var generator trap.Generator
	if openaiClient != nil {
		generator = trap.NewOpenAIGenerator(openaiClient, cfg.OpenAI.Model, cfg.Trap.Prompt)
	}
	synthesizer := trap.NewSynthesizer(generator, synthOpts...)

	service := app.NewQuizService(bankRepo, synthesizer, app.Options{
		TrapCount:      cfg.Quiz.TrapCount,
		MaxPerCategory: cfg.Quiz.MaxPerCategory,
		Placement:      quiz.Placement(cfg.Quiz.Placement),
		FixedSlots:     cfg.Quiz.FixedSlots,
		ThemeHints:     cfg.Quiz.ThemeHints,
	})

	var scores transport.ScoreStore
	var results transport.ResultStore
	if redisClient != nil {
		scores = redisinfra.NewLeaderboard(redisClient, cfg.Redis.LeaderboardKey)
		results = redisinfra.NewResultStore(redisClient, cfg.Redis.ResultsKey)
	} else {
		scores = memory.NewLeaderboard()
		results = memory.NewResultStore()
	}

	var scanner transport.ContentScanner
	if openaiClient != nil {
		scanner = scan.NewScanner(
			scan.NewOpenAIChat(openaiClient, cfg.Scan.Model),
			scan.NewLanguageToolClient(cfg.Scan.LanguageToolURL),
			cfg.Scan.Prompt,
			cfg.Scan.Language,
		)
	}

	handler := transport.NewHandler(service, scores, results, scanner, transport.NewFeed())
	mux := http.NewServeMux()
	handler.Register(mux)

	return serve(ctx, finalPort, mux)
}

// buildBankRepository picks the bank source by configuration priority:
// postgres, then sqlite, then a JSON file, then the built-in demo bank.
func buildBankRepository(ctx context.Context, cfg config.Config, redisClient *redis.Client) (app.BankRepository, func(), error) {
	bankTTL := config.TTLDuration(cfg.Bank.TTL, 10*time.Minute)
	cleanup := func() {}

	var loader memory.BankLoader
	switch {
	case cfg.Postgres.URL != "":
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = pool.Close
		loader = pgloader.NewBankLoader(pool, cfg.Bank.ID)
	case cfg.Sqlite.Path != "":
		db, err := sqlite.Open(cfg.Sqlite.Path)
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = func() { _ = db.Close() }
		loader = db
	case cfg.Bank.Path != "":
		loader = memory.NewFileBankLoader(cfg.Bank.Path)
	default:
		log.Printf("no bank source configured, serving the built-in demo bank")
		loader = memory.NewStaticBankLoader(defaultBank())
	}

	if redisClient != nil {
		return redisinfra.NewBankRepository(redisClient, loader, bankTTL), cleanup, nil
	}
	return memory.NewBankRepository(loader, bankTTL), cleanup, nil
}

func serve(ctx context.Context, port string, mux *http.ServeMux) error {
	server := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
		// Trap synthesis may retry the generator a few times; leave room
		// before the write deadline cuts the response off.
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("starting quiz service on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// defaultBank ships a small vetted bank so the service runs without any
// backing store; production deployments point Bank.Path or a database at the
// real one.
func defaultBank() []domain.Question {
	return []domain.Question{
		{ID: "1", Text: "Quelle est la capitale de l'Italie ?", Options: []string{"Milan", "Rome", "Naples", "Turin"}, Answer: "Rome", Explanation: "Rome est la capitale de l'Italie depuis 1871.", Category: "géographie", Kind: domain.KindSafe},
		{ID: "2", Text: "Quel fleuve traverse Paris ?", Options: []string{"La Loire", "Le Rhône", "La Seine", "La Garonne"}, Answer: "La Seine", Explanation: "La Seine traverse Paris sur environ 13 kilomètres.", Category: "géographie", Kind: domain.KindSafe},
		{ID: "3", Text: "Qui a peint La Joconde ?", Options: []string{"Michel-Ange", "Raphaël", "Léonard de Vinci", "Botticelli"}, Answer: "Léonard de Vinci", Explanation: "Léonard de Vinci a peint La Joconde au début du XVIe siècle.", Category: "culture", Kind: domain.KindSafe},
		{ID: "4", Text: "Quel écrivain a signé Les Misérables ?", Options: []string{"Émile Zola", "Victor Hugo", "Gustave Flaubert", "Honoré de Balzac"}, Answer: "Victor Hugo", Explanation: "Victor Hugo publie Les Misérables en 1862.", Category: "culture", Kind: domain.KindSafe},
		{ID: "5", Text: "Quelle planète est la plus proche du Soleil ?", Options: []string{"Vénus", "Mars", "Mercure", "Jupiter"}, Answer: "Mercure", Explanation: "Mercure orbite à environ 58 millions de kilomètres du Soleil.", Category: "sciences", Kind: domain.KindSafe},
		{ID: "6", Text: "Quel est le symbole chimique de l'or ?", Options: []string{"Or", "Au", "Ag", "Go"}, Answer: "Au", Explanation: "Au vient du latin aurum.", Category: "sciences", Kind: domain.KindSafe},
		{ID: "7", Text: "En quelle année s'est terminée la Première Guerre mondiale ?", Options: []string{"1916", "1917", "1918", "1919"}, Answer: "1918", Explanation: "L'armistice est signé le 11 novembre 1918.", Category: "histoire", Kind: domain.KindSafe},
		{ID: "8", Text: "Qui était le premier président de la Ve République française ?", Options: []string{"Georges Pompidou", "Charles de Gaulle", "René Coty", "François Mitterrand"}, Answer: "Charles de Gaulle", Explanation: "Charles de Gaulle est élu en 1958.", Category: "histoire", Kind: domain.KindSafe},
		{ID: "9", Text: "Combien de joueurs compte une équipe de football sur le terrain ?", Options: []string{"9", "10", "11", "12"}, Answer: "11", Explanation: "Une équipe aligne onze joueurs, gardien compris.", Category: "sport", Kind: domain.KindSafe},
		{ID: "10", Text: "Dans quel sport parle-t-on de grand chelem ?", Options: []string{"Le golf", "Le tennis", "Le rugby", "L'athlétisme"}, Answer: "Le tennis", Explanation: "Le grand chelem désigne la victoire dans les quatre tournois majeurs du tennis.", Category: "sport", Kind: domain.KindSafe},
		{ID: "11", Text: "Quel fromage est traditionnellement affiné dans les caves de Roquefort ?", Options: []string{"Le camembert", "Le roquefort", "Le comté", "Le brie"}, Answer: "Le roquefort", Explanation: "Le roquefort est affiné dans les caves naturelles du village de Roquefort-sur-Soulzon.", Category: "gastronomie", Kind: domain.KindSafe},
		{ID: "12", Text: "De quelle région est originaire la quiche lorraine ?", Options: []string{"L'Alsace", "La Lorraine", "La Bourgogne", "La Bretagne"}, Answer: "La Lorraine", Explanation: "La quiche lorraine tire son nom de sa région d'origine.", Category: "gastronomie", Kind: domain.KindSafe},
	}
}
