package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/core-coin/stips/internal/blockchain"
	"github.com/core-coin/stips/internal/config"
	"github.com/core-coin/stips/internal/http_api"
	"github.com/core-coin/stips/internal/jar"
	"github.com/core-coin/stips/internal/models"
	"github.com/core-coin/stips/internal/notificator"
	"github.com/core-coin/stips/internal/repository"
	"github.com/core-coin/stips/internal/wellknown"
	"github.com/core-coin/stips/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "stips",
		Usage: "Stips is a tip-jar registry and payment-settlement service",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "postgres-user", Aliases: []string{"u"}, Usage: "Postgres user"},
			&cli.StringFlag{Name: "postgres-password", Aliases: []string{"p"}, Usage: "Postgres password"},
			&cli.StringFlag{Name: "postgres-host", Aliases: []string{"t"}, Usage: "Postgres host"},
			&cli.IntFlag{Name: "postgres-port", Aliases: []string{"P"}, Usage: "Postgres port"},
			&cli.StringFlag{Name: "postgres-db", Aliases: []string{"d"}, Usage: "Postgres database name"},
			&cli.IntFlag{Name: "api-port", Aliases: []string{"a"}, Usage: "API port"},
			&cli.StringFlag{Name: "blockchain-service-url", Aliases: []string{"b"}, Usage: "Blockchain service URL"},
			&cli.StringFlag{Name: "token-contract-address", Aliases: []string{"s"}, Usage: "Payout token contract address"},
			&cli.Uint64Flag{Name: "fee-rate-bp", Aliases: []string{"f"}, Usage: "Platform fee rate in basis points"},
			&cli.Uint64Flag{Name: "min-tip", Aliases: []string{"m"}, Usage: "Minimum tip amount in smallest units"},
			&cli.BoolFlag{Name: "memory-store", Aliases: []string{"M"}, Usage: "Use the in-memory store instead of Postgres"},
			&cli.BoolFlag{Name: "development", Aliases: []string{"D"}, Usage: "Development mode"},
		},
		Action: func(c *cli.Context) error {
			return run(c)
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	// Load configuration from environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	// Override with flags if set
	if c.IsSet("postgres-user") {
		cfg.PostgresUser = c.String("postgres-user")
	}
	if c.IsSet("postgres-password") {
		cfg.PostgresPassword = c.String("postgres-password")
	}
	if c.IsSet("postgres-host") {
		cfg.PostgresHost = c.String("postgres-host")
	}
	if c.IsSet("postgres-port") {
		cfg.PostgresPort = c.Int("postgres-port")
	}
	if c.IsSet("postgres-db") {
		cfg.PostgresDB = c.String("postgres-db")
	}
	if c.IsSet("api-port") {
		cfg.APIPort = c.Int("api-port")
	}
	if c.IsSet("blockchain-service-url") {
		cfg.BlockchainServiceURL = c.String("blockchain-service-url")
	}
	if c.IsSet("token-contract-address") {
		cfg.TokenContractAddress = c.String("token-contract-address")
	}
	if c.IsSet("fee-rate-bp") {
		cfg.FeeRateBasisPoints = c.Uint64("fee-rate-bp")
	}
	if c.IsSet("min-tip") {
		cfg.MinTipAmount = c.Uint64("min-tip")
	}
	if c.IsSet("memory-store") {
		cfg.MemoryStore = c.Bool("memory-store")
	}
	if c.IsSet("development") {
		cfg.Development = c.Bool("development")
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Development)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %v", err)
	}

	// Initialize storage
	var repo models.Repository
	if cfg.MemoryStore {
		log.Warn("Using in-memory store, state will not survive restarts")
		repo = repository.NewMemoryRepository()
	} else {
		db, err := repository.NewPostgresDB(cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB, cfg.PostgresHost, cfg.PostgresPort, log)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %v", err)
		}
		repo = db
	}

	// Initialize blockchain delivery service
	gocore := blockchain.NewGocore(cfg.BlockchainServiceURL, log, cfg)
	if err := gocore.Run(); err != nil {
		return fmt.Errorf("failed to initialize blockchain service: %v", err)
	}
	if balance, err := gocore.OperatorBalance(); err != nil {
		log.Warn("Failed to read operator token balance ", "error ", err)
	} else {
		log.Info("Operator token balance ", "balance ", balance.String())
	}

	// Initialize notificator
	var telegramNotif *notificator.TelegramNotificator
	if cfg.TelegramBotToken != "" {
		telegramNotif, err = notificator.NewTelegramNotificator(log, cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			return fmt.Errorf("failed to initialize telegram notificator: %v", err)
		}
	}
	var emailNotif *notificator.EmailNotificator
	if cfg.SMTPHost != "" && cfg.OpsEmail != "" {
		emailNotif = notificator.NewEmailNotificator(log, cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPSender, cfg.OpsEmail)
	}
	events := notificator.NewNotificator(log, telegramNotif, emailNotif)

	// Initialize reserved-handle list
	var reserved models.ReservedList
	if cfg.ReservedHandlesURL != "" {
		reservedHandles := wellknown.NewReservedHandles(log, cfg.ReservedHandlesURL)
		reservedHandles.Start()
		defer reservedHandles.Stop()
		reserved = reservedHandles
	}

	// Create the engine
	engine, err := jar.NewJar(repo, gocore, events, reserved, log, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize engine: %v", err)
	}

	// Initialize API server
	apiServer := http_api.NewHTTPServer(engine, cfg.APIPort, cfg.AdminToken, log)
	go apiServer.Start()

	// Wait for termination
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	if err := apiServer.Shutdown(); err != nil {
		log.Error("Failed to shut down API server ", "error ", err)
	}
	return gocore.Close()
}
