package config

import (
	"fmt"
	"math/big"
	"os"
	"strconv"

	"github.com/core-coin/go-core/v2/common"
	"github.com/joho/godotenv"
)

type Config struct {
	Development bool
	// API configuration
	APIPort    int
	AdminToken string
	// Postgres configuration
	PostgresUser     string
	PostgresPassword string
	PostgresHost     string
	PostgresPort     int
	PostgresDB       string
	MemoryStore      bool
	// Engine configuration
	FeeRateBasisPoints   uint64
	MinTipAmount         uint64
	TimelockDelaySeconds int64
	Authority            string
	FeeRecipient         string
	// Blockchain configuration
	TokenContractAddress string
	BlockchainServiceURL string
	OperatorKey          string
	NetworkID            *big.Int

	// SMTP configuration
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPSender   string
	OpsEmail     string

	// Notification configuration
	TelegramBotToken string
	TelegramChatID   string

	// Reserved-handle configuration
	ReservedHandlesURL string
}

// LoadConfig loads the configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Development:          getEnvAsBool("DEVELOPMENT", false),
		APIPort:              getEnvAsInt("API_PORT", 6533),
		AdminToken:           getEnv("ADMIN_TOKEN", ""),
		PostgresUser:         getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword:     getEnv("POSTGRES_PASSWORD", "password"),
		PostgresHost:         getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:         getEnvAsInt("POSTGRES_PORT", 5432),
		PostgresDB:           getEnv("POSTGRES_DB", "stips"),
		MemoryStore:          getEnvAsBool("MEMORY_STORE", false),
		FeeRateBasisPoints:   getEnvAsUint64("FEE_RATE_BASIS_POINTS", 100), // 1%
		MinTipAmount:         getEnvAsUint64("MIN_TIP_AMOUNT", 1000),
		TimelockDelaySeconds: int64(getEnvAsInt("TIMELOCK_DELAY_SECONDS", 48*3600)),
		Authority:            getEnv("AUTHORITY_ADDRESS", ""),
		FeeRecipient:         getEnv("FEE_RECIPIENT_ADDRESS", ""),
		TokenContractAddress: getEnv("TOKEN_CONTRACT_ADDRESS", ""),
		BlockchainServiceURL: getEnv("BLOCKCHAIN_SERVICE_URL", "http://localhost:8545"),
		OperatorKey:          getEnv("OPERATOR_KEY", ""),
		NetworkID:            getEnvAsBigInt("NETWORK_ID", big.NewInt(1)), // Default to Mainnet ID
		SMTPHost:             getEnv("SMTP_HOST", ""),
		SMTPPort:             getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:             getEnv("SMTP_USER", ""),
		SMTPPassword:         getEnv("SMTP_PASSWORD", ""),
		SMTPSender:           getEnv("SMTP_SENDER", ""),
		OpsEmail:             getEnv("OPS_EMAIL", ""),
		TelegramBotToken:     getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:       getEnv("TELEGRAM_CHAT_ID", ""),
		ReservedHandlesURL:   getEnv("RESERVED_HANDLES_URL", ""),
	}

	// Set default network ID before validation (required for address validation)
	common.DefaultNetworkID = common.NetworkID(cfg.NetworkID.Int64())

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are properly set
func (c *Config) Validate() error {
	if c.FeeRateBasisPoints > 10000 {
		return fmt.Errorf("FEE_RATE_BASIS_POINTS must not exceed 10000, got %d", c.FeeRateBasisPoints)
	}

	if c.TimelockDelaySeconds <= 0 {
		return fmt.Errorf("TIMELOCK_DELAY_SECONDS must be positive")
	}

	if c.Authority == "" {
		return fmt.Errorf("AUTHORITY_ADDRESS is required")
	}
	if _, err := common.HexToAddress(c.Authority); err != nil {
		return fmt.Errorf("invalid AUTHORITY_ADDRESS format: %w", err)
	}

	if c.FeeRecipient == "" {
		return fmt.Errorf("FEE_RECIPIENT_ADDRESS is required")
	}
	if _, err := common.HexToAddress(c.FeeRecipient); err != nil {
		return fmt.Errorf("invalid FEE_RECIPIENT_ADDRESS format: %w", err)
	}

	if c.TokenContractAddress == "" {
		return fmt.Errorf("TOKEN_CONTRACT_ADDRESS is required")
	}
	if _, err := common.HexToAddress(c.TokenContractAddress); err != nil {
		return fmt.Errorf("invalid TOKEN_CONTRACT_ADDRESS format: %w", err)
	}

	if c.BlockchainServiceURL == "" {
		return fmt.Errorf("BLOCKCHAIN_SERVICE_URL is required")
	}

	if !c.MemoryStore {
		if c.PostgresDB == "" {
			return fmt.Errorf("POSTGRES_DB is required")
		}
		if c.PostgresHost == "" {
			return fmt.Errorf("POSTGRES_HOST is required")
		}
	}

	return nil
}

// Helper functions to read environment variables
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsUint64(name string, defaultValue uint64) uint64 {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.ParseUint(valueStr, 10, 64); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsBigInt(name string, defaultValue *big.Int) *big.Int {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, ok := new(big.Int).SetString(valueStr, 10); ok {
			return value
		}
	}
	return defaultValue
}
