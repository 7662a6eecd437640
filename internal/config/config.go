package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr    string
	PostgresDSN string
	LogLevel    string

	// Normalizer
	CanonicalWidth  int
	CanonicalHeight int
	WorkDir         string

	// Storage publisher
	StorageBackend  string // "pinata" or "s3"
	PinataAPIKey    string
	PinataSecretKey string
	PinataBaseURL   string

	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3UseSSL    bool

	// Ledger
	BlockfrostBaseURL string
	BlockfrostAPIKey  string
	CardanoNetwork    string // "mainnet" or "preprod"
	SigningKeyFile    string
	SigningKeyBech32  string
	PolicyID          string
	AssetName         string
	PaymentLovelace   int64
	TxTTLSlots        int64

	// Index behavior
	AllowRecertify bool

	// Admission policy
	AdmissionPolicyPath string

	// Progress events
	NATSURL      string
	NATSSubject  string
	StatusMaxAge time.Duration

	// Rate limiting
	RateLimitRequests      int
	RateLimitWindowSeconds int
	RateLimitMaxKeys       int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:    addr,
		PostgresDSN: os.Getenv("POSTGRES_DSN"),
		LogLevel:    envDefault("LOG_LEVEL", "info"),

		CanonicalWidth:  envIntDefault("CANONICAL_WIDTH", 256),
		CanonicalHeight: envIntDefault("CANONICAL_HEIGHT", 256),
		WorkDir:         envDefault("WORK_DIR", os.TempDir()),

		StorageBackend:  envDefault("STORAGE_BACKEND", "pinata"),
		PinataAPIKey:    os.Getenv("PINATA_API_KEY"),
		PinataSecretKey: os.Getenv("PINATA_SECRET_API_KEY"),
		PinataBaseURL:   envDefault("PINATA_BASE_URL", "https://api.pinata.cloud"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    envDefault("S3_BUCKET", "certified-images"),
		S3UseSSL:    envBoolDefault("S3_USE_SSL", false),

		BlockfrostBaseURL: envDefault("BLOCKFROST_BASE_URL", "https://cardano-preprod.blockfrost.io/api/v0"),
		BlockfrostAPIKey:  os.Getenv("BLOCKFROST_API_KEY"),
		CardanoNetwork:    envDefault("CARDANO_NETWORK", "preprod"),
		SigningKeyFile:    envDefault("SIGNING_KEY_FILE", "./minting.skey"),
		SigningKeyBech32:  os.Getenv("SIGNING_KEY_BECH32"),
		PolicyID:          envDefault("NFT_POLICY_ID", "1d82a7b3c1a04a60f4be8edcb675bbf091f3de3ab4e6bfa5f8f574d3"),
		AssetName:         envDefault("NFT_ASSET_NAME", "ImageAuthNFT"),
		PaymentLovelace:   int64(envIntDefault("PAYMENT_LOVELACE", 2000000)),
		TxTTLSlots:        int64(envIntDefault("TX_TTL_SLOTS", 7200)),

		AllowRecertify: envBoolDefault("ALLOW_RECERTIFY", false),

		AdmissionPolicyPath: os.Getenv("ADMISSION_POLICY_PATH"),

		NATSURL:      os.Getenv("NATS_URL"),
		NATSSubject:  envDefault("NATS_SUBJECT", "certify.pipeline.stage"),
		StatusMaxAge: time.Duration(envIntDefault("STATUS_MAX_AGE_SECONDS", 3600)) * time.Second,

		RateLimitRequests:      envIntDefault("RATE_LIMIT_REQUESTS", 0),
		RateLimitWindowSeconds: envIntDefault("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitMaxKeys:       envIntDefault("RATE_LIMIT_MAX_KEYS", 10000),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envIntDefault("REDIS_DB", 0),
	}
}

func envDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func envBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "Yes":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "No":
		return false
	default:
		return def
	}
}
