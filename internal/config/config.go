package config

import (
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"

	"github.com/mhsenam/rentmio/internal/utils"
)

// Config holds all application configuration, including secrets and flags.
type Config struct {
	OrganizationName string
	AppName          string
	AppPort          string
	AppUrl           string
	DBUrl            string

	RSAPrivateKey *rsa.PrivateKey
	RSAPublicKey  *rsa.PublicKey

	TokenExpiry         time.Duration
	RefreshTokenExpiry  time.Duration
	PasswordResetExpiry time.Duration

	MemcacheAddrs []string
	RedisURL      string
	AMQPURL       string
	AMQPQueue     string
	MongoURL      string
	MongoDatabase string
	StorageDir    string

	SendGridAPIKey   string
	TwilioAccountSID string
	TwilioAuthToken  string
	GoogleClientID   string
	LDSDKKey         string

	// Static flags fetched once from LaunchDarkly
	LDFlag_CORSHighSecurity    bool
	LDFlag_SeedDbWithTestData  bool
	LDFlag_SendgridSandboxMode bool
	LDFlag_SendgridFromEmail   string
	LDFlag_TwilioFromPhone     string
	LDFlag_TextSearchBackend   string
}

const (
	OrganizationName           = utils.OrganizationName
	DefaultTokenExpiry         = 15 * time.Minute
	DefaultRefreshTokenExpiry  = 30 * 24 * time.Hour
	DefaultPasswordResetExpiry = time.Hour
	DefaultStorageDir          = "./data/blobs"
	DefaultMongoDatabase       = "rentmio"
	LDConnectionTimeout        = 5 * time.Second

	TextSearchBackendPostgres = "postgres"
	TextSearchBackendMongo    = "mongo"
)

// Global compile-time overrides.
var (
	AppName             = "rentmio"
	LDServerContextKey  = "rentmio-server"
	LDServerContextKind = "service"
)

// LoadConfig reads .env (if present) and the environment, then fetches the
// static LaunchDarkly flags. Any missing requirement is fatal.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		utils.Logger.Debug("No .env file found, using process environment")
	}

	utils.Logger.Info("Loading config for app: ", AppName)

	cfg, err := fromEnv(os.Getenv)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Invalid configuration")
	}

	flags, err := fetchFlags(cfg.LDSDKKey)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to fetch LaunchDarkly flags")
	}
	flags.apply(cfg)

	utils.Logger.Debugf("App can be accessed at: %s", cfg.AppUrl)
	return cfg
}

func fromEnv(getenv func(string) string) (*Config, error) {
	var missing []string
	required := func(name string) string {
		v := strings.TrimSpace(getenv(name))
		if v == "" {
			missing = append(missing, name)
		}
		return v
	}

	cfg := &Config{
		OrganizationName:    OrganizationName,
		AppName:             AppName,
		AppPort:             required("APP_PORT"),
		AppUrl:              strings.TrimRight(required("APP_URL_FROM_ANYWHERE"), "/"),
		DBUrl:               required("DB_URL"),
		TokenExpiry:         DefaultTokenExpiry,
		RefreshTokenExpiry:  DefaultRefreshTokenExpiry,
		PasswordResetExpiry: DefaultPasswordResetExpiry,
		RedisURL:            getenv("REDIS_URL"),
		AMQPURL:             getenv("AMQP_URL"),
		AMQPQueue:           getenv("AMQP_QUEUE"),
		MongoURL:            getenv("MONGO_URL"),
		MongoDatabase:       orDefault(getenv("MONGO_DATABASE"), DefaultMongoDatabase),
		StorageDir:          orDefault(getenv("STORAGE_DIR"), DefaultStorageDir),
		SendGridAPIKey:      getenv("SENDGRID_API_KEY"),
		TwilioAccountSID:    getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:     getenv("TWILIO_AUTH_TOKEN"),
		GoogleClientID:      getenv("GOOGLE_CLIENT_ID"),
		LDSDKKey:            getenv("LD_SDK_KEY"),
	}
	privB64 := required("RSA_PRIVATE_KEY_BASE64")
	pubB64 := required("RSA_PUBLIC_KEY_BASE64")

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}

	if addrs := getenv("MEMCACHE_ADDRS"); addrs != "" {
		for _, a := range strings.Split(addrs, ",") {
			if a = strings.TrimSpace(a); a != "" {
				cfg.MemcacheAddrs = append(cfg.MemcacheAddrs, a)
			}
		}
	}

	var err error
	if cfg.RSAPrivateKey, err = parsePrivateKey(privB64); err != nil {
		return nil, err
	}
	if cfg.RSAPublicKey, err = parsePublicKey(pubB64); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parsePrivateKey(b64 string) (*rsa.PrivateKey, error) {
	pemBytes, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("decode RSA_PRIVATE_KEY_BASE64: %w", err)
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(pemBytes)
	if err != nil {
		return nil, fmt.Errorf("parse RSA private key: %w", err)
	}
	return key, nil
}

func parsePublicKey(b64 string) (*rsa.PublicKey, error) {
	pemBytes, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("decode RSA_PUBLIC_KEY_BASE64: %w", err)
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM(pemBytes)
	if err != nil {
		return nil, fmt.Errorf("parse RSA public key: %w", err)
	}
	return key, nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

var errEmptyFlag = errors.New("flag is empty")
