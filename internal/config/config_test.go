package config

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyEnv(t *testing.T) map[string]string {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})

	return map[string]string{
		"APP_PORT":               "8080",
		"APP_URL_FROM_ANYWHERE":  "http://localhost:8080/",
		"DB_URL":                 "postgres://localhost/rentmio",
		"RSA_PRIVATE_KEY_BASE64": base64.StdEncoding.EncodeToString(privPEM),
		"RSA_PUBLIC_KEY_BASE64":  base64.StdEncoding.EncodeToString(pubPEM),
		"MEMCACHE_ADDRS":         "mc1:11211, mc2:11211,",
	}
}

func TestFromEnv(t *testing.T) {
	env := keyEnv(t)
	cfg, err := fromEnv(func(k string) string { return env[k] })
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.AppUrl)
	assert.Equal(t, []string{"mc1:11211", "mc2:11211"}, cfg.MemcacheAddrs)
	assert.Equal(t, DefaultStorageDir, cfg.StorageDir)
	assert.Equal(t, DefaultMongoDatabase, cfg.MongoDatabase)
	assert.Equal(t, DefaultTokenExpiry, cfg.TokenExpiry)
	require.NotNil(t, cfg.RSAPrivateKey)
	assert.True(t, cfg.RSAPrivateKey.PublicKey.Equal(cfg.RSAPublicKey))
}

func TestFromEnvReportsAllMissing(t *testing.T) {
	_, err := fromEnv(func(string) string { return "" })
	require.Error(t, err)
	for _, name := range []string{"APP_PORT", "DB_URL", "RSA_PRIVATE_KEY_BASE64", "RSA_PUBLIC_KEY_BASE64"} {
		assert.Contains(t, err.Error(), name)
	}
}

func TestFromEnvRejectsBadKey(t *testing.T) {
	env := keyEnv(t)
	env["RSA_PUBLIC_KEY_BASE64"] = base64.StdEncoding.EncodeToString([]byte("nope"))
	_, err := fromEnv(func(k string) string { return env[k] })
	assert.Error(t, err)
}

func TestOfflineFlagsUseDefaults(t *testing.T) {
	flags, err := fetchFlags("")
	require.NoError(t, err)
	assert.Equal(t, defaultFlags(), flags)
}
