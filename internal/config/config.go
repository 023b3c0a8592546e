package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	DSN            string
	JWTSecret      string
	BcryptCost     int
	AccessTokenTTL time.Duration
	CORSOrigins    string
}

func Load() Config {
	// coba load .env, kalau gak ada ya di-skip
	_ = godotenv.Load()

	cfg := Config{
		Port:        getEnv("PORT", "4000"),
		DSN:         strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:   strings.TrimSpace(os.Getenv("JWT_SECRET")),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:5173"),
	}

	// Fail-fast: tanpa secret tidak ada token yang bisa diverifikasi
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET tidak boleh kosong (set di .env)")
	}

	if cfg.DSN == "" {
		dsn, err := buildDSNFromParts()
		if err != nil {
			log.Fatalf("DATABASE_URL tidak tersedia dan gagal merangkai DSN dari DB_*: %v", err)
		}
		cfg.DSN = dsn
	}

	cfg.BcryptCost = 12
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.BcryptCost = n
		}
	}

	cfg.AccessTokenTTL = envDuration("ACCESS_TOKEN_TTL", "24h")

	return cfg
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func envDuration(key, def string) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		s = def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		d, _ = time.ParseDuration(def)
	}
	return d
}

func buildDSNFromParts() (string, error) {
	user := strings.TrimSpace(os.Getenv("DB_USER"))
	host := strings.TrimSpace(os.Getenv("DB_HOST"))
	port := strings.TrimSpace(os.Getenv("DB_PORT"))
	dbName := strings.TrimSpace(os.Getenv("DB_DATABASE"))
	if port == "" {
		port = "5432"
	}
	if user == "" || host == "" || dbName == "" {
		return "", fmt.Errorf("DB_USER/DB_HOST/DB_DATABASE wajib diisi")
	}
	u := &url.URL{
		Scheme:   "postgres",
		Host:     fmt.Sprintf("%s:%s", host, port),
		Path:     dbName,
		RawQuery: "sslmode=disable",
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		u.User = url.UserPassword(user, password)
	} else {
		u.User = url.User(user)
	}
	return u.String(), nil
}
