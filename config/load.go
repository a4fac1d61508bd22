package config

import (
	"log/slog"
	"os"
	"strconv"
)

func Load() App {
	cfg := App{
		Port:       getenv("APP_PORT", "8080"),
		MongoURI:   must("MONGODB_URI"),
		MongoDB:    getenv("MONGODB_DB", "biblioinfo"),
		JWTSecret:  getenv("JWT_SECRET", "local_dev_secret"),
		BcryptCost: getint("BCRYPT_COST", 10),
		Env:        getenv("APP_ENV", "dev"),
	}
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid int env, using default", "key", k, "val", v)
		return def
	}
	return n
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		slog.Error("required env missing", "key", k)
		panic("missing env " + k)
	}
	return v
}
