package app

import (
	"github.com/DRadulovich/perazzi-site-sub003/internal/platform/envutil"
)

type Config struct {
	Port           string
	AllowedOrigins []string
}

func LoadConfig() Config {
	origins := []string{envutil.String("CORS_ALLOWED_ORIGIN", "http://localhost:3000")}
	return Config{
		Port:           envutil.String("PORT", "8080"),
		AllowedOrigins: origins,
	}
}
