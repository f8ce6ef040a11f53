package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config agrupa la configuración del proceso. Se carga una sola vez en main
// y se inyecta; los paquetes de dominio no leen env directamente.
type Config struct {
	Addr string

	// Postgres. Vacío => repos in-memory (modo dev).
	DatabaseDSN string

	// Secreto HS256 para emitir/verificar tokens. Vacío => modo dev
	// (sin verifier, headers X-Debug-*).
	JWTSecret string

	// SMTP para el notifier. Si SMTPHost está vacío y NotifyURL no,
	// se usa el relay HTTP.
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string

	// Function externa de correo (relay), estilo sendEmail.
	NotifyURL string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Load lee .env (best-effort, puede no existir) y luego el entorno.
func Load() Config {
	_ = godotenv.Load()

	addr := ":8080"
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		addr = ":" + v
	}

	return Config{
		Addr:         addr,
		DatabaseDSN:  strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:    strings.TrimSpace(os.Getenv("JWT_SECRET")),
		SMTPHost:     strings.TrimSpace(os.Getenv("SMTP_HOST")),
		SMTPPort:     envInt("SMTP_PORT", 587),
		SMTPUser:     strings.TrimSpace(os.Getenv("SMTP_USER")),
		SMTPPass:     os.Getenv("SMTP_PASS"),
		MailFrom:     strings.TrimSpace(os.Getenv("MAIL_FROM")),
		NotifyURL:    strings.TrimSpace(os.Getenv("NOTIFY_URL")),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
