package config

type App struct {
	Port            string `env:"APP_PORT" default:"8080"`
	DatabaseURL     string `env:"DATABASE_URL,required"`
	RedisAddr       string `env:"REDIS_ADDR"`
	JWTSecret       string `env:"JWT_SECRET,required"`
	StripeSecretKey string `env:"STRIPE_SECRET_KEY"`
	SMTPHost        string `env:"SMTP_HOST"`
	SMTPPort        int    `env:"SMTP_PORT" default:"587"`
	SMTPUser        string `env:"SMTP_USER"`
	SMTPPass        string `env:"SMTP_PASS"`
	FrontendURL     string `env:"FRONTEND_URL" default:"http://localhost:3000"`
	Env             string `env:"APP_ENV" default:"dev"`
}
