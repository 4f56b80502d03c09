package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"filemart.db"`

	Auth    Auth    `envPrefix:"AUTH_"`
	Webpay  Webpay  `envPrefix:"WEBPAY_"`
	Storage Storage `envPrefix:"STORAGE_"`
	Rates   Rates   `envPrefix:"RATES_"`
}

type Auth struct {
	// One signing secret per token kind, loaded once at startup.
	// Rotation is a redeploy: changing a secret invalidates every
	// outstanding token of that kind.
	AdminSecret string `env:"ADMIN_SECRET,notEmpty"`
	UserSecret  string `env:"USER_SECRET,notEmpty"`
}

type Webpay struct {
	BaseApiURL   string `env:"BASE_API_URL"`
	CommerceCode string `env:"COMMERCE_CODE"`
	APIKey       string `env:"API_KEY"`
}

type Storage struct {
	RootDir      string `env:"ROOT_DIR" envDefault:"./data/files"`
	HandleSecret string `env:"HANDLE_SECRET,notEmpty"`
	HandleTTLMin int    `env:"HANDLE_TTL_MIN" envDefault:"10"`
}

type Rates struct {
	QuoteURL string `env:"QUOTE_URL"`
	TTLMin   int    `env:"TTL_MIN" envDefault:"60"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

func (e Environment) IsDevelopment() bool {
	return e.Name == "development"
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
