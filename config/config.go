package config

type AppConfig struct {
	APIPort     string `env:"PORT,required" envDefault:"12400"`
	APIKey      string `env:"API_KEY,required"`
	RabbitMQURL string `env:"RABBITMQ_URL"`
}

type LedgerDatabaseConfig struct {
	Host            string `env:"LEDGER_POSTGRES_HOST,required"`
	Port            string `env:"LEDGER_POSTGRES_PORT,required"`
	User            string `env:"LEDGER_POSTGRES_USER,required"`
	DBName          string `env:"LEDGER_POSTGRES_DB_NAME,required"`
	Password        string `env:"LEDGER_POSTGRES_PASSWORD,required"`
	MaxConn         int    `env:"LEDGER_POSTGRES_DB_MAX_CONN"`
	MaxIdleConn     int    `env:"LEDGER_POSTGRES_DB_MAX_IDLE_CONN"`
	ConnMaxLifetime int    `env:"LEDGER_POSTGRES_DB_CONN_MAX_LIFETIME"`
	LogLevel        string `env:"LEDGER_POSTGRES_LOG_LEVEL" envDefault:"WARN"`
	SSLMode         string `env:"LEDGER_POSTGRES_SSL_MODE"`
}

type GoogleOAuthConfig struct {
	ClientID     string `env:"GOOGLE_OAUTH_CLIENT_ID,required"`
	ClientSecret string `env:"GOOGLE_OAUTH_CLIENT_SECRET,required"`
	RedirectURL  string `env:"GOOGLE_OAUTH_REDIRECT_URL,required"`
}

type GeminiConfig struct {
	APIKey string `env:"GEMINI_API_KEY"`
	Model  string `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
}

type SyncConfig struct {
	// EpochDate bounds the first sync for a user with no cursor yet.
	EpochDate string `env:"SYNC_EPOCH_DATE" envDefault:"2024-01-01"`
	// DuplicateWindowHours is the symmetric duplicate-match window around a
	// candidate's occurred-at timestamp.
	DuplicateWindowHours int   `env:"SYNC_DUPLICATE_WINDOW_HOURS" envDefault:"24"`
	MaxResults           int64 `env:"SYNC_MAX_RESULTS" envDefault:"50"`
	RetryAttempts        int   `env:"SYNC_RETRY_ATTEMPTS" envDefault:"3"`
	RetryBackoffSeconds  int   `env:"SYNC_RETRY_BACKOFF_SECONDS" envDefault:"2"`
}
