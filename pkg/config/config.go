package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	appvalidator "caseflow/pkg/validator"
)

type Config struct {
	Server       Server     `mapstructure:"server"`
	Postgres     Postgres   `mapstructure:"postgres"`
	Broker       Broker     `mapstructure:"broker"`
	Cron         Cron       `mapstructure:"cron"`
	Clients      Clients    `mapstructure:"clients"`
	HTTPClient   HTTPClient `mapstructure:"httpClient"`
	LoggingLevel string     `mapstructure:"logging-level"`
}

type Server struct {
	Port      string `mapstructure:"port" validate:"required"`
	BodyLimit int    `mapstructure:"body_limit"`
}

type Postgres struct {
	ConnString     string `mapstructure:"conn_string" validate:"required"`
	MaxConnections int32  `mapstructure:"max_connections"`
}

type Broker struct {
	Kafka Kafka `mapstructure:"kafka"`
}

type Kafka struct {
	Brokers string `mapstructure:"brokers" validate:"required"`
	Usr     string `mapstructure:"usr"`
	UsrPwd  string `mapstructure:"usrPwd"`

	// One topic per event kind; dispatch sweeps are partitioned the same way.
	CaseOutcomeTopic  string `mapstructure:"caseOutcomeTopic" validate:"required"`
	StatisticsTopic   string `mapstructure:"statisticsTopic" validate:"required"`
	NotificationTopic string `mapstructure:"notificationTopic" validate:"required"`

	MaxAttempts int `mapstructure:"maxAttempts"`
}

type Cron struct {
	// Sweep schedules in cron format or "@every ..." intervals.
	CompletionSchedule string `mapstructure:"completionSchedule"`
	DispatchSchedule   string `mapstructure:"dispatchSchedule"`
	CleanupSchedule    string `mapstructure:"cleanupSchedule"`

	// Lease for the distributed job locks. A crashed holder frees the job
	// after at most this long.
	LockLease time.Duration `mapstructure:"lockLease"`

	// DELIVERED outbox records older than this many days are removed by the
	// cleanup sweep. PENDING and FAILED records are never cleaned up.
	DaysToKeepDelivered int `mapstructure:"daysToKeepDelivered"`
}

type Clients struct {
	// ActorID is the system user reported to the legacy system on completion.
	ActorID     string `mapstructure:"actorId" validate:"required"`
	LegacyURL   string `mapstructure:"legacyUrl" validate:"required,url"`
	TrackingURL string `mapstructure:"trackingUrl" validate:"required,url"`
}

type HTTPClient struct {
	ConnectTimeout        time.Duration `mapstructure:"connectTimeout"`
	TLSHandshakeTimeout   time.Duration `mapstructure:"TLSHandshakeTimeout"`
	ResponseHeaderTimeout time.Duration `mapstructure:"responseHeaderTimeout"`
	ExpectContinueTimeout time.Duration `mapstructure:"expectContinueTimeout"`

	IdleConnTimeout     time.Duration `mapstructure:"idleConnTimeout"`
	MaxIdleConns        int           `mapstructure:"maxIdleConns"`
	MaxIdleConnsPerHost int           `mapstructure:"maxIdleConnsPerHost"`
	MaxConnsPerHost     int           `mapstructure:"maxConnsPerHost"`
	KeepAlives          bool          `mapstructure:"keepAlives"`

	// Overall client timeout. 0 means the caller controls it via context.
	ClientTimeout time.Duration `mapstructure:"clientTimeout"`

	UserAgent  string `mapstructure:"userAgent"`
	MaxRetries int    `mapstructure:"maxRetries"`

	InsecureSkipVerify bool `mapstructure:"insecureSkipVerify"`
}

func NewConfig() (Config, error) {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	var conf Config
	err := viper.ReadInConfig()
	// A missing .env is fine, env vars alone are enough.
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return conf, err
		}
	}

	if err = viper.Unmarshal(&conf); err != nil {
		return conf, err
	}

	conf.applyDefaults()

	if err = appvalidator.Validate.Struct(&conf); err != nil {
		return conf, err
	}

	return conf, nil
}

func (c *Config) applyDefaults() {
	if c.Cron.CompletionSchedule == "" {
		c.Cron.CompletionSchedule = "@every 1m"
	}
	if c.Cron.DispatchSchedule == "" {
		c.Cron.DispatchSchedule = "@every 30s"
	}
	if c.Cron.CleanupSchedule == "" {
		c.Cron.CleanupSchedule = "0 0 4 * * *"
	}
	if c.Cron.LockLease <= 0 {
		c.Cron.LockLease = 10 * time.Minute
	}
	if c.Cron.DaysToKeepDelivered <= 0 {
		c.Cron.DaysToKeepDelivered = 90
	}
	if c.Broker.Kafka.MaxAttempts <= 0 {
		c.Broker.Kafka.MaxAttempts = 3
	}
}
