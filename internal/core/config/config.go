package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
	CORSOrigins     []string `mapstructure:"corsOrigins"`
}
type AdminHTTP struct {
	Host string
	Port int
}

type App struct {
	Name  string
	Env   string
	HTTP  HTTP
	Admin AdminHTTP
}

type Log struct {
	Level  string
	JSON   bool
	Rotate Rotate
}

// Rotate 为空 Filename 时不写文件
type Rotate struct {
	Filename   string
	MaxSizeMB  int `mapstructure:"maxSizeMB"`
	MaxBackups int `mapstructure:"maxBackups"`
	MaxAgeDays int `mapstructure:"maxAgeDays"`
	Compress   bool
}

// Auth 会话与令牌校验。JWTSecret 与身份服务签发 access token 的密钥一致。
type Auth struct {
	JWTSecret            string `mapstructure:"jwtSecret"`
	Issuer               string
	SessionCookie        string `mapstructure:"sessionCookie"`
	SessionTTLMin        int    `mapstructure:"sessionTTLMin"`
	SecureCookie         bool   `mapstructure:"secureCookie"`
	VerifyBearerRemotely bool   `mapstructure:"verifyBearerRemotely"`
}

// Identity 托管身份服务（Auth Store）
type Identity struct {
	Driver     string // gotrue | memory
	URL        string
	AnonKey    string `mapstructure:"anonKey"`
	ServiceKey string `mapstructure:"serviceKey"`
	TimeoutSec int    `mapstructure:"timeoutSec"`
}

type Redis struct {
	Addr          string `mapstructure:"addr"`
	Password      string `mapstructure:"password"`
	DB            int    `mapstructure:"db"`
	CatalogTTLSec int    `mapstructure:"catalogTTLSec"`
}

type DB struct {
	Driver             string
	DSN                string
	ServiceDSN         string `mapstructure:"serviceDsn"` // 角色解析专用（提权只读）
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Store struct {
	CallTimeoutMs int `mapstructure:"callTimeoutMs"`
}

type Config struct {
	App      App
	Log      Log
	Auth     Auth
	Identity Identity
	DB       DB
	Redis    Redis `mapstructure:"redis"`
	Store    Store
}

func (s Store) CallTimeout() time.Duration {
	return time.Duration(s.CallTimeoutMs) * time.Millisecond
}

func (r Redis) CatalogTTL() time.Duration {
	return time.Duration(r.CatalogTTLSec) * time.Second
}

func (a Auth) SessionTTL() time.Duration {
	return time.Duration(a.SessionTTLMin) * time.Minute
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "salesdesk")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readTimeoutSec", 5)
	v.SetDefault("app.http.writeTimeoutSec", 10)
	v.SetDefault("app.http.idleTimeoutSec", 60)
	v.SetDefault("app.admin.host", "0.0.0.0")
	v.SetDefault("app.admin.port", 8081)
	v.SetDefault("log.level", "info")
	v.SetDefault("auth.issuer", "salesdesk")
	v.SetDefault("auth.sessionCookie", "sb-access-token")
	v.SetDefault("auth.sessionTTLMin", 60)
	v.SetDefault("identity.driver", "gotrue")
	v.SetDefault("identity.timeoutSec", 10)
	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.maxOpenConns", 20)
	v.SetDefault("db.maxIdleConns", 5)
	v.SetDefault("db.connMaxLifetimeMin", 30)
	v.SetDefault("db.logLevel", "warn")
	v.SetDefault("redis.catalogTTLSec", 300)
	v.SetDefault("store.callTimeoutMs", 5000)
}

func Load(path string) *Config {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("read config: %v", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		log.Fatalf("unmarshal config: %v", err)
	}
	if c.DB.ServiceDSN == "" {
		c.DB.ServiceDSN = c.DB.DSN
	}
	return &c
}
