package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("ELASTICSEARCH_ADDRS", "")

	c := Load()
	if c.StoreBackend != StoreMemory || c.CacheBackend != CacheNone || c.Notifier != NotifierLog {
		t.Fatalf("backends = %s/%s/%s", c.StoreBackend, c.CacheBackend, c.Notifier)
	}
	if c.BcryptCost != 10 || c.JWTTTL != 24*time.Hour {
		t.Fatalf("cost=%d ttl=%v", c.BcryptCost, c.JWTTTL)
	}
	if len(c.ESAddrs()) != 0 {
		t.Fatalf("search should be disabled by default: %v", c.ESAddrs())
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadOverridesAndBadValues(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORE_BACKEND", "Postgres")
	t.Setenv("JWT_TTL", "15m")
	t.Setenv("BCRYPT_COST", "not-a-number")
	t.Setenv("CORS_ALLOWED_ORIGINS", " http://a.test, ,http://b.test ")

	c := Load()
	if c.StoreBackend != StorePostgres || c.JWTTTL != 15*time.Minute {
		t.Fatalf("store=%s ttl=%v", c.StoreBackend, c.JWTTTL)
	}
	if c.BcryptCost != 10 {
		t.Fatalf("bad int should fall back to default, got %d", c.BcryptCost)
	}
	if got := c.CORSOrigins(); len(got) != 2 || got[1] != "http://b.test" {
		t.Fatalf("origins = %v", got)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			JWTSecret: "x", JWTTTL: time.Hour,
			StoreBackend: StoreMemory, CacheBackend: CacheNone, Notifier: NotifierLog,
		}
	}
	cases := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET"},
		{"unknown store", func(c *Config) { c.StoreBackend = "mongo" }, "STORE_BACKEND"},
		{"unknown cache", func(c *Config) { c.CacheBackend = "memcached" }, "CACHE_BACKEND"},
		{"unknown notifier", func(c *Config) { c.Notifier = "sms" }, "NOTIFIER"},
		{"mailgun without creds", func(c *Config) { c.Notifier = NotifierMailgun }, "MAILGUN_DOMAIN"},
		{"half admin", func(c *Config) { c.AdminEmail = "root@example.com" }, "ADMIN_PASSWORD"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := base()
			tc.mutate(c)
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want mention of %s", err, tc.want)
			}
		})
	}
	if err := base().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestPostgresDSNEscapesPassword(t *testing.T) {
	c := &Config{DBUser: "app", DBPassword: "p@ss/word", DBHost: "db", DBPort: "5432", DBName: "eventhub", DBSSLMode: "disable"}
	want := "postgres://app:p%40ss%2Fword@db:5432/eventhub?sslmode=disable"
	if got := c.PostgresDSN(); got != want {
		t.Fatalf("dsn = %s", got)
	}
}
