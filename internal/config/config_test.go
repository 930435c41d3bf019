package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Port = %q, expected 8080", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Driver = %q, expected sqlite", cfg.Database.Driver)
	}
	if cfg.JWT.ExpireHour != 24 {
		t.Errorf("ExpireHour = %d, expected 24", cfg.JWT.ExpireHour)
	}
	if cfg.Email.Enabled || cfg.Redis.Enabled || cfg.LDAP.Enabled {
		t.Error("optional integrations should default to disabled")
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  host: 127.0.0.1
  port: "9090"
  mode: release
database:
  driver: postgres
  dsn: host=db user=app dbname=bugnest
jwt:
  secret: file-secret
  expire_hour: 12
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Port = %q, expected 9090", cfg.Server.Port)
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("Driver = %q, expected postgres", cfg.Database.Driver)
	}
	if cfg.JWT.Secret != "file-secret" {
		t.Errorf("Secret = %q, expected file-secret", cfg.JWT.Secret)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("SMTP_HOST", "mail.example.com")
	t.Setenv("REDIS_ADDR", "redis.example.com:6379")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != "7070" {
		t.Errorf("Port = %q, expected env override 7070", cfg.Server.Port)
	}
	if cfg.JWT.Secret != "env-secret" {
		t.Errorf("Secret = %q, expected env override", cfg.JWT.Secret)
	}
	if !cfg.Email.Enabled || cfg.Email.Host != "mail.example.com" {
		t.Error("SMTP_HOST should enable and configure email")
	}
	if !cfg.Redis.Enabled || cfg.Redis.Addr != "redis.example.com:6379" {
		t.Error("REDIS_ADDR should enable and configure redis")
	}
}
