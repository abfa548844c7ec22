package config

import (
	"os"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret-test-secret-test-secret!")
	t.Setenv("ADMIN_EMAIL", "admin@carebook.test")
	t.Setenv("ADMIN_PASSWORD", "hunter22")
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	os.Unsetenv("JWT_SECRET")
	t.Setenv("ADMIN_EMAIL", "admin@carebook.test")
	t.Setenv("ADMIN_PASSWORD", "hunter22")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when JWT_SECRET is missing")
	}
}

func TestLoad_RequiresAdminCredentials(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-test-secret-test-secret!")
	os.Unsetenv("ADMIN_EMAIL")
	os.Unsetenv("ADMIN_PASSWORD")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when admin credentials are missing")
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.JWT.AdminTokenTTL != 24*time.Hour {
		t.Errorf("expected admin token TTL of 24h, got %s", cfg.JWT.AdminTokenTTL)
	}
	if cfg.JWT.DoctorTokenTTL != 24*time.Hour {
		t.Errorf("expected doctor token TTL of 24h, got %s", cfg.JWT.DoctorTokenTTL)
	}
	if cfg.JWT.PatientTokenTTL != 7*24*time.Hour {
		t.Errorf("expected patient token TTL of 7d, got %s", cfg.JWT.PatientTokenTTL)
	}
	if cfg.Database.Name != "carebook" {
		t.Errorf("expected default database name carebook, got %s", cfg.Database.Name)
	}
}

func TestLoad_ProductionRequiresStrongSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "short")
	t.Setenv("ADMIN_EMAIL", "admin@carebook.test")
	t.Setenv("ADMIN_PASSWORD", "hunter22")
	t.Setenv("DB_PASSWORD", "pw")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for short JWT secret in production")
	}
}

func TestServerConfig_Address(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 9000}
	if got := s.Address(); got != "127.0.0.1:9000" {
		t.Errorf("expected 127.0.0.1:9000, got %s", got)
	}
}
