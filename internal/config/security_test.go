package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "security.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const validConfigYAML = `
security:
  auth:
    provider: basic
    basic:
      min_password_length: 12
      weak_passwords:
        - password
        - "123456"
  public_endpoints:
    - /auth/token
    - /health
    - /webhooks
  jwt:
    secret_env: JWT_SECRET
    expiry_hours: 2
`

func TestLoadSecurityConfig(t *testing.T) {
	path := writeConfigFile(t, validConfigYAML)

	cfg, err := LoadSecurityConfig(path)
	if err != nil {
		t.Fatalf("LoadSecurityConfig: %v", err)
	}

	if got := cfg.GetAuthProvider(); got != "basic" {
		t.Errorf("provider = %q, want %q", got, "basic")
	}
	if got := cfg.GetMinPasswordLength(); got != 12 {
		t.Errorf("min password length = %d, want 12", got)
	}
	if got := len(cfg.GetWeakPasswords()); got != 2 {
		t.Errorf("weak passwords = %d entries, want 2", got)
	}
	if got := cfg.GetJWTSecretEnv(); got != "JWT_SECRET" {
		t.Errorf("jwt secret env = %q, want JWT_SECRET", got)
	}
	if got := cfg.GetJWTExpiryHours(); got != 2 {
		t.Errorf("jwt expiry hours = %d, want 2", got)
	}

	endpoints := cfg.GetPublicEndpoints()
	if len(endpoints) != 3 {
		t.Fatalf("public endpoints = %d entries, want 3", len(endpoints))
	}
	if endpoints[2] != "/webhooks" {
		t.Errorf("endpoints[2] = %q, want /webhooks", endpoints[2])
	}
}

func TestLoadSecurityConfig_FileNotFound(t *testing.T) {
	_, err := LoadSecurityConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadSecurityConfig_InvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "security:\n  auth: [broken")
	if _, err := LoadSecurityConfig(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadSecurityConfig_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "missing provider",
			yaml: `
security:
  jwt:
    secret_env: JWT_SECRET
    expiry_hours: 1
`,
		},
		{
			// basic プロバイダでは8文字未満を拒否する
			name: "password length below minimum",
			yaml: `
security:
  auth:
    provider: basic
    basic:
      min_password_length: 4
  jwt:
    secret_env: JWT_SECRET
    expiry_hours: 1
`,
		},
		{
			name: "missing jwt secret env",
			yaml: `
security:
  auth:
    provider: basic
    basic:
      min_password_length: 8
  jwt:
    expiry_hours: 1
`,
		},
		{
			name: "non-positive jwt expiry",
			yaml: `
security:
  auth:
    provider: basic
    basic:
      min_password_length: 8
  jwt:
    secret_env: JWT_SECRET
    expiry_hours: 0
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, tt.yaml)
			if _, err := LoadSecurityConfig(path); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
