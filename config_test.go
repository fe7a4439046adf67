package authcore

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Session.TotalDuration != 30*24*time.Hour {
		t.Fatalf("unexpected total duration %v", cfg.Session.TotalDuration)
	}
	if cfg.Session.InactiveDuration != 30*24*time.Hour {
		t.Fatalf("unexpected inactive duration %v", cfg.Session.InactiveDuration)
	}
	if cfg.JWT.Duration != time.Hour {
		t.Fatalf("unexpected jwt duration %v", cfg.JWT.Duration)
	}
	if cfg.SignIn.MaxFailedAttemptsPerHour != 10 || cfg.SignIn.FailureWindow != time.Hour {
		t.Fatalf("unexpected sign-in limits %+v", cfg.SignIn)
	}
	if cfg.Secret.MinLength != 10 {
		t.Fatalf("unexpected secret minimum %d", cfg.Secret.MinLength)
	}
	if cfg.Verification.CodeTTL != 15*time.Minute || cfg.Verification.MaxAttempts != 5 {
		t.Fatalf("unexpected verification config %+v", cfg.Verification)
	}

	if err := validateConfig(cfg); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestValidateConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty prefix", func(c *Config) { c.KeyPrefix = "" }},
		{"zero total duration", func(c *Config) { c.Session.TotalDuration = 0 }},
		{"zero inactive duration", func(c *Config) { c.Session.InactiveDuration = 0 }},
		{"inactive exceeds total", func(c *Config) {
			c.Session.TotalDuration = time.Hour
			c.Session.InactiveDuration = 2 * time.Hour
		}},
		{"zero failure budget", func(c *Config) { c.SignIn.MaxFailedAttemptsPerHour = 0 }},
		{"zero failure window", func(c *Config) { c.SignIn.FailureWindow = 0 }},
		{"zero secret minimum", func(c *Config) { c.Secret.MinLength = 0 }},
		{"zero code ttl", func(c *Config) { c.Verification.CodeTTL = 0 }},
		{"otp digits too few", func(c *Config) {
			c.Verification.Format = CodeFormatOTP
			c.Verification.OTPDigits = 4
		}},
		{"otp digits too many", func(c *Config) {
			c.Verification.Format = CodeFormatOTP
			c.Verification.OTPDigits = 12
		}},
		{"zero attempt budget", func(c *Config) { c.Verification.MaxAttempts = 0 }},
		{"jwt enabled zero duration", func(c *Config) {
			c.JWT.Enabled = true
			c.JWT.Duration = 0
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(&cfg)
			if err := validateConfig(cfg); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestBuilderRequiresRedis(t *testing.T) {
	if _, err := New().Build(); err == nil {
		t.Fatal("expected build failure without redis")
	}
}

func TestBuilderIsSingleUse(t *testing.T) {
	_, client := newTestRedis(t)

	builder := New().WithRedis(client).WithHasher(testHasher(t))
	engine, err := builder.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	if _, err := builder.Build(); err == nil {
		t.Fatal("expected second Build to fail")
	}
}
