package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/unitecon/internal/model"
	"github.com/theirongolddev/unitecon/internal/reference"
)

func writeConfig(t *testing.T, body string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	path := filepath.Join(dir, "unitecon", "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.General.Stage != "pre_seed" {
		t.Errorf("Stage = %q, want pre_seed", cfg.General.Stage)
	}
	if cfg.General.BusinessModel != "" {
		t.Errorf("BusinessModel = %q, want empty", cfg.General.BusinessModel)
	}
	if Exists() {
		t.Error("Exists() = true with no file")
	}
}

func TestLoad_ParsesSections(t *testing.T) {
	writeConfig(t, `
[general]
stage = "seed"
business_model = "b2c"

[advisor]
timeout_sec = 3
redis_addr = "localhost:6379"

[defaults]
cash_balance = 3500000
team_size = 5
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !Exists() {
		t.Error("Exists() = false after write")
	}
	if cfg.General.Stage != "seed" || cfg.General.BusinessModel != "b2c" {
		t.Errorf("general = %+v", cfg.General)
	}
	if cfg.General.Store != "memory" {
		t.Errorf("Store = %q, want memory (untouched default)", cfg.General.Store)
	}
	if cfg.AdvisorTimeout() != 3*time.Second {
		t.Errorf("AdvisorTimeout = %v, want 3s", cfg.AdvisorTimeout())
	}

	def, err := cfg.SystemDefaults()
	if err != nil {
		t.Fatalf("SystemDefaults: %v", err)
	}
	if !def.CashBalance.Equal(decimal.NewFromInt(3_500_000)) {
		t.Errorf("CashBalance = %s, want 3500000", def.CashBalance)
	}
	if def.TeamSize != 5 {
		t.Errorf("TeamSize = %d, want 5", def.TeamSize)
	}
	if !def.MarketingBudget.Equal(model.DefaultInputs().MarketingBudget) {
		t.Errorf("MarketingBudget changed to %s", def.MarketingBudget)
	}
}

func TestLoad_BadTOML(t *testing.T) {
	writeConfig(t, "[general\nstage=")
	if _, err := Load(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.General.Stage = "scale"
	team := 9
	cfg.Defaults.TeamSize = &team
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(ConfigPath())
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.General.Stage != "scale" {
		t.Errorf("Stage = %q, want scale", got.General.Stage)
	}
	if got.Defaults.TeamSize == nil || *got.Defaults.TeamSize != 9 {
		t.Errorf("Defaults.TeamSize = %v, want 9", got.Defaults.TeamSize)
	}
}

func TestGetAdvisorAPIKey_EnvWins(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Advisor.APIKey = "from-file"

	t.Setenv("GIGACHAT_API_KEY", "")
	if got := GetAdvisorAPIKey(cfg); got != "from-file" {
		t.Errorf("key = %q, want from-file", got)
	}

	t.Setenv("GIGACHAT_API_KEY", "from-env")
	if got := GetAdvisorAPIKey(cfg); got != "from-env" {
		t.Errorf("key = %q, want from-env", got)
	}
}

func TestSystemDefaults_RejectsInvalidOverride(t *testing.T) {
	cfg := DefaultConfig()
	churn := 1.5
	cfg.Defaults.ExpectedChurnRate = &churn

	_, err := cfg.SystemDefaults()
	if !errors.Is(err, model.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestResolveProfile(t *testing.T) {
	cfg := DefaultConfig()

	p, err := ResolveProfile(cfg, "")
	if err != nil {
		t.Fatal(err)
	}
	if p.Stage != reference.StagePreSeed || p.BusinessModel != reference.BusinessModelUnset {
		t.Errorf("profile = %+v", p)
	}

	cfg.General.BusinessModel = "b2b_enterprise"
	p, err = ResolveProfile(cfg, "scale")
	if err != nil {
		t.Fatal(err)
	}
	if p.Stage != reference.StageScale || p.BusinessModel != reference.BusinessModelB2BEnterprise {
		t.Errorf("profile = %+v", p)
	}

	if _, err := ResolveProfile(cfg, "series_b"); err == nil {
		t.Error("expected error for unknown stage")
	}

	cfg.General.BusinessModel = "marketplace"
	if _, err := ResolveProfile(cfg, ""); err == nil {
		t.Error("expected error for unknown business model")
	}
}
