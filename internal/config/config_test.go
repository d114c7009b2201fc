package config

import "testing"

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Config{
		HTTP:    HTTPConfig{Port: 0},
		Records: RecordsConfig{BaseURL: "http://localhost:9000/contracts"},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingRecordsURL(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing records base_url")
	}
}

func TestValidate_FuzzyThresholdAboveOne(t *testing.T) {
	cfg := Config{
		HTTP:    HTTPConfig{Port: 8080},
		Records: RecordsConfig{BaseURL: "http://localhost:9000/contracts"},
		Search:  SearchConfig{FuzzyThreshold: 1.5},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for fuzzy threshold above 1")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("expected WriteTimeoutSec=10, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Search.DebounceMs != 280 {
		t.Errorf("expected DebounceMs=280, got %d", cfg.Search.DebounceMs)
	}
	if cfg.Search.FuzzyThreshold != 0.75 {
		t.Errorf("expected FuzzyThreshold=0.75, got %v", cfg.Search.FuzzyThreshold)
	}
	if cfg.Search.ExactWeight != 10 || cfg.Search.PartialWeight != 6 || cfg.Search.FuzzyWeight != 2 {
		t.Errorf("expected weights 10/6/2, got %d/%d/%d",
			cfg.Search.ExactWeight, cfg.Search.PartialWeight, cfg.Search.FuzzyWeight)
	}
	if cfg.Search.MaxResults != 20 {
		t.Errorf("expected MaxResults=20, got %d", cfg.Search.MaxResults)
	}
	if cfg.Search.SnapshotTTLSec != 300 {
		t.Errorf("expected SnapshotTTLSec=300, got %d", cfg.Search.SnapshotTTLSec)
	}
	if cfg.Search.HistoryLimit != 10 {
		t.Errorf("expected HistoryLimit=10, got %d", cfg.Search.HistoryLimit)
	}
	if cfg.Records.PageSize != 1000 {
		t.Errorf("expected PageSize=1000, got %d", cfg.Records.PageSize)
	}
	if cfg.Storage.HistoryKey != "contractsearch:history" {
		t.Errorf("expected HistoryKey='contractsearch:history', got %q", cfg.Storage.HistoryKey)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:    HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Search:  SearchConfig{DebounceMs: 150, FuzzyThreshold: 0.9, MaxResults: 50},
		Records: RecordsConfig{PageSize: 250},
		Storage: StorageConfig{HistoryKey: "custom:history"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Search.DebounceMs != 150 {
		t.Errorf("expected DebounceMs=150, got %d", cfg.Search.DebounceMs)
	}
	if cfg.Search.FuzzyThreshold != 0.9 {
		t.Errorf("expected FuzzyThreshold=0.9, got %v", cfg.Search.FuzzyThreshold)
	}
	if cfg.Records.PageSize != 250 {
		t.Errorf("expected PageSize=250, got %d", cfg.Records.PageSize)
	}
	if cfg.Storage.HistoryKey != "custom:history" {
		t.Errorf("expected HistoryKey='custom:history', got %q", cfg.Storage.HistoryKey)
	}
}
