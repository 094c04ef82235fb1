package config

import "testing"

func TestValidate_NoEndpoints(t *testing.T) {
	cfg := Config{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when neither server.url nor store.uri is set")
	}
}

func TestValidate_ServerWithoutAppID(t *testing.T) {
	cfg := Config{Server: ServerConfig{URL: "https://api.example.com/parse"}}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for server.url without app_id")
	}
	expected := "server.app_id is required when server.url is set"
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_StoreOnly(t *testing.T) {
	cfg := Config{Store: StoreConfig{URI: "mongodb://localhost:27017", Database: "app"}}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_LogLevels(t *testing.T) {
	for _, level := range []string{"", "debug", "info", "warn", "error"} {
		t.Run("level="+level, func(t *testing.T) {
			cfg := Config{
				Server:  ServerConfig{URL: "https://api.example.com/parse", AppID: "app"},
				Logging: LoggingConfig{Level: level},
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("level %q: unexpected error: %v", level, err)
			}
		})
	}

	cfg := Config{
		Server:  ServerConfig{URL: "https://api.example.com/parse", AppID: "app"},
		Logging: LoggingConfig{Level: "verbose"},
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown log level")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{Store: StoreConfig{URI: "mongodb://localhost:27017"}}
	cfg.ApplyDefaults()

	if cfg.Server.TimeoutSec != 30 {
		t.Errorf("Server.TimeoutSec = %d, want 30", cfg.Server.TimeoutSec)
	}
	if cfg.Store.ConnectTimeoutSec != 10 {
		t.Errorf("Store.ConnectTimeoutSec = %d, want 10", cfg.Store.ConnectTimeoutSec)
	}
	if cfg.Store.Database != "parse" {
		t.Errorf("Store.Database = %q, want parse", cfg.Store.Database)
	}
}
