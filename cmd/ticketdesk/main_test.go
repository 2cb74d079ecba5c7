package main

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"--addr", "0.0.0.0:9000", "--store=memory"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if opts.addr != "0.0.0.0:9000" || opts.store != "memory" {
		t.Fatalf("opts = %+v", opts)
	}

	if _, err := parseFlags([]string{"extra"}); err == nil {
		t.Fatal("expected error for positional argument")
	}
	if _, err := parseFlags([]string{"--help"}); err != pflag.ErrHelp {
		t.Fatalf("help: %v", err)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "file")
	cfg, err := loadConfig(options{addr: "0.0.0.0:9000", store: "memory"})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.App.Addr() != "0.0.0.0:9000" {
		t.Errorf("addr = %q", cfg.App.Addr())
	}
	if cfg.Store.Driver != "memory" {
		t.Errorf("driver = %q", cfg.Store.Driver)
	}

	if _, err := loadConfig(options{addr: "no-port"}); err == nil {
		t.Fatal("expected error for bad --addr")
	}
}
