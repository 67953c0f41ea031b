package config

import (
	"reflect"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ORDER_STATUSES", "")
	t.Setenv("TIME_ZONE", "")
	t.Setenv("RABBITMQ_URL", "")

	cfg := Load()

	want := []string{"pendiente", "preparando", "listo", "entregado"}
	if !reflect.DeepEqual(cfg.OrderStatuses, want) {
		t.Errorf("order statuses: got %v, want %v", cfg.OrderStatuses, want)
	}
	if cfg.TimeZone != "America/Santiago" {
		t.Errorf("time zone: got %q", cfg.TimeZone)
	}
	if cfg.RabbitMQURL != "" {
		t.Errorf("rabbitmq url: got %q, want empty", cfg.RabbitMQURL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ORDER_STATUSES", " pendiente, preparando ,listo,en_camino,entregado,")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("port: got %q", cfg.Port)
	}
	want := []string{"pendiente", "preparando", "listo", "en_camino", "entregado"}
	if !reflect.DeepEqual(cfg.OrderStatuses, want) {
		t.Errorf("order statuses: got %v, want %v", cfg.OrderStatuses, want)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Errorf("cors origins: got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLocationFallback(t *testing.T) {
	cfg := &Config{TimeZone: "Not/AZone"}
	loc := cfg.Location()
	if loc == nil {
		t.Fatal("expected fallback location")
	}
	if loc.String() != "CLT" {
		t.Errorf("location: got %q, want CLT", loc.String())
	}
}
