package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Discovery.Order != 4 {
		t.Errorf("default order = %d, want 4", cfg.Discovery.Order)
	}
	if cfg.Discovery.MinCount != 32 {
		t.Errorf("default minCount = %d, want 32", cfg.Discovery.MinCount)
	}
	if want := (PMIThresholds{0, 2, 4, 6}); !reflect.DeepEqual(cfg.Discovery.MinPMI, want) {
		t.Errorf("default minPmi = %v, want %v", cfg.Discovery.MinPMI, want)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default server port = %d, want 8080", cfg.Server.Port)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
discovery:
  order: 3
  minCount: 16
  minPmi: [0, 1.5, 3]
corpus:
  filePattern: "/data/*.txt"
  inMemory: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Discovery.Order != 3 {
		t.Errorf("order = %d, want 3", cfg.Discovery.Order)
	}
	if cfg.Discovery.MinCount != 16 {
		t.Errorf("minCount = %d, want 16", cfg.Discovery.MinCount)
	}
	if want := (PMIThresholds{0, 1.5, 3}); !reflect.DeepEqual(cfg.Discovery.MinPMI, want) {
		t.Errorf("minPmi = %v, want %v", cfg.Discovery.MinPMI, want)
	}
	if !cfg.Corpus.InMemory {
		t.Error("inMemory should be true")
	}
	// Sections absent from the file keep their defaults.
	if cfg.Postgres.Port != 5432 {
		t.Errorf("postgres port = %d, want default 5432", cfg.Postgres.Port)
	}
}

func TestMinPMIScalar(t *testing.T) {
	path := writeConfig(t, "discovery:\n  minPmi: 2.5\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if want := (PMIThresholds{2.5}); !reflect.DeepEqual(cfg.Discovery.MinPMI, want) {
		t.Errorf("minPmi = %v, want %v", cfg.Discovery.MinPMI, want)
	}
}

func TestMinPMIMapRejected(t *testing.T) {
	path := writeConfig(t, "discovery:\n  minPmi:\n    two: 2\n")
	if _, err := Load(path); err == nil {
		t.Fatal("Load() should reject a mapping for minPmi")
	}
}

func TestPMIThresholdsForOrder(t *testing.T) {
	tests := []struct {
		name    string
		p       PMIThresholds
		order   int
		want    []float64
		wantErr bool
	}{
		{name: "scalar repeats", p: PMIThresholds{2}, order: 3, want: []float64{2, 2, 2}},
		{name: "exact length", p: PMIThresholds{0, 2, 4}, order: 3, want: []float64{0, 2, 4}},
		{name: "longer list truncates", p: PMIThresholds{0, 2, 4, 6}, order: 2, want: []float64{0, 2}},
		{name: "too short fails", p: PMIThresholds{0, 2}, order: 4, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.p.ForOrder(tt.order)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ForOrder() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ForOrder() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("WD_POSTGRES_HOST", "db.internal")
	t.Setenv("WD_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("WD_SERVER_PORT", "9999")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Postgres.Host != "db.internal" {
		t.Errorf("postgres host = %q, want %q", cfg.Postgres.Host, "db.internal")
	}
	if want := []string{"k1:9092", "k2:9092"}; !reflect.DeepEqual(cfg.Kafka.Brokers, want) {
		t.Errorf("kafka brokers = %v, want %v", cfg.Kafka.Brokers, want)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("server port = %d, want 9999", cfg.Server.Port)
	}
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{
		Host: "localhost", Port: 5432,
		User: "wd", Password: "secret",
		Database: "worddiscovery", SSLMode: "disable",
	}
	want := "host=localhost port=5432 user=wd password=secret dbname=worddiscovery sslmode=disable"
	if got := p.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Load() should fail for a missing config file")
	}
}
