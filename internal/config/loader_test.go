package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "GBM_RNAseqdata_HTSEQ_FKPM.harmonized.txt", cfg.Inputs.Reference)
	assert.Equal(t, []TableConfig{
		{Name: "drug", Path: "clinical_drug_GBM.txt"},
		{Name: "patient", Path: "clinical_patient_GBM.txt"},
		{Name: "followup", Path: "clinical_followup_GBM.txt"},
	}, cfg.Inputs.Tables)
	assert.Empty(t, cfg.Inputs.Features)
	assert.Empty(t, cfg.Output.Path)
	assert.Equal(t, "csv", cfg.Output.Format)
	assert.Equal(t, "bcr_patient_barcode", cfg.Join.KeyColumn)
	assert.Equal(t, "Patient ID", cfg.Join.IDColumn)
	assert.Equal(t, " ", cfg.Join.Separator)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "stderr", cfg.Logging.Output)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.True(t, cfg.Telemetry.Insecure)
	assert.Equal(t, 5*time.Second, cfg.Telemetry.ShutdownTimeout.Duration())
	assert.Empty(t, cfg.Metrics.Textfile)
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, "gbm.yaml", `
inputs:
  reference: ref.txt
  features: features.txt
  tables:
    - name: drug
      path: /data/drug.tsv
    - name: patient
      path: /data/patient.tsv
output:
  path: out.csv
  format: parquet
telemetry:
  shutdown_timeout: 2s
metrics:
  textfile: gbm.prom
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ref.txt", cfg.Inputs.Reference)
	assert.Equal(t, "features.txt", cfg.Inputs.Features)
	// The file's table list replaces the default list rather than merging into it.
	require.Len(t, cfg.Inputs.Tables, 2)
	assert.Equal(t, TableConfig{Name: "patient", Path: "/data/patient.tsv"}, cfg.Inputs.Tables[1])
	assert.Equal(t, "out.csv", cfg.Output.Path)
	assert.Equal(t, "parquet", cfg.Output.Format)
	assert.Equal(t, 2*time.Second, cfg.Telemetry.ShutdownTimeout.Duration())
	assert.Equal(t, "gbm.prom", cfg.Metrics.Textfile)

	// Untouched keys keep their defaults.
	assert.Equal(t, "bcr_patient_barcode", cfg.Join.KeyColumn)
}

func TestLoad_TOML(t *testing.T) {
	path := writeConfig(t, "gbm.toml", `
[inputs]
reference = "ref.txt"

[[inputs.tables]]
name = "followup"
path = "followup.tsv"

[join]
separator = "|"

[logging]
level = "debug"
format = "json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ref.txt", cfg.Inputs.Reference)
	assert.Equal(t, []TableConfig{{Name: "followup", Path: "followup.tsv"}}, cfg.Inputs.Tables)
	assert.Equal(t, "|", cfg.Join.Separator)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "gbm.yml", "output:\n  format: arrow\n")

	t.Setenv("GBM_OUTPUT_FORMAT", "parquet")
	t.Setenv("GBM_JOIN_KEY_COLUMN", "patient_id")
	t.Setenv("GBM_TELEMETRY_SAMPLING_RATE", "0.25")
	t.Setenv("GBM_TELEMETRY_SHUTDOWN_TIMEOUT", "750ms")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "parquet", cfg.Output.Format)
	assert.Equal(t, "patient_id", cfg.Join.KeyColumn)
	assert.InDelta(t, 0.25, cfg.Telemetry.SamplingRate, 1e-9)
	assert.Equal(t, 750*time.Millisecond, cfg.Telemetry.ShutdownTimeout.Duration())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		wantErr string
	}{
		{
			name:    "missing file",
			path:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.yaml") },
			wantErr: "failed to open config file",
		},
		{
			name:    "unsupported extension",
			path:    func(t *testing.T) string { return writeConfig(t, "gbm.json", "{}") },
			wantErr: "unsupported config file extension",
		},
		{
			name: "directory",
			path: func(t *testing.T) string {
				dir := filepath.Join(t.TempDir(), "conf.yaml")
				require.NoError(t, os.Mkdir(dir, 0700))
				return dir
			},
			wantErr: "is a directory",
		},
		{
			name:    "malformed yaml",
			path:    func(t *testing.T) string { return writeConfig(t, "gbm.yaml", "inputs: [unclosed") },
			wantErr: "failed to load config file",
		},
		{
			name:    "malformed toml",
			path:    func(t *testing.T) string { return writeConfig(t, "gbm.toml", "[inputs\nreference =") },
			wantErr: "failed to load config file",
		},
		{
			name: "too large",
			path: func(t *testing.T) string {
				return writeConfig(t, "big.yaml", "# "+strings.Repeat("x", maxConfigFileSize))
			},
			wantErr: "config file too large",
		},
		{
			name:    "invalid values",
			path:    func(t *testing.T) string { return writeConfig(t, "gbm.yaml", "output:\n  format: xlsx\n") },
			wantErr: "config validation failed",
		},
		{
			name:    "bad duration",
			path:    func(t *testing.T) string { return writeConfig(t, "gbm.yaml", "telemetry:\n  shutdown_timeout: soon\n") },
			wantErr: "failed to unmarshal config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(tt.path(t))
			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "output.format", envKey("GBM_OUTPUT_FORMAT"))
	assert.Equal(t, "join.key_column", envKey("GBM_JOIN_KEY_COLUMN"))
	assert.Equal(t, "metrics.textfile", envKey("GBM_METRICS_TEXTFILE"))
	assert.Equal(t, "debug", envKey("GBM_DEBUG"))
}

func TestTOMLParser_Marshal(t *testing.T) {
	out, err := TOMLParser().Marshal(map[string]interface{}{
		"join": map[string]interface{}{"separator": " "},
	})
	require.NoError(t, err)
	assert.Contains(t, string(out), "[join]")

	back, err := TOMLParser().Unmarshal(out)
	require.NoError(t, err)
	assert.Equal(t, " ", back["join"].(map[string]interface{})["separator"])
}
