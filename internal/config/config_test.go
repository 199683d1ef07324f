package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Inputs: InputsConfig{
			Reference: "ref.txt",
			Tables:    []TableConfig{{Name: "drug", Path: "drug.txt"}},
		},
		Output:  OutputConfig{Format: "csv"},
		Join:    JoinConfig{KeyColumn: "bcr_patient_barcode", IDColumn: "Patient ID", Separator: " "},
		Logging: LoggingConfig{Level: "info"},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr []string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "empty separator allowed", mutate: func(c *Config) { c.Join.Separator = "" }},
		{
			name:    "no reference",
			mutate:  func(c *Config) { c.Inputs.Reference = "" },
			wantErr: []string{"inputs.reference is required"},
		},
		{
			name:    "no tables",
			mutate:  func(c *Config) { c.Inputs.Tables = nil },
			wantErr: []string{"at least one table"},
		},
		{
			name: "bad table entries",
			mutate: func(c *Config) {
				c.Inputs.Tables = []TableConfig{
					{Name: "drug", Path: "a"},
					{Name: "drug", Path: ""},
					{Name: "", Path: "c"},
				}
			},
			wantErr: []string{
				`inputs.tables[1]: duplicate name "drug"`,
				"inputs.tables[1]: path is required",
				"inputs.tables[2]: name is required",
			},
		},
		{
			name:    "unknown format",
			mutate:  func(c *Config) { c.Output.Format = "xlsx" },
			wantErr: []string{"output.format"},
		},
		{
			name:    "no key column",
			mutate:  func(c *Config) { c.Join.KeyColumn = "" },
			wantErr: []string{"join.key_column is required"},
		},
		{
			name:    "no id column",
			mutate:  func(c *Config) { c.Join.IDColumn = "" },
			wantErr: []string{"join.id_column is required"},
		},
		{
			name:    "bad level",
			mutate:  func(c *Config) { c.Logging.Level = "loud" },
			wantErr: []string{"logging.level"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if len(tt.wantErr) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, want := range tt.wantErr {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}

func TestDuration_Text(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1m30s")))
	assert.Equal(t, 90*time.Second, d.Duration())

	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(text))

	assert.Error(t, d.UnmarshalText([]byte("-1s")))
	assert.Error(t, d.UnmarshalText([]byte("later")))
}
