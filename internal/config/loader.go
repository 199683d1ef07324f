package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	maxConfigFileSize = 1024 * 1024 // 1MB

	// EnvPrefix is the prefix of environment variables read by Load.
	EnvPrefix = "GBM_"
)

// defaults are the values used when neither a file nor the environment sets a key.
const defaults = `
inputs:
  reference: GBM_RNAseqdata_HTSEQ_FKPM.harmonized.txt
  tables:
    - name: drug
      path: clinical_drug_GBM.txt
    - name: patient
      path: clinical_patient_GBM.txt
    - name: followup
      path: clinical_followup_GBM.txt
output:
  format: csv
join:
  key_column: bcr_patient_barcode
  id_column: Patient ID
  separator: " "
logging:
  level: info
  format: console
  output: stderr
  caller: false
telemetry:
  enabled: false
  endpoint: localhost:4317
  protocol: grpc
  insecure: true
  sampling_rate: 1.0
  shutdown_timeout: 5s
`

// Load loads configuration from defaults, the file at configPath, and the
// environment, in increasing precedence.
//
// An empty configPath skips the file layer. The file format is chosen by
// extension: .yaml and .yml are YAML, .toml is TOML. Files larger than 1MB
// are rejected.
//
// # Environment Variable Mapping
//
// Variables carry the GBM_ prefix. The first underscore after the prefix
// separates the section from the field name:
//
//	GBM_OUTPUT_FORMAT     -> output.format
//	GBM_JOIN_KEY_COLUMN   -> join.key_column
//	GBM_TELEMETRY_ENABLED -> telemetry.enabled
//
// The table list can only be set from a file.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider([]byte(defaults)), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if err := loadFile(k, configPath); err != nil {
			return nil, err
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFile reads and parses one config file into k.
func loadFile(k *koanf.Koanf, path string) error {
	parser, err := parserFor(path)
	if err != nil {
		return err
	}

	// Open once and stat the descriptor so size and content agree.
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("config path %s is a directory", path)
	}
	if info.Size() > maxConfigFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	content, err := io.ReadAll(io.LimitReader(f, maxConfigFileSize+1))
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if len(content) > maxConfigFileSize {
		return fmt.Errorf("config file too large: more than %d bytes", maxConfigFileSize)
	}

	if err := k.Load(rawbytes.Provider(content), parser); err != nil {
		return fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	return nil
}

// parserFor picks a koanf parser from the file extension.
func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".toml":
		return TOMLParser(), nil
	default:
		return nil, fmt.Errorf("unsupported config file extension %q (want .yaml, .yml or .toml)", filepath.Ext(path))
	}
}

// envKey maps GBM_SECTION_FIELD_NAME to section.field_name.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, field, ok := strings.Cut(lower, "_")
	if !ok {
		return lower
	}
	return section + "." + field
}
