package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture is a directory holding a reference file and three clinical tables.
type fixture struct {
	dir       string
	reference string
	drug      string
	patient   string
	followup  string
	features  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))
		return path
	}

	return &fixture{
		dir: dir,
		reference: write("reference.txt",
			"Hybridization REF\tTCGA-02-0001-01\tTCGA-02-0003-01\tTCGA-02-0404-01\r\n"+
				"gene\t1.0\t2.0\t3.0\r\n"),
		drug: write("drug.txt",
			"\"bcr_patient_barcode\",\"drug_name\"\n"+
				"\"1\",\"TCGA-02-0001\",\"Temozolomide\"\n"),
		patient: write("patient.txt",
			"\"bcr_patient_barcode\",\"gender\"\n"+
				"\"1\",\"TCGA-02-0001\",\"MALE\"\n"+
				"\"2\",\"TCGA-02-0003\",\"FEMALE\"\n"),
		followup: write("followup.txt",
			"\"bcr_patient_barcode\",\"vital_status\"\n"+
				"\"1\",\"TCGA-02-0001\",\"Alive\"\n"+
				"\"2\",\"TCGA-02-0001\",\"Dead\"\n"),
		features: write("features.txt", "drug_name\r\ngender\r\n\"vital_status\"\r\n"),
	}
}

// inputArgs points a run at the fixture's reference and tables.
func (f *fixture) inputArgs() []string {
	return []string{
		"--log-level", "error",
		"--reference", f.reference,
		"--table", "drug=" + f.drug,
		"--table", "patient=" + f.patient,
		"--table", "followup=" + f.followup,
	}
}

func (f *fixture) path(name string) string {
	return filepath.Join(f.dir, name)
}

type result struct {
	code   int
	stdout string
	stderr string
}

func runCLI(stdin string, args ...string) result {
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

const wantCSV = "Patient ID,drug_name,gender,vital_status\n" +
	"0001,Temozolomide,MALE,Alive Dead\n" +
	"0003,,FEMALE,\n"

func TestJoin_WithFlags(t *testing.T) {
	f := newFixture(t)
	out := f.path("out.csv")

	args := append(f.inputArgs(), "--features", f.features, "--output", out)
	res := runCLI("", args...)

	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "Output file saved to: "+out+"\n", res.stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, wantCSV, string(data))
}

func TestJoin_IsTheDefaultCommand(t *testing.T) {
	f := newFixture(t)
	viaRoot := f.path("root.csv")
	viaJoin := f.path("join.csv")

	res := runCLI("", append(f.inputArgs(), "-f", f.features, "-o", viaRoot)...)
	require.Equal(t, 0, res.code, res.stderr)
	res = runCLI("", append([]string{"join"}, append(f.inputArgs(), "-f", f.features, "-o", viaJoin)...)...)
	require.Equal(t, 0, res.code, res.stderr)

	a, err := os.ReadFile(viaRoot)
	require.NoError(t, err)
	b, err := os.ReadFile(viaJoin)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestJoin_Prompts(t *testing.T) {
	f := newFixture(t)
	out := f.path("prompted.csv")

	res := runCLI(f.features+"\n"+out+"\n", f.inputArgs()...)

	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t,
		"Enter the location of the user input file: "+
			"Enter the location to save the output file: "+
			"Output file saved to: "+out+"\n",
		res.stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, wantCSV, string(data))
}

func TestJoin_PromptsOnlyForMissingPaths(t *testing.T) {
	f := newFixture(t)
	out := f.path("half.csv")

	res := runCLI(out+"\n", append(f.inputArgs(), "--features", f.features)...)

	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "Enter the location to save the output file: Output file saved to: "+out+"\n", res.stdout)
}

func TestJoin_PromptCancelled(t *testing.T) {
	f := newFixture(t)

	res := runCLI("", f.inputArgs()...)

	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Error: prompt cancelled")
}

func TestJoin_MissingTableAbortsBeforePrompting(t *testing.T) {
	f := newFixture(t)
	missing := f.path("clinical_drug_GBM.txt")
	out := f.path("never.csv")

	res := runCLI(f.features+"\n"+out+"\n",
		"--log-level", "error",
		"--reference", f.reference,
		"--table", "drug="+missing,
		"--table", "patient="+f.patient,
	)

	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Error: could not open file: "+missing+": file not found")
	assert.Empty(t, res.stdout)
	assert.NoFileExists(t, out)
}

func TestJoin_MissingReference(t *testing.T) {
	f := newFixture(t)
	missing := f.path("GBM_RNAseqdata_HTSEQ_FKPM.harmonized.txt")

	args := append(f.inputArgs(), "--reference", missing, "-f", f.features, "-o", f.path("out.csv"))
	res := runCLI("", args...)

	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "could not open file: "+missing)
}

func TestJoin_MissingFeatures(t *testing.T) {
	f := newFixture(t)
	out := f.path("out.csv")
	missing := f.path("features-missing.txt")

	res := runCLI("", append(f.inputArgs(), "-f", missing, "-o", out)...)

	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "could not open file: "+missing+": file not found")
	assert.NoFileExists(t, out)
}

func TestJoin_UnwritableOutput(t *testing.T) {
	f := newFixture(t)
	out := filepath.Join(f.dir, "no-such-dir", "out.csv")

	res := runCLI("", append(f.inputArgs(), "-f", f.features, "-o", out)...)

	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Error: could not open file: "+out)
	assert.NotContains(t, res.stdout, "Output file saved to")
}

func TestJoin_ColumnarFormats(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		format string
		magic  string
	}{
		{format: "arrow", magic: "ARROW1"},
		{format: "parquet", magic: "PAR1"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out := f.path("out." + tt.format)
			res := runCLI("", append(f.inputArgs(), "-f", f.features, "-o", out, "--format", tt.format)...)
			require.Equal(t, 0, res.code, res.stderr)

			data, err := os.ReadFile(out)
			require.NoError(t, err)
			require.Greater(t, len(data), len(tt.magic))
			assert.Equal(t, tt.magic, string(data[:len(tt.magic)]))
		})
	}
}

func TestJoin_SeparatorAndTableOrder(t *testing.T) {
	f := newFixture(t)
	out := f.path("sep.csv")

	res := runCLI("",
		"--log-level", "error",
		"--reference", f.reference,
		"--table", "followup="+f.followup,
		"--table", "patient="+f.patient,
		"--separator", "|",
		"-f", f.features, "-o", out,
	)
	require.Equal(t, 0, res.code, res.stderr)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t,
		"Patient ID,drug_name,gender,vital_status\n"+
			"0001,,MALE,Alive|Dead\n"+
			"0003,,FEMALE,\n",
		string(data))
}

func TestJoin_ConfigFile(t *testing.T) {
	f := newFixture(t)
	out := f.path("from-config.csv")
	prom := f.path("gbm.prom")

	cfgPath := f.path("gbm.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
inputs:
  reference: `+f.reference+`
  features: `+f.features+`
  tables:
    - name: drug
      path: `+f.drug+`
    - name: patient
      path: `+f.patient+`
    - name: followup
      path: `+f.followup+`
output:
  path: `+out+`
logging:
  level: error
metrics:
  textfile: `+prom+`
`), 0600))

	res := runCLI("", "--config", cfgPath)
	require.Equal(t, 0, res.code, res.stderr)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, wantCSV, string(data))

	metrics, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "gbm_rows_emitted_total")
	assert.Contains(t, string(metrics), "gbm_patients_dropped_total")
	assert.Contains(t, string(metrics), `table="followup"`)
}

func TestJoin_FlagErrors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "bad table", args: []string{"--table", "drug"}, wantErr: `invalid --table "drug"`},
		{name: "bad format", args: []string{"--format", "xlsx"}, wantErr: "unknown output format"},
		{name: "bad level", args: []string{"--log-level", "loud"}, wantErr: "logging.level"},
		{name: "empty key column", args: []string{"--key-column", ""}, wantErr: "join.key_column is required"},
		{name: "positional arg", args: []string{"extra"}, wantErr: "unknown command"},
		{name: "missing config", args: []string{"--config", f.path("nope.yaml")}, wantErr: "failed to open config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI("", tt.args...)
			assert.Equal(t, 1, res.code)
			assert.Contains(t, res.stderr, tt.wantErr)
		})
	}
}

func TestIDs(t *testing.T) {
	f := newFixture(t)

	res := runCLI("", "ids", "--log-level", "error", "--reference", f.reference)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "TCGA-02-0001\nTCGA-02-0003\nTCGA-02-0404\n", res.stdout)

	res = runCLI("", "ids", "--log-level", "error", "--reference", f.reference, "--short")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "0001\n0003\n0404\n", res.stdout)
}

func TestIDs_MissingReference(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "ref.txt")
	res := runCLI("", "ids", "--log-level", "error", "--reference", missing)
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Error: could not open file: "+missing+": file not found")
}

func TestFeatures(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "features.txt")
	require.NoError(t, os.WriteFile(path, []byte("bcr_patient_barcode\n\n\"age\"\n"), 0600))

	res := runCLI("", "features", path)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "1\t\"bcr_patient_barcode\"\n2\t\"\"\n3\t\"age\"\n", res.stdout)

	res = runCLI("", "features")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "no feature list given")
}

func TestVersion(t *testing.T) {
	res := runCLI("", "version")
	require.Equal(t, 0, res.code)
	assert.Equal(t, "gbm dev\n", res.stdout)

	res = runCLI("", "--version")
	require.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "dev")
}

func TestParseTables(t *testing.T) {
	tables, err := parseTables([]string{"drug=a.txt", "followup=dir/b=c.txt"})
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, "drug", tables[0].Name)
	assert.Equal(t, "dir/b=c.txt", tables[1].Path)

	for _, bad := range []string{"", "=a.txt", "drug=", "drug"} {
		_, err := parseTables([]string{bad})
		assert.Error(t, err, bad)
	}
}
