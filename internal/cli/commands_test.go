package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fextract/internal/store"
	"github.com/roach88/fextract/internal/testutil"
)

const peopleCSV = "name;age;city\nAlice;30;Bern\nBob;25;Basel\n"

// execute runs the root command with args and a clean environment.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	for _, env := range []string{
		"FEXTRACT_CSV_DELIMITER", "FEXTRACT_LOG_LEVEL", "FEXTRACT_LOG_FORMAT",
		"FEXTRACT_STORE_PATH", "FEXTRACT_SCHEMA_PATH",
	} {
		t.Setenv(env, "")
	}

	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)

	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

type rawResponse struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *CLIError       `json:"error"`
}

func decodeResponse(t *testing.T, out string) rawResponse {
	t.Helper()
	var resp rawResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp
}

func TestExtract_Text(t *testing.T) {
	file := testutil.WriteFixture(t, "", "people.csv", peopleCSV)

	out, _, err := execute(t, "extract", file, "name", "city")
	require.NoError(t, err)

	want := "Processing file " + file + "\n" +
		`{"age":["30","25"],"city":["Bern","Basel"],"name":["Alice","Bob"]}` + "\n" +
		"Processing field: name\n" +
		"Processing field: city\n" +
		"Total fields processed: 2\n"
	assert.Equal(t, want, out)
}

func TestExtract_JSON(t *testing.T) {
	file := testutil.WriteFixture(t, "", "people.json",
		`[{"name":"Alice","age":30},{"name":"Bob","age":25,"vip":true}]`)

	out, _, err := execute(t, "--format", "json", "extract", file, "name", "vip")
	require.NoError(t, err)

	resp := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)

	var result struct {
		Format  string              `json:"format"`
		Fields  []string            `json:"fields"`
		Records int                 `json:"records"`
		Columns map[string][]string `json:"columns"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.Equal(t, "json", result.Format)
	assert.Equal(t, []string{"name", "vip"}, result.Fields)
	assert.Equal(t, 2, result.Records)
	assert.Equal(t, map[string][]string{
		"name": {"Alice", "Bob"},
		"vip":  {"", "true"},
	}, result.Columns)
}

func TestExtract_Errors(t *testing.T) {
	dir := t.TempDir()
	people := testutil.WriteFixture(t, dir, "people.csv", peopleCSV)
	ragged := testutil.WriteFixture(t, dir, "ragged.csv", "a;b\n1;2\n3\n")
	notes := testutil.WriteFixture(t, dir, "notes.txt", "hello")

	tests := []struct {
		name     string
		args     []string
		wantExit int
		wantOut  string
	}{
		{
			name:     "unsupported type",
			args:     []string{"extract", notes, "a"},
			wantExit: ExitCommandError,
			wantOut:  "Error [E010]: cannot process files with extension 'txt'. Supported extensions: 'csv', 'json'",
		},
		{
			name:     "missing file",
			args:     []string{"extract", filepath.Join(dir, "missing.csv"), "a"},
			wantExit: ExitFailure,
			wantOut:  "Error [E005]: file " + filepath.Join(dir, "missing.csv") + " not found",
		},
		{
			name:     "malformed",
			args:     []string{"extract", ragged, "a"},
			wantExit: ExitFailure,
			wantOut:  "Error [E011]",
		},
		{
			name:     "field not found",
			args:     []string{"extract", people, "name", "email"},
			wantExit: ExitFailure,
			wantOut:  "Error [E012]",
		},
		{
			name:     "unsupported output",
			args:     []string{"extract", people, "name", "-o", filepath.Join(dir, "out.xml")},
			wantExit: ExitCommandError,
			wantOut:  "Error [E010]: cannot write output with extension 'xml'",
		},
		{
			name:     "bad delimiter",
			args:     []string{"extract", people, "name", "--delimiter", ";;"},
			wantExit: ExitCommandError,
			wantOut:  "Error [E008]",
		},
		{
			name:     "invalid output format",
			args:     []string{"--format", "yaml", "extract", people, "name"},
			wantExit: ExitCommandError,
			wantOut:  `Error [E008]: invalid format "yaml"`,
		},
		{
			name:     "missing config file",
			args:     []string{"--config", filepath.Join(dir, "nope.yaml"), "extract", people, "name"},
			wantExit: ExitCommandError,
			wantOut:  "Error [E008]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.wantExit, GetExitCode(err))
			assert.Contains(t, out, tt.wantOut)
			assert.True(t, IsReported(err), "error should be reported once, through the formatter")
		})
	}
}

func TestExtract_UsageErrors(t *testing.T) {
	file := testutil.WriteFixture(t, "", "people.csv", peopleCSV)

	t.Run("no fields", func(t *testing.T) {
		out, _, err := execute(t, "extract", file)
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.False(t, IsReported(err))
		assert.Empty(t, out)
	})

	t.Run("unknown flag", func(t *testing.T) {
		_, _, err := execute(t, "extract", file, "name", "--bogus")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})
}

func TestExtract_JSONErrorEnvelope(t *testing.T) {
	file := testutil.WriteFixture(t, "", "people.csv", peopleCSV)

	out, _, err := execute(t, "--format", "json", "extract", file, "email")
	require.Error(t, err)

	resp := decodeResponse(t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeFieldNotFound, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "email")
}

func TestExtract_ConfigDelimiter(t *testing.T) {
	dir := t.TempDir()
	file := testutil.WriteFixture(t, dir, "people.csv", "name,age\nAlice,30\n")
	cfg := testutil.WriteFixture(t, dir, "fextract.yaml", "csv:\n  delimiter: \",\"\n")

	out, _, err := execute(t, "--config", cfg, "extract", file, "age")
	require.NoError(t, err)
	assert.Contains(t, out, `{"age":["30"],"name":["Alice"]}`)

	// The flag overrides the file.
	_, _, err = execute(t, "--config", cfg, "extract", file, "age", "--delimiter", ";")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestExtract_Schema(t *testing.T) {
	dir := t.TempDir()
	file := testutil.WriteFixture(t, dir, "people.csv", "name;age\nAlice;30\nBob;unknown\n")
	schemaFile := testutil.WriteFixture(t, dir, "person.cue", "#Record: {\n\tage: =~\"^[0-9]+$\"\n}\n")

	out, _, err := execute(t, "extract", file, "age", "--schema", schemaFile)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "record 2:")
	assert.Contains(t, out, "Error [E013]: 1 record(s) violate schema")

	_, _, err = execute(t, "extract", file, "name", "--schema", filepath.Join(dir, "missing.cue"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestExtract_OutputCSV(t *testing.T) {
	dir := t.TempDir()
	file := testutil.WriteFixture(t, dir, "people.csv", peopleCSV)
	output := filepath.Join(dir, "out.csv")

	out, _, err := execute(t, "extract", file, "name", "age", "-o", output)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 2 record(s) to "+output)
	assert.Equal(t, "age;name\n30;Alice\n25;Bob\n", testutil.ReadFile(t, output))
}

func TestExtract_OutputDBAndHistory(t *testing.T) {
	dir := t.TempDir()
	file := testutil.WriteFixture(t, dir, "people.csv", peopleCSV)
	db := filepath.Join(dir, "history.db")

	out, _, err := execute(t, "extract", file, "name", "-o", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Recorded 2 record(s) as ")

	out, _, err = execute(t, "extract", file, "name", "-o", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Already recorded as ")

	out, _, err = execute(t, "--format", "json", "history", db)
	require.NoError(t, err)

	resp := decodeResponse(t, out)
	var extractions []store.Extraction
	require.NoError(t, json.Unmarshal(resp.Data, &extractions))
	require.Len(t, extractions, 1)
	assert.Equal(t, file, extractions[0].SourcePath)
	assert.Equal(t, []string{"name"}, extractions[0].Fields)
	assert.Equal(t, 2, extractions[0].RecordCount)

	out, _, err = execute(t, "history", db, "--id", extractions[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, `{"name":["Alice","Bob"]}`)

	out, _, err = execute(t, "history", db)
	require.NoError(t, err)
	assert.Contains(t, out, "SEQ")
	assert.Contains(t, out, extractions[0].ID)
}

func TestHistory_Errors(t *testing.T) {
	dir := t.TempDir()

	_, _, err := execute(t, "history")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	out, _, err := execute(t, "history", filepath.Join(dir, "missing.db"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")

	db := filepath.Join(dir, "empty.db")
	st, err := store.Open(db)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, _, err = execute(t, "history", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No extractions recorded")

	out, _, err = execute(t, "history", db, "--id", "nope")
	require.Error(t, err)
	assert.Contains(t, out, "Error [E005]")
}

func TestInspect(t *testing.T) {
	file := testutil.WriteFixture(t, "", "people.csv", peopleCSV)

	out, _, err := execute(t, "inspect", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Format:  csv\n")
	assert.Contains(t, out, "Fields:  age, city, name\n")
	assert.Contains(t, out, "Records: 2\n")

	out, _, err = execute(t, "--format", "json", "inspect", file)
	require.NoError(t, err)
	var result InspectResult
	require.NoError(t, json.Unmarshal(decodeResponse(t, out).Data, &result))
	assert.Len(t, result.Digest, 64)
}

func TestFormats(t *testing.T) {
	out, _, err := execute(t, "formats")
	require.NoError(t, err)
	assert.Equal(t, "Input:  'csv', 'json'\nOutput: 'csv', 'json', 'db', 'sqlite', 'sqlite3'\n", out)

	out, _, err = execute(t, "--format", "json", "formats")
	require.NoError(t, err)
	var result FormatsResult
	require.NoError(t, json.Unmarshal(decodeResponse(t, out).Data, &result))
	assert.Len(t, result.Inputs, 2)
}

func TestVerboseGoesToStderr(t *testing.T) {
	file := testutil.WriteFixture(t, "", "people.csv", peopleCSV)

	out, errOut, err := execute(t, "-v", "--format", "json", "extract", file, "name")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Using csv parser")
	decodeResponse(t, out)
}
