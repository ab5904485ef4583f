package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunArgs(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		args     []string
		expected string
	}{
		{[]string{"2*3+(4-5)+2^3/4"}, "The computed number is 7\n\n"},
		{[]string{"10", "-", "4"}, "The computed number is 6\n\n"},
		{[]string{"--", "-5"}, "The computed number is -5\n\n"},
		{[]string{"-5+2"}, "The computed number is -3\n\n"},
		{[]string{"-5", "+", "2"}, "The computed number is -3\n\n"},
		{[]string{"--strict", "-(2+3)"}, "The computed number is -5\n\n"},
		{[]string{"--", "--1"}, "The computed number is 1\n\n"},
		{[]string{"1/4"}, "The computed number is 0.25\n\n"},
		{[]string{"5/0"}, failureMessage + "\n\n"},
		{[]string{"2+3$4"}, failureMessage + "\n\n"},
		{[]string{"--right-assoc-exponent", "2^3^2"}, "The computed number is 512\n\n"},
		{[]string{"--strict", "(2+3))"}, failureMessage + "\n\n"},
	} {
		tt := tt
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			t.Parallel()

			var stdout bytes.Buffer
			code := run(tt.args, strings.NewReader(""), &stdout)
			assert.Equal(t, 0, code)
			assert.Equal(t, tt.expected, stdout.String())
		})
	}
}

func TestRunJSON(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	require.Equal(t, 0, run([]string{"--json", "5/0"}, strings.NewReader(""), &stdout))

	var o map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &o))
	assert.Equal(t, "5/0", o["expression"])
	assert.NotContains(t, o, "result")
	assert.Equal(t, []any{"EvaluationError"}, o["error"].(map[string]any)["tags"])
}

func TestRunInteractive(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	code := run(nil, strings.NewReader("1 + 2\n(2+3\n2 ^ 10\n"), &stdout)
	assert.Equal(t, 0, code)
	assert.Equal(t, "The computed number is 3\n\n"+failureMessage+"\n\nThe computed number is 1024\n\n", stdout.String())
}

func TestRunInteractiveLongLine(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("1+", 50000) + "1"
	var stdout bytes.Buffer
	code := run(nil, strings.NewReader(long+"\n2*3\r\n7"), &stdout)
	assert.Equal(t, 0, code)
	assert.Equal(t, "The computed number is 50001\n\nThe computed number is 6\n\nThe computed number is 7\n\n", stdout.String())
}

func TestSeparateExpressionArgs(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		args     []string
		expected []string
	}{
		{[]string{"1+1"}, []string{"1+1"}},
		{[]string{"-5+2"}, []string{"--", "-5+2"}},
		{[]string{"--json", "-.5"}, []string{"--json", "--", "-.5"}},
		{[]string{"--strict", "-(1)"}, []string{"--strict", "--", "-(1)"}},
		{[]string{"---1"}, []string{"--", "---1"}},
		{[]string{"--", "-1"}, []string{"--", "-1"}},
		{[]string{"-p", "-1"}, []string{"-p", "-1"}},
		{[]string{"--unknown"}, []string{"--unknown"}},
		{[]string{"-"}, []string{"-"}},
	} {
		tt := tt
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, separateExpressionArgs(tt.args))
		})
	}
}

func TestRunBatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ok := filepath.Join(dir, "ok.yaml")
	require.NoError(t, os.WriteFile(ok, []byte("expressions:\n  - 3*7\n  - name: bits\n    expression: 6|2\n"), 0o600))
	ng := filepath.Join(dir, "ng.json")
	require.NoError(t, os.WriteFile(ng, []byte(`{"expressions": ["1+1", "5/0"]}`), 0o600))

	var stdout bytes.Buffer
	require.Equal(t, 0, run([]string{"-f", ok}, strings.NewReader(""), &stdout))

	var out struct {
		Results []struct {
			Name   string `json:"name"`
			Result string `json:"result"`
		} `json:"results"`
		Summary struct {
			Total     int `json:"total"`
			Succeeded int `json:"succeeded"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	require.Len(t, out.Results, 2)
	assert.Equal(t, "21", out.Results[0].Result)
	assert.Equal(t, "bits", out.Results[1].Name)
	assert.Equal(t, "6", out.Results[1].Result)
	assert.Equal(t, 2, out.Summary.Succeeded)

	stdout.Reset()
	assert.Equal(t, 1, run([]string{"--file", ng}, strings.NewReader(""), &stdout))

	assert.Equal(t, 1, run([]string{"-f", filepath.Join(dir, "batch.txt")}, strings.NewReader(""), &stdout))
}

func TestRunInvalidOptions(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	assert.Equal(t, 1, run([]string{"-f", "a.yaml", "-l", ":8080"}, strings.NewReader(""), &stdout))
	assert.Equal(t, 1, run([]string{"-f", "a.yaml", "1+1"}, strings.NewReader(""), &stdout))
	assert.Equal(t, 1, run([]string{"--unknown"}, strings.NewReader(""), &stdout))
}
