package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"surveycli/internal/codebook"
	"surveycli/internal/shared/testutil"
	api "surveycli/pkg/contracts/api/v1"
)

// run executes the root command against the fixture survey
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	dir := t.TempDir()
	cbPath, dataPath := testutil.WriteSurveyFiles(t, dir)

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--codebook", cbPath, "--data", dataPath, "--no-color"}, args...))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestDescribe(t *testing.T) {
	out, _, err := run(t, "describe")
	require.NoError(t, err)
	assert.Contains(t, out, "Customer survey")
	assert.Contains(t, out, "6 respondents")
	assert.Contains(t, out, "agree1")
	assert.Contains(t, out, "Email (q5_1), Phone (q5_2)")
	assert.Contains(t, out, "Matrices")
}

func TestFreq(t *testing.T) {
	out, stderr, err := run(t, "freq", "agree1")
	require.NoError(t, err)
	assert.Contains(t, out, "The service is fast")
	assert.Contains(t, out, "Yes (1)")
	assert.Contains(t, out, "50%")
	assert.Contains(t, out, "Mean")
	assert.Empty(t, stderr)

	out, _, err = run(t, "freq", "agree1", "--no-mean", "--no-totals", "--percent-format", ".1%", "--title", "Speed")
	require.NoError(t, err)
	assert.Contains(t, out, "Speed")
	assert.Contains(t, out, "50.0%")
	assert.NotContains(t, out, "Mean")
	assert.NotContains(t, out, "Total")
}

func TestCut(t *testing.T) {
	out, _, err := run(t, "cut", "agree1", "region")
	require.NoError(t, err)
	assert.Contains(t, out, "The service is fast by Region")
	assert.Contains(t, out, "North")
	assert.Contains(t, out, "South")

	_, _, err = run(t, "cut", "agree1", "contact")
	assert.Error(t, err)

	_, _, err = run(t, "cut", "agree1")
	assert.ErrorContains(t, err, "expects 2 argument(s)")
}

func TestMatrix(t *testing.T) {
	out, _, err := run(t, "matrix", "service", "--show", "pct")
	require.NoError(t, err)
	assert.Contains(t, out, "About our service")

	out, _, err = run(t, "matrix", "service", "--by", "region")
	require.NoError(t, err)
	assert.Contains(t, out, "About our service by Region")

	_, _, err = run(t, "matrix", "service", "--show", "sideways")
	assert.Error(t, err)
}

func TestUnknownQuestion(t *testing.T) {
	_, _, err := run(t, "freq", "ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, codebook.ErrUnknownQuestion)
}

func TestOutputFiles(t *testing.T) {
	dir := t.TempDir()

	t.Run("csv", func(t *testing.T) {
		path := filepath.Join(dir, "agree1.csv")
		out, _, err := run(t, "freq", "agree1", "--out", path)
		require.NoError(t, err)
		assert.Contains(t, out, "wrote 1 table(s)")

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "The service is fast")
	})

	t.Run("xlsx report", func(t *testing.T) {
		path := filepath.Join(dir, "report.xlsx")
		_, _, err := run(t, "report", "--out", path)
		require.NoError(t, err)

		f, err := excelize.OpenFile(path)
		require.NoError(t, err)
		defer f.Close()
		assert.Len(t, f.GetSheetList(), 3)
	})

	t.Run("unsupported", func(t *testing.T) {
		_, _, err := run(t, "freq", "agree1", "--out", filepath.Join(dir, "agree1.pdf"))
		assert.ErrorContains(t, err, "unsupported file type")
	})
}

func TestReportRequest(t *testing.T) {
	dir := t.TempDir()
	reqPath := filepath.Join(dir, "request.json")
	require.NoError(t, os.WriteFile(reqPath,
		[]byte(`{"title":"Regions","tables":[{"question":"region"},{"question":"agree2","cut_by":"region"}]}`), 0o644))

	out, _, err := run(t, "report", "--request", reqPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Region")
	assert.Equal(t, 1, strings.Count(out, "by Region"))

	badPath := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badPath, []byte(`{"tables":[]}`), 0o644))
	_, _, err = run(t, "report", "--request", badPath)
	assert.Error(t, err)
}

func TestMergeOptions(t *testing.T) {
	yes, no := true, false
	level := 0.01
	dst := api.TableOptionsRequest{PercentFormat: ".0%", ShowMean: &yes}
	mergeOptions(&dst, api.TableOptionsRequest{MeanFormat: ".2f", ShowMean: &no, SignificanceLevel: &level})

	assert.Equal(t, ".0%", dst.PercentFormat)
	assert.Equal(t, ".2f", dst.MeanFormat)
	require.NotNil(t, dst.ShowMean)
	assert.False(t, *dst.ShowMean)
	assert.Equal(t, 0.01, *dst.SignificanceLevel)
	assert.Nil(t, dst.ShowTotals)
}
