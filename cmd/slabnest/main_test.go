package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/SlabNest/internal/model"
	"github.com/piwi3910/SlabNest/internal/project"
)

const testRequest = `{
  "parts": [
    {"id":"v1","name":"Vanity","width":1200,"height":600,"allowRotation":true},
    {"id":"t1","name":"Table","width":900,"height":900,"shapeType":"circle","shapeData":{"radius":450}},
    {"id":"big","name":"Island","width":5000,"height":1000}
  ],
  "slabs": [{"id":"s1","name":"Carrara","width":3000,"height":1400}],
  "kerfWidth": 3
}`

func setupEnv(t *testing.T) string {
	t.Helper()
	t.Setenv("APP_ENV", "")
	t.Setenv("LOGGER_LEVEL", "error")
	return t.TempDir()
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRun_Usage(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), nil, &stdout, &stderr)
	assert.ErrorIs(t, err, errUsage)
	assert.Contains(t, stderr.String(), "optimize")

	stderr.Reset()
	err = run(context.Background(), []string{"cut"}, &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown command "cut"`)
	assert.Contains(t, stderr.String(), "usage: slabnest")
}

func TestOptimize_RequiresInput(t *testing.T) {
	setupEnv(t)
	var stdout bytes.Buffer
	assert.ErrorIs(t, runOptimize(context.Background(), nil, &stdout), errUsage)
}

func TestOptimize_PrintsResult(t *testing.T) {
	dir := setupEnv(t)
	in := filepath.Join(dir, "request.json")
	writeFile(t, in, testRequest)

	var stdout bytes.Buffer
	require.NoError(t, runOptimize(context.Background(), []string{"-in", in}, &stdout))

	var result model.NestingResult
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &result))
	assert.Len(t, result.Placements, 2)
	assert.Equal(t, []string{"big"}, result.UnplacedParts)
}

func TestOptimize_WritesExportsProjectAndOffcuts(t *testing.T) {
	dir := setupEnv(t)
	in := filepath.Join(dir, "request.json")
	writeFile(t, in, testRequest)

	out := filepath.Join(dir, "result.json")
	pdf := filepath.Join(dir, "layout.pdf")
	labels := filepath.Join(dir, "labels.pdf")
	xlsx := filepath.Join(dir, "cutlist.xlsx")
	proj := filepath.Join(dir, "kitchen"+project.FileExtension)
	inv := filepath.Join(dir, "inventory.json")
	cfg := filepath.Join(dir, "config.json")

	var stdout bytes.Buffer
	err := runOptimize(context.Background(), []string{
		"-in", in, "-out", out, "-pdf", pdf, "-labels", labels, "-xlsx", xlsx,
		"-project", proj, "-offcuts-to", inv, "-config", cfg,
	}, &stdout)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Placed 2 of 3 parts on 1 slab(s)")

	for _, path := range []string{out, pdf, labels, xlsx} {
		info, err := os.Stat(path)
		require.NoError(t, err, path)
		assert.Positive(t, info.Size(), path)
	}

	saved, err := project.LoadProject(proj)
	require.NoError(t, err)
	assert.Equal(t, "request", saved.Name)
	require.NotNil(t, saved.Result)
	assert.Len(t, saved.Result.Placements, 2)
	assert.InDelta(t, 3.0, saved.Settings.KerfWidth, 1e-9)

	prefs, err := project.LoadAppConfig(cfg)
	require.NoError(t, err)
	require.Len(t, prefs.RecentProjects, 1)
	assert.Equal(t, proj, prefs.RecentProjects[0])

	stock, err := project.LoadInventory(inv)
	require.NoError(t, err)
	assert.Greater(t, len(stock.Slabs), len(model.DefaultInventory().Slabs))

	// A saved project is accepted as input too.
	stdout.Reset()
	require.NoError(t, runOptimize(context.Background(), []string{"-in", proj}, &stdout))
	assert.Contains(t, stdout.String(), `"unplacedParts"`)
}

func TestOptimize_MissingKerf(t *testing.T) {
	dir := setupEnv(t)
	in := filepath.Join(dir, "request.json")
	writeFile(t, in, `{"parts":[],"slabs":[]}`)

	var stdout bytes.Buffer
	err := runOptimize(context.Background(), []string{"-in", in}, &stdout)
	assert.ErrorIs(t, err, model.ErrInvalidRequest)
}

func TestCompare_PrintsScenarios(t *testing.T) {
	dir := setupEnv(t)
	in := filepath.Join(dir, "request.json")
	writeFile(t, in, testRequest)

	var stdout bytes.Buffer
	require.NoError(t, runCompare(context.Background(), []string{"-in", in}, &stdout))
	assert.Contains(t, stdout.String(), "SCENARIO")
	assert.Contains(t, stdout.String(), "WASTE")
}

func TestImport_BuildsRequest(t *testing.T) {
	dir := setupEnv(t)
	parts := filepath.Join(dir, "parts.csv")
	writeFile(t, parts, "Name,Width,Height,Qty\nSill,900,150,3\nSplash,1200,100,1\n")

	var stdout bytes.Buffer
	err := runImport(context.Background(), []string{
		"-parts", parts, "-slab", "3200x1600", "-n", "2", "-rotate",
		"-config", filepath.Join(dir, "config.json"),
	}, &stdout)
	require.NoError(t, err)

	var req model.NestingRequest
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &req))
	assert.Len(t, req.Parts, 4)
	assert.Len(t, req.Slabs, 2)
	require.NotNil(t, req.KerfWidth)
	assert.InDelta(t, model.DefaultAppConfig().DefaultKerfWidth, *req.KerfWidth, 1e-9)
	for _, p := range req.Parts {
		assert.True(t, p.AllowRotation, p.Name)
	}
}

func TestImport_SlabsFromInventory(t *testing.T) {
	dir := setupEnv(t)
	parts := filepath.Join(dir, "parts.csv")
	writeFile(t, parts, "Name,Width,Height\nVanity,1200,600\n")
	out := filepath.Join(dir, "request.json")

	var stdout bytes.Buffer
	err := runImport(context.Background(), []string{
		"-parts", parts, "-inventory", filepath.Join(dir, "inventory.json"),
		"-stone", "granite", "-kerf", "4", "-out", out,
	}, &stdout)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Imported 1 parts")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var req model.NestingRequest
	require.NoError(t, json.Unmarshal(data, &req))
	assert.NotEmpty(t, req.Slabs)
	assert.InDelta(t, 4.0, *req.KerfWidth, 1e-9)
}

func TestImport_NoSlabs(t *testing.T) {
	dir := setupEnv(t)
	parts := filepath.Join(dir, "parts.csv")
	writeFile(t, parts, "Name,Width,Height\nVanity,1200,600\n")

	var stdout bytes.Buffer
	err := runImport(context.Background(), []string{"-parts", parts, "-kerf", "3"}, &stdout)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no slabs")
}

func TestEstimate_FromRequest(t *testing.T) {
	dir := setupEnv(t)
	in := filepath.Join(dir, "request.json")
	writeFile(t, in, testRequest)

	var stdout bytes.Buffer
	require.NoError(t, runEstimate(context.Background(), []string{"-in", in, "-price", "850"}, &stdout))
	out := stdout.String()
	assert.Contains(t, out, "3000 x 1400 mm")
	assert.Contains(t, out, "Estimated cost")
	assert.Contains(t, out, "big")
}

func TestInventory_ListImportBackup(t *testing.T) {
	dir := setupEnv(t)
	path := filepath.Join(dir, "inventory.json")

	extra := model.Inventory{Slabs: []model.StockSlab{
		model.NewStockSlab("ON-1", "onyx", "Honey Onyx", 2800, 1500, 20, 1),
	}}
	extraPath := filepath.Join(dir, "extra.json")
	data, err := json.Marshal(extra)
	require.NoError(t, err)
	writeFile(t, extraPath, string(data))

	backup := filepath.Join(dir, "backup.json")
	var stdout bytes.Buffer
	err = runInventory(context.Background(), []string{
		"-path", path, "-import", extraPath, "-backup", backup,
		"-config", filepath.Join(dir, "config.json"),
	}, &stdout)
	require.NoError(t, err)

	out := stdout.String()
	assert.Contains(t, out, "Imported 1 slab(s)")
	assert.Contains(t, out, "Honey Onyx")
	assert.Contains(t, out, "Backup written to")

	restored, err := project.ImportAllData(backup)
	require.NoError(t, err)
	assert.Len(t, restored.Inventory.Slabs, len(model.DefaultInventory().Slabs)+1)

	stdout.Reset()
	require.NoError(t, runInventory(context.Background(), []string{"-path", path, "-stone", "onyx"}, &stdout))
	assert.Contains(t, stdout.String(), "ON-1")
	assert.NotContains(t, stdout.String(), "granite")
}

func TestParseSize(t *testing.T) {
	w, h, err := parseSize(" 3200X1600 ")
	require.NoError(t, err)
	assert.Equal(t, 3200.0, w)
	assert.Equal(t, 1600.0, h)

	for _, bad := range []string{"3200", "x1600", "0x100", "axb"} {
		_, _, err := parseSize(bad)
		assert.Error(t, err, bad)
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"granite", "marble"}, splitList(" granite, ,marble"))
	assert.Nil(t, splitList(""))
}
