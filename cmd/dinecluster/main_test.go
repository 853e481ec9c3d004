package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/goccy/go-json"
	"github.com/hupe1980/dinecluster/blobstore"
	"github.com/hupe1980/dinecluster/internal/config"
	"github.com/hupe1980/dinecluster/query"
	"github.com/hupe1980/dinecluster/table"
	"github.com/hupe1980/dinecluster/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeDataset writes a synthetic canonical and feature file pair into a
// temporary directory and points the configuration at it.
func writeDataset(t *testing.T) table.CanonicalTable {
	t.Helper()
	dir := t.TempDir()
	canonical, features := testutil.Dataset(11, 60, 3)

	writeCSV(t, filepath.Join(dir, "zomato.csv"), func(w *csv.Writer) {
		require.NoError(t, w.Write([]string{"name", "city", "cuisine", "rating", "rating_count", "cost"}))
		for _, r := range canonical {
			require.NoError(t, w.Write([]string{
				r.Name, r.City, r.Cuisine,
				strconv.FormatFloat(r.Rating, 'f', -1, 64),
				strconv.FormatInt(r.RatingCount, 10),
				strconv.FormatFloat(r.Cost, 'f', -1, 64),
			}))
		}
	})

	writeCSV(t, filepath.Join(dir, "clustering.csv"), func(w *csv.Writer) {
		header := []string{"name"}
		for _, c := range features.Columns {
			header = append(header, c.Name)
		}
		require.NoError(t, w.Write(header))
		for i, name := range features.Names {
			row := []string{name}
			for _, c := range features.Columns {
				row = append(row, strconv.FormatFloat(c.Numeric[i], 'g', -1, 64))
			}
			require.NoError(t, w.Write(row))
		}
	})

	t.Setenv("DINECLUSTER_DATA__ROOT", dir)
	t.Setenv("DINECLUSTER_LOGGING__LEVEL", "disabled")
	t.Setenv("DINECLUSTER_CLUSTER__K", "3")
	return canonical
}

func writeCSV(t *testing.T, path string, fill func(*csv.Writer)) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := csv.NewWriter(f)
	fill(w)
	w.Flush()
	require.NoError(t, w.Error())
}

func runCmd(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunUsage(t *testing.T) {
	code, _, stderr := runCmd(t)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "usage: dinecluster")

	code, _, _ = runCmd(t, "help")
	assert.Equal(t, 0, code)

	code, _, stderr = runCmd(t, "bogus")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, `unknown command "bogus"`)
}

func TestTopJSON(t *testing.T) {
	canonical := writeDataset(t)
	city := canonical[0].City

	code, stdout, stderr := runCmd(t, "top", "-city", city, "-n", "3", "-output", "json")
	require.Equal(t, 0, code, stderr)

	var res query.TopResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &res))
	require.NotEmpty(t, res.Rows)
	assert.LessOrEqual(t, len(res.Rows), 3)
	for i, r := range res.Rows {
		assert.Equal(t, city, r.City)
		if i > 0 {
			assert.GreaterOrEqual(t, res.Rows[i-1].Rating, r.Rating)
		}
	}
	assert.Equal(t, len(res.Rows), res.Cuisine.Total())
}

func TestTopText(t *testing.T) {
	canonical := writeDataset(t)

	code, stdout, stderr := runCmd(t, "top", "-city", canonical[0].City)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "NAME")
	assert.Contains(t, stdout, "CUISINE")
	assert.Contains(t, stdout, "CLUSTER")

	code, stdout, _ = runCmd(t, "top", "-city", "Atlantis")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, `no restaurants in "Atlantis"`)
}

func TestTopArguments(t *testing.T) {
	writeDataset(t)

	code, _, stderr := runCmd(t, "top")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "-city is required")

	code, _, stderr = runCmd(t, "top", "-city", "Pune", "-n", "0")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "-n must be in")

	code, _, _ = runCmd(t, "top", "-city", "Pune", "-output", "yaml")
	assert.Equal(t, 2, code)

	code, _, _ = runCmd(t, "top", "-nope")
	assert.Equal(t, 2, code)

	code, _, _ = runCmd(t, "top", "-h")
	assert.Equal(t, 0, code)
}

func TestFilterJSON(t *testing.T) {
	canonical := writeDataset(t)
	city := canonical[0].City

	code, stdout, stderr := runCmd(t, "filter", "-city", city, "-rating-min", "3.5", "-output", "json")
	require.Equal(t, 0, code, stderr)

	var rows table.JoinedTable
	require.NoError(t, json.Unmarshal([]byte(stdout), &rows))
	for _, r := range rows {
		assert.Equal(t, city, r.City)
		assert.GreaterOrEqual(t, r.Rating, 3.5)
	}
}

func TestFilterNoMatch(t *testing.T) {
	writeDataset(t)

	code, stdout, _ := runCmd(t, "filter", "-city", "Atlantis")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "no matching restaurants")
}

func TestClusters(t *testing.T) {
	writeDataset(t)

	code, stdout, stderr := runCmd(t, "clusters", "-output", "json", "-seed", "7")
	require.Equal(t, 0, code, stderr)

	var got struct {
		Params struct {
			K    int    `json:"k"`
			Seed uint64 `json:"seed"`
		} `json:"params"`
		Model struct {
			Columns []string `json:"columns"`
			Sizes   []int    `json:"sizes"`
		} `json:"model"`
		Join struct {
			Rows int `json:"rows"`
		} `json:"join"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, 3, got.Params.K)
	assert.Equal(t, uint64(7), got.Params.Seed)
	assert.Equal(t, []string{"feature1", "feature2"}, got.Model.Columns)
	assert.Len(t, got.Model.Sizes, 3)
	assert.Equal(t, 60, got.Join.Rows)

	code, stdout, stderr = runCmd(t, "clusters", "-k", "2")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "k           2")
	assert.Contains(t, stdout, "FEATURE1")
}

func TestMissingDataset(t *testing.T) {
	writeDataset(t)
	t.Setenv("DINECLUSTER_DATA__CANONICAL", "missing.csv")

	code, _, stderr := runCmd(t, "clusters")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "missing.csv")
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	s, err := openStore(ctx, config.DataConfig{Source: "local", Root: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &blobstore.LocalStore{}, s)

	s, err = openStore(ctx, config.DataConfig{
		Source:    "minio",
		Endpoint:  "localhost:9000",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Bucket:    "data",
	})
	require.NoError(t, err)
	assert.IsType(t, &blobstore.BreakerStore{}, s)

	_, err = openStore(ctx, config.DataConfig{Source: "ftp"})
	assert.Error(t, err)
}

func TestRecommenderOptions(t *testing.T) {
	cfg := config.Default()
	assert.Len(t, recommenderOptions(cfg), 8)
	assert.NotNil(t, newCache(cfg))

	cfg.Cluster.Degenerate = "fail"
	cfg.Join.Policy = "strict"
	cfg.Cluster.Exclude = []string{"feature3"}
	assert.Len(t, recommenderOptions(cfg), 11)

	cfg.Cache.Entries = 0
	assert.Nil(t, newCache(cfg))
}
