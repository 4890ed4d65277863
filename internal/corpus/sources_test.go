package corpus

import (
	"compress/gzip"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVFileLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.csv")
	require.NoError(t, os.WriteFile(path, []byte("\ufeffjob_id,title,embedding\n7,카페,\"[1,2]\"\n8,편의점\n"), 0o644))

	table, err := CSVFile{Path: path}.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"job_id", "title", "embedding"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "7", table.Rows[0]["job_id"])
	_, hasEmbedding := table.Rows[1]["embedding"]
	assert.False(t, hasEmbedding, "short rows must leave missing cells unset")

	_, err = CSVFile{Path: filepath.Join(t.TempDir(), "missing.csv")}.Load(context.Background())
	assert.Error(t, err)
}

func TestSQLiteLoad(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "jobs.db")

	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	_, err = db.Exec(`
		CREATE TABLE postings (
			job_id INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			hourly_wage REAL,
			address TEXT,
			embedding TEXT
		)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO postings VALUES (1, '카페', 10030, '서울 마포구', '[1, 0]'), (2, '물류', NULL, '부산', NULL)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	c, err := Load(context.Background(), SQLite{DSN: dsn})
	require.NoError(t, err)

	require.Len(t, c.Postings, 2)
	assert.Equal(t, 2, c.Dim)
	assert.Equal(t, "1", c.Postings[0].ID)
	assert.Equal(t, 10030.0, c.Postings[0].HourlyWage)
	assert.Equal(t, "서울 마포구", c.Postings[0].Address)
	assert.Equal(t, []float32{0, 0}, c.Postings[1].Embedding)

	_, err = SQLite{DSN: dsn, Table: "postings; DROP TABLE postings"}.Load(context.Background())
	assert.ErrorContains(t, err, "invalid table name")
}

func TestHTTPLoadPaginates(t *testing.T) {
	var pages []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/jobs", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "2", r.URL.Query().Get("per_page"))

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		pages = append(pages, page)

		resp := ItemResponse{Page: page, PerPage: 2, Total: 3, HasMore: page == 1}
		if page == 1 {
			resp.Items = []map[string]any{
				{"job_id": 1, "title": "a", "embedding": []float64{1, 0}},
				{"job_id": 2, "title": "b"},
			}
		} else {
			resp.Items = []map[string]any{{"job_id": 3, "title": "c", "address": "서울"}}
		}

		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		defer gz.Close()
		json.NewEncoder(gz).Encode(resp)
	}))
	defer srv.Close()

	src := &HTTP{BaseURL: srv.URL + "/", Path: "/api/jobs", Token: "secret", PerPage: 2}
	c, err := Load(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, pages)
	require.Len(t, c.Postings, 3)
	assert.Equal(t, "3", c.Postings[2].ID)
	assert.Equal(t, "embedding", c.EmbeddingColumn)
	assert.Equal(t, 1, c.Parsed)
}

func TestHTTPLoadBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := (&HTTP{BaseURL: srv.URL}).Load(context.Background())
	assert.ErrorContains(t, err, "bad status")
}

func TestHTTPLoadStopsAtMaxPages(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		json.NewEncoder(w).Encode(ItemResponse{
			Items:   []map[string]any{{"job_id": calls}},
			HasMore: true,
		})
	}))
	defer srv.Close()

	table, err := (&HTTP{BaseURL: srv.URL, MaxPages: 3}).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Len(t, table.Rows, 3)
}
