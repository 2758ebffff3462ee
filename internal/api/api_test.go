package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/brogergvhs/lntracker/internal/library"
	"github.com/brogergvhs/lntracker/internal/providers"
	"github.com/brogergvhs/lntracker/internal/providers/sites"
	"github.com/brogergvhs/lntracker/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chapterHTML = `<a class="novel-title">My Novel</a><a class="chr-title">Chapter 12: The Duel</a>`

func testAPI(t *testing.T, origins ...string) (http.Handler, *library.Accessor) {
	t.Helper()

	mem := store.NewMemory()
	t.Cleanup(func() { mem.Close() })

	lib := library.NewAccessor(mem, nil)
	router := providers.NewRouter(sites.Default(providers.Deps{Library: lib}), nil)

	return New(Options{Library: lib, Router: router, AllowedOrigins: origins}), lib
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())

	return v
}

func visitBody(t *testing.T, rawURL, html string) string {
	t.Helper()

	b, err := json.Marshal(visitRequest{URL: rawURL, HTML: html})
	require.NoError(t, err)

	return string(b)
}

func TestVisit(t *testing.T) {
	h, lib := testAPI(t)
	chapterURL := "https://novelbin.com/b/my-novel/chapter-12"

	rec := do(t, h, http.MethodPost, "/visit", visitBody(t, chapterURL, chapterHTML))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, visitResponse{Site: "novelbin", Handled: true}, decode[visitResponse](t, rec))

	e, err := lib.Entry(context.Background(), "novelbin", "my-novel")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "The Duel", *e.ChapterTitle)

	t.Run("repeat is skipped", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/visit", visitBody(t, chapterURL, chapterHTML))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, visitResponse{Site: "novelbin", Repeated: true}, decode[visitResponse](t, rec))
	})

	t.Run("unknown host", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/visit", visitBody(t, "https://example.org/x", "<p></p>"))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, visitResponse{}, decode[visitResponse](t, rec))
	})

	t.Run("html required without fetcher", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/visit", visitBody(t, "https://novelbin.com/b/my-novel/chapter-13", ""))
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("retry after a failed load is tracked", func(t *testing.T) {
		retryURL := "https://novelbin.com/b/other-novel/chapter-3"

		rec := do(t, h, http.MethodPost, "/visit", visitBody(t, retryURL, ""))
		require.Equal(t, http.StatusBadGateway, rec.Code)

		rec = do(t, h, http.MethodPost, "/visit", visitBody(t, retryURL, chapterHTML))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, visitResponse{Site: "novelbin", Handled: true}, decode[visitResponse](t, rec))

		e, err := lib.Entry(context.Background(), "novelbin", "other-novel")
		require.NoError(t, err)
		require.NotNil(t, e)
		assert.Equal(t, "12", *e.ChapterLabel)
	})

	t.Run("bad requests", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/visit", "{").Code)
		assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/visit", `{"url":"/relative"}`).Code)
	})
}

func TestLibraryRoutes(t *testing.T) {
	h, lib := testAPI(t)
	ctx := context.Background()

	for _, rec := range []library.Record{
		{Source: "novelbin", NovelKey: "a", NovelName: library.Str("Alpha"), Link: "https://novelbin.com/b/a/chapter-1"},
		{Source: "ranobes", NovelKey: "1", NovelName: library.Str("Beta"), Link: "https://ranobes.top/b-1/2.html"},
	} {
		_, err := lib.Upsert(ctx, rec)
		require.NoError(t, err)
	}

	t.Run("list", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/library?sort=title_desc", "")
		require.Equal(t, http.StatusOK, rec.Code)

		entries := decode[[]library.Entry](t, rec)
		require.Len(t, entries, 2)
		assert.Equal(t, "ranobes:1", entries[0].ID)

		rec = do(t, h, http.MethodGet, "/library?q=alpha", "")
		assert.Len(t, decode[[]library.Entry](t, rec), 1)

		assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/library?sort=random", "").Code)
	})

	t.Run("status", func(t *testing.T) {
		rec := do(t, h, http.MethodPut, "/library/novelbin:a/status", `{"status":"completed"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, string(library.Finished), decode[library.Entry](t, rec).Status)

		rec = do(t, h, http.MethodPut, "/library/novelbin:zzz/status", `{"status":"dropped"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = do(t, h, http.MethodPut, "/library/novelbin:a/status", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("counts", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/library/counts", "")
		require.Equal(t, http.StatusOK, rec.Code)

		counts := decode[map[string]int](t, rec)
		assert.Equal(t, 2, counts["all"])
		assert.Equal(t, 1, counts["finished"])
		assert.Equal(t, 1, counts["reading"])
	})

	t.Run("delete", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/library/ranobes%3A1", "").Code)
		assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, "/library/ranobes:1", "").Code)
	})
}

func TestExportImport(t *testing.T) {
	h, lib := testAPI(t)
	ctx := context.Background()

	_, err := lib.Upsert(ctx, library.Record{Source: "novelbin", NovelKey: "a", Link: "x"})
	require.NoError(t, err)

	rec := do(t, h, http.MethodGet, "/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "lnTracker-export-")
	exported := rec.Body.String()

	other, _ := testAPI(t)

	rec = do(t, other, http.MethodPost, "/import", exported)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, importResponse{Mode: library.MergeMode, Entries: 1}, decode[importResponse](t, rec))

	rec = do(t, other, http.MethodPost, "/import?mode=replace", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, importResponse{Mode: library.ReplaceMode, Entries: 0}, decode[importResponse](t, rec))

	rec = do(t, other, http.MethodPost, "/import", `{"app":"else","version":1,"data":{}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["error"], "not recognized")

	assert.Equal(t, http.StatusBadRequest, do(t, other, http.MethodPost, "/import?mode=append", `{}`).Code)
}

func TestCORS(t *testing.T) {
	h, _ := testAPI(t, "https://novelbin.com")

	req := httptest.NewRequest(http.MethodGet, "/library/counts", nil)
	req.Header.Set("Origin", "https://novelbin.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://novelbin.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
