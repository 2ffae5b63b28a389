package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	fsrepo "PartsKeeper/internal/cli/repo/fs"
)

func TestPostJSON_SendsToken_And_ParsesBody(t *testing.T) {
	// test server проверяет cookie и JSON
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c := r.Header.Get("Cookie"); !strings.Contains(c, "auth_token=tok123") {
			t.Errorf("Cookie header missing token, got: %q", c)
		}
		var m map[string]any
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			t.Errorf("bad json: %v", err)
		}
		if m["x"] != float64(1) { // JSON number → float64
			t.Errorf("unexpected payload: %#v", m)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()

	resp, body, err := PostJSON(ts.URL+"/api", map[string]any{"x": 1}, "tok123")
	if err != nil {
		t.Fatalf("PostJSON err: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	if strings.TrimSpace(string(body)) != `{"ok":true}` {
		t.Fatalf("body: %s", string(body))
	}
}

func TestPostJSON_JSONMarshalError(t *testing.T) {
	// chan в payload вызовет ошибку json.Marshal
	_, _, err := PostJSON("http://example.invalid", map[string]any{"c": make(chan int)}, "")
	if err == nil {
		t.Fatalf("expected marshal error")
	}
}

func TestDo_HeadersAndNoBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method: %s", r.Method)
		}
		if r.Header.Get("If-Match") != `"abc"` {
			t.Errorf("If-Match: %q", r.Header.Get("If-Match"))
		}
		if r.Header.Get("Content-Type") != "" {
			t.Errorf("no Content-Type expected without payload")
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	resp, _, err := Do(context.Background(), http.MethodDelete, ts.URL+"/api/parts/0", nil, "tok", http.Header{"If-Match": {`"abc"`}})
	if err != nil {
		t.Fatalf("Do err: %v", err)
	}
	if err := Expect(resp, nil, http.StatusNoContent); err != nil {
		t.Fatalf("Expect: %v", err)
	}
}

func TestExpect_StatusError(t *testing.T) {
	err := Expect(&http.Response{StatusCode: http.StatusConflict}, []byte("row changed\n"), http.StatusOK)
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if se.Code != http.StatusConflict || se.Body != "row changed" {
		t.Fatalf("unexpected status error: %+v", se)
	}
}

func TestPersistAuthFromResponse_SaveAndNoCookie(t *testing.T) {
	store := fsrepo.AuthFSStore{TokenFile: filepath.Join(t.TempDir(), "token")}
	// success: есть Set-Cookie с auth_token
	{
		resp := &http.Response{Header: http.Header{}}
		// Добавим Set-Cookie вручную (http.SetCookie ожидает ResponseWriter)
		resp.Header.Add("Set-Cookie", (&http.Cookie{Name: "auth_token", Value: "tok-abc"}).String())
		if err := PersistAuthFromResponse(resp, store); err != nil {
			t.Fatalf("persist: %v", err)
		}
		tok, err := store.Load()
		if err != nil || tok != "tok-abc" {
			t.Fatalf("token not saved, got %q err=%v", tok, err)
		}
	}
	// error: нет cookie
	{
		resp := &http.Response{Header: http.Header{}}
		if err := PersistAuthFromResponse(resp, store); err == nil {
			t.Fatalf("expected error when no auth cookie")
		}
	}
}
