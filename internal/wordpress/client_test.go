package wordpress

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nokel/shopify-migration-tool/internal/retry"
)

func testRetry() *retry.Config {
	return &retry.Config{MaxRetries: 2, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, BackoffFactor: 2}
}

func testClient(srv *httptest.Server) *Client {
	return New(Config{
		BaseURL:  srv.URL,
		Username: "admin",
		Password: "abcd efgh ijkl mnop",
		Retry:    testRetry(),
	})
}

func TestAppPasswordSpacesStripped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, pass, _ := r.BasicAuth()
		if pass != "abcdefghijklmnop" {
			t.Errorf("expected stripped app password, got %q", pass)
		}
		fmt.Fprint(w, `{"id":1,"name":"Admin"}`)
	}))
	defer srv.Close()

	if err := testClient(srv).TestConnection(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGetExistingPagesIncludesAllStatuses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wp-json/wp/v2/pages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("status") != "publish,draft,pending,private" {
			t.Errorf("expected all statuses, got %q", r.URL.Query().Get("status"))
		}
		fmt.Fprint(w, `[{"id":1,"title":{"rendered":"About Us"},"slug":"about-us","status":"draft"}]`)
	}))
	defer srv.Close()

	pages, err := testClient(srv).GetExistingPages(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 1 || pages[0].Title.Rendered != "About Us" {
		t.Fatalf("pages not decoded: %+v", pages)
	}
}

func TestCreatePage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/wp-json/wp/v2/pages" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		if payload["title"] != "About Us" || payload["status"] != "publish" {
			t.Errorf("payload not transmitted: %v", payload)
		}
		fmt.Fprint(w, `{"id":7,"title":{"rendered":"About Us"},"slug":"about-us","status":"publish"}`)
	}))
	defer srv.Close()

	page, err := testClient(srv).CreatePage(context.Background(), &NewPage{
		Title: "About Us", Content: "<p>Hi</p>", Slug: "about-us", Status: "publish",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.ID != 7 {
		t.Fatalf("response not decoded: %+v", page)
	}
}

func TestCreatePostCarriesDate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		if payload["date"] != "2023-05-01T10:00:00Z" {
			t.Errorf("publish date lost: %v", payload)
		}
		fmt.Fprint(w, `{"id":8,"title":{"rendered":"News"},"slug":"news"}`)
	}))
	defer srv.Close()

	_, err := testClient(srv).CreatePost(context.Background(), &NewPost{
		Title: "News", Content: "x", Status: "publish", Date: "2023-05-01T10:00:00Z",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSearchMedia(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("search") != "Wool_Beanie" || q.Get("orderby") != "date" || q.Get("order") != "desc" {
			t.Errorf("unexpected query %v", q)
		}
		fmt.Fprint(w, `[{"id":30,"source_url":"https://site/wp-content/uploads/Wool_Beanie_0.jpg","media_details":{"file":"2023/05/Wool_Beanie_0.jpg"}}]`)
	}))
	defer srv.Close()

	items, err := testClient(srv).SearchMedia(context.Background(), "Wool_Beanie")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].MediaDetails.File != "2023/05/Wool_Beanie_0.jpg" {
		t.Fatalf("media not decoded: %+v", items)
	}
}

func TestUploadMedia(t *testing.T) {
	var altUpdated bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/wp-json/wp/v2/media":
			if cd := r.Header.Get("Content-Disposition"); cd != `attachment; filename="beanie_0.jpg"` {
				t.Errorf("unexpected content disposition %q", cd)
			}
			if ct := r.Header.Get("Content-Type"); ct != "image/jpeg" {
				t.Errorf("unexpected content type %q", ct)
			}
			data, _ := io.ReadAll(r.Body)
			if string(data) != "fakejpegbytes" {
				t.Errorf("body not transmitted")
			}
			fmt.Fprint(w, `{"id":55,"source_url":"https://site/beanie_0.jpg"}`)
		case r.Method == http.MethodPost && r.URL.Path == "/wp-json/wp/v2/media/55":
			var update map[string]string
			_ = json.NewDecoder(r.Body).Decode(&update)
			if update["alt_text"] != "Beanie" {
				t.Errorf("alt text not applied: %v", update)
			}
			altUpdated = true
			fmt.Fprint(w, `{"id":55}`)
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	media, err := testClient(srv).UploadMedia(context.Background(), "beanie_0.jpg", "image/jpeg", []byte("fakejpegbytes"), "Beanie", "Beanie")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if media.ID != 55 {
		t.Fatalf("upload response not decoded: %+v", media)
	}
	if !altUpdated {
		t.Fatalf("alt text update not sent")
	}
}

func TestUploadMediaAltFailureIsNotFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/wp-json/wp/v2/media" {
			fmt.Fprint(w, `{"id":56,"source_url":"https://site/x.jpg"}`)
			return
		}
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	media, err := testClient(srv).UploadMedia(context.Background(), "x.jpg", "image/jpeg", []byte("data"), "alt", "")
	if err != nil {
		t.Fatalf("alt update failure must not fail the upload: %v", err)
	}
	if media.ID != 56 {
		t.Fatalf("upload response not decoded: %+v", media)
	}
}
