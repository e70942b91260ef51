package wordpress

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestListPostsReadsPaginationHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wp-json/wp/v2/posts" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("page") != "2" || r.URL.Query().Get("per_page") != "10" {
			t.Errorf("Unexpected query %s", r.URL.RawQuery)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "editor" || pass != "app-pass" {
			t.Error("Expected basic auth credentials on the request")
		}
		w.Header().Set("X-WP-Total", "57")
		w.Header().Set("X-WP-TotalPages", "6")
		json.NewEncoder(w).Encode([]Post{{ID: 11, Title: Rendered{Rendered: "Primeiro"}}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "editor", "app-pass")
	posts, pagination, err := client.ListPosts(context.Background(), "posts", ListOptions{Page: 2, PerPage: 10})
	if err != nil {
		t.Fatalf("Expected listing to succeed, got %v", err)
	}
	if len(posts) != 1 || posts[0].Title.Rendered != "Primeiro" {
		t.Errorf("Unexpected posts %+v", posts)
	}
	if pagination.Total != 57 || pagination.TotalPages != 6 {
		t.Errorf("Expected pagination 57/6, got %+v", pagination)
	}
}

func TestCreatePostSendsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("Expected JSON body, got %v", err)
		}
		if payload["title"] != "Festival confirmado" || payload["status"] != "draft" {
			t.Errorf("Unexpected payload %v", payload)
		}
		if _, ok := payload["featured_media"]; ok {
			t.Error("Expected zero featured_media omitted")
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Post{ID: 99, Slug: "festival-confirmado"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "editor", "app-pass")
	post, err := client.CreatePost(context.Background(), "posts", NewPost{
		Title:   "Festival confirmado",
		Content: "<p>corpo</p>",
		Status:  "draft",
	})
	if err != nil {
		t.Fatalf("Expected creation to succeed, got %v", err)
	}
	if post.ID != 99 {
		t.Errorf("Expected created post ID 99, got %d", post.ID)
	}
}

func TestUploadMediaSetsContentDisposition(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wp-json/wp/v2/media" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Content-Disposition"); got != `attachment; filename="capa.jpg"` {
			t.Errorf("Unexpected Content-Disposition %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "image/jpeg" {
			t.Errorf("Unexpected Content-Type %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "fake-jpeg-bytes" {
			t.Error("Expected raw binary body")
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Media{ID: 7, SourceURL: "https://site/capa.jpg"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "editor", "app-pass")
	media, err := client.UploadMedia(context.Background(), "capa.jpg", "image/jpeg", strings.NewReader("fake-jpeg-bytes"))
	if err != nil {
		t.Fatalf("Expected upload to succeed, got %v", err)
	}
	if media.ID != 7 {
		t.Errorf("Expected media ID 7, got %d", media.ID)
	}
}

func TestNon2xxBecomesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"code": "rest_post_invalid_id", "message": "Post inválido."}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "editor", "app-pass")
	_, err := client.GetPost(context.Background(), "posts", 12345)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %v", err)
	}
	if apiErr.Status != http.StatusNotFound || apiErr.Code != "rest_post_invalid_id" {
		t.Errorf("Unexpected APIError %+v", apiErr)
	}
}

func TestEnsureTermPrefersExistingMatch(t *testing.T) {
	created := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			created++
			json.NewEncoder(w).Encode(Term{ID: 50, Name: "Nova"})
			return
		}
		json.NewEncoder(w).Encode([]Term{{ID: 3, Name: "Carnaval"}, {ID: 4, Name: "Frevo"}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "editor", "app-pass")
	term, err := client.EnsureTerm(context.Background(), "categories", "carnaval")
	if err != nil {
		t.Fatalf("Expected resolution to succeed, got %v", err)
	}
	if term.ID != 3 {
		t.Errorf("Expected case-insensitive match on existing term, got %+v", term)
	}
	if created != 0 {
		t.Errorf("Expected no creation for an existing term, got %d", created)
	}
}

func TestEnsureTermCreatesWhenMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			var payload map[string]string
			json.NewDecoder(r.Body).Decode(&payload)
			if payload["name"] != "maracatu" {
				t.Errorf("Unexpected term payload %v", payload)
			}
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(Term{ID: 61, Name: "maracatu"})
			return
		}
		json.NewEncoder(w).Encode([]Term{})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "editor", "app-pass")
	term, err := client.EnsureTerm(context.Background(), "tags", "maracatu")
	if err != nil {
		t.Fatalf("Expected creation to succeed, got %v", err)
	}
	if term.ID != 61 {
		t.Errorf("Expected created term, got %+v", term)
	}
}

func TestRefusedConnectionIsBlockedOrigin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // Nothing listens anymore: connection refused.

	client := NewClient(srv.URL, "editor", "app-pass")
	_, err := client.GetPost(context.Background(), "posts", 1)
	if !errors.Is(err, ErrBlockedOrigin) {
		t.Errorf("Expected ErrBlockedOrigin for refused connection, got %v", err)
	}
}
