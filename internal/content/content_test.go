package content

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>  A Sample Article  </title></head>
<body>
<nav>skip this nav text</nav>
<article>
  <p>Hello    world.</p>
  <p>Second paragraph.</p>
  <img src="/images/a.png" alt="cat" title="a cat" aria-describedby="desc1">
</article>
<footer>skip this footer text</footer>
</body>
</html>`

func TestFetchExtractsTitleBodyAndImages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	f := NewFetcher()
	page, err := f.Fetch(t.Context(), srv.URL+"/article")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if page.Title != "A Sample Article" {
		t.Errorf("expected trimmed title, got %q", page.Title)
	}
	if strings.Contains(page.Body, "skip this nav text") || strings.Contains(page.Body, "skip this footer text") {
		t.Errorf("expected nav/footer stripped, got body: %q", page.Body)
	}
	if !strings.Contains(page.Body, "Hello world.") {
		t.Errorf("expected whitespace-collapsed body text, got: %q", page.Body)
	}

	if len(page.Images) != 1 {
		t.Fatalf("expected one image, got %d", len(page.Images))
	}
	img := page.Images[0]
	if img.Alt != "cat" || img.Title != "a cat" || img.AriaDescribedBy != "desc1" {
		t.Errorf("unexpected image metadata: %+v", img)
	}
	if !strings.HasSuffix(img.ResolvedURL, "/images/a.png") || !strings.HasPrefix(img.ResolvedURL, srv.URL) {
		t.Errorf("expected image URL resolved against base, got %q", img.ResolvedURL)
	}
}

func TestFetchRejectsNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher()
	if _, err := f.Fetch(t.Context(), srv.URL); err == nil {
		t.Error("expected an error for a 404 response")
	}
}

func TestFetchRejectsEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>Empty</title></head><body><nav>only nav</nav></body></html>`))
	}))
	defer srv.Close()

	f := NewFetcher()
	if _, err := f.Fetch(t.Context(), srv.URL); err == nil {
		t.Error("expected an error when extracted body is empty")
	}
}
