package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const homepage = `<html><body>
<ul class="emojis">
  <li><a href="/emojis/1739-royals/download">royals</a></li>
  <li><a href="/emojis/204-party_parrot/download">party parrot</a></li>
  <li><a href="/emojis/1739-royals/download">royals again</a></li>
</ul>
<a href="/categories/19-random-emojis">Random</a>
</body></html>`

const categoryPage = `<html><body>
<li><a href="/emojis/99-doge/download">doge</a></li>
<li><a href="/emojis/204-party_parrot/download">party parrot</a></li>
</body></html>`

func TestEmojis(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			fmt.Fprint(w, homepage)
		case "/categories/19-random-emojis":
			fmt.Fprint(w, categoryPage)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, srv.Client(), true)
	got, err := c.Emojis(context.Background())
	if err != nil {
		t.Fatalf("Emojis() error = %v", err)
	}

	want := []Emoji{
		{Name: "royals", SourceURL: srv.URL + "/emojis/1739-royals/download", LocalID: "1739"},
		{Name: "party_parrot", SourceURL: srv.URL + "/emojis/204-party_parrot/download", LocalID: "204"},
		{Name: "doge", SourceURL: srv.URL + "/emojis/99-doge/download", LocalID: "99"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Emojis() mismatch (-want +got):\n%s", diff)
	}
}

func TestEmojis_CategoryFailureIsSkipped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			fmt.Fprint(w, homepage)
			return
		}
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, srv.Client(), true)
	got, err := c.Emojis(context.Background())
	if err != nil {
		t.Fatalf("Emojis() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len(Emojis()) = %d, want the 2 homepage emojis", len(got))
	}
}

func TestEmojis_HomepageFailureIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(srv.URL, srv.Client(), true)
	_, err := c.Emojis(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Emojis() error = %v, want ErrUnavailable", err)
	}
}

func TestEmojis_NoLinksIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>new layout, no downloads here</body></html>")
	}))
	defer srv.Close()

	c := New(srv.URL, srv.Client(), false)
	_, err := c.Emojis(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Emojis() error = %v, want ErrUnavailable", err)
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"royals", "royals"},
		{"Party Parrot", "party_parrot"},
		{"party_parrot", "party_parrot"},
		{"-dashes-", "dashes"},
		{"c++", "c++"},
		{"naïve", "na_ve"},
		{"éclair!", "clair"},
		{"%%%", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitize_Deterministic(t *testing.T) {
	in := "Some Wild! Name"
	first := Sanitize(in)
	for i := 0; i < 10; i++ {
		if got := Sanitize(in); got != first {
			t.Fatalf("Sanitize(%q) = %q, differs from earlier %q", in, got, first)
		}
	}
}
