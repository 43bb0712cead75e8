package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	gogh "github.com/google/go-github/v68/github"

	"rampup/model"
)

func fileContentJSON(name, path, content string) []byte {
	b, _ := json.Marshal(map[string]string{
		"type":     "file",
		"name":     name,
		"path":     path,
		"content":  base64.StdEncoding.EncodeToString([]byte(content)),
		"encoding": "base64",
	})
	return b
}

func newTestImporter(t *testing.T, mux *http.ServeMux) *Importer {
	t.Helper()
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	client := gogh.NewClient(nil)
	base, err := url.Parse(ts.URL + "/")
	if err != nil {
		t.Fatalf("parsing base url: %v", err)
	}
	client.BaseURL = base
	return &Importer{gh: client}
}

func TestImportDocs(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/widget/readme", func(w http.ResponseWriter, r *http.Request) {
		w.Write(fileContentJSON("README.md", "README.md", "# Widget\n\nGetting started."))
	})
	mux.HandleFunc("/repos/acme/widget/contents/docs", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"type": "file", "name": "setup.md", "path": "docs/setup.md"},
			{"type": "file", "name": "logo.png", "path": "docs/logo.png"},
			{"type": "dir", "name": "api", "path": "docs/api"}
		]`)
	})
	mux.HandleFunc("/repos/acme/widget/contents/docs/setup.md", func(w http.ResponseWriter, r *http.Request) {
		w.Write(fileContentJSON("setup.md", "docs/setup.md", "## Setup\n\nInstall the toolchain."))
	})

	im := newTestImporter(t, mux)
	docs, err := im.ImportDocs(context.Background(), 7, "acme/widget", "alice")
	if err != nil {
		t.Fatalf("ImportDocs: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}

	readme := docs[0]
	if readme.Title != "README.md" || readme.DocType != "md" {
		t.Errorf("readme = %q (%s), want README.md (md)", readme.Title, readme.DocType)
	}
	if readme.Content != "# Widget\n\nGetting started." {
		t.Errorf("readme content = %q", readme.Content)
	}

	setup := docs[1]
	if setup.Title != "setup.md" || setup.Content != "## Setup\n\nInstall the toolchain." {
		t.Errorf("setup doc = %q / %q", setup.Title, setup.Content)
	}

	for _, d := range docs {
		if d.ProjectID != 7 {
			t.Errorf("%s: project id = %d, want 7", d.Title, d.ProjectID)
		}
		if d.Status != model.DocStatusUploaded {
			t.Errorf("%s: status = %q, want %q", d.Title, d.Status, model.DocStatusUploaded)
		}
		if d.UploadedBy != "alice" {
			t.Errorf("%s: uploaded_by = %q, want alice", d.Title, d.UploadedBy)
		}
	}
}

func TestImportDocsReadmeOnly(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/bare/readme", func(w http.ResponseWriter, r *http.Request) {
		w.Write(fileContentJSON("README.md", "README.md", "just a readme"))
	})
	mux.HandleFunc("/repos/acme/bare/contents/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "Not Found"}`, http.StatusNotFound)
	})

	im := newTestImporter(t, mux)
	docs, err := im.ImportDocs(context.Background(), 1, "acme/bare", "bob")
	if err != nil {
		t.Fatalf("ImportDocs: %v", err)
	}
	if len(docs) != 1 || docs[0].Title != "README.md" {
		t.Fatalf("expected only the readme, got %d docs", len(docs))
	}
}

func TestImportDocsNothingFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "Not Found"}`, http.StatusNotFound)
	})

	im := newTestImporter(t, mux)
	if _, err := im.ImportDocs(context.Background(), 1, "acme/empty", "bob"); err == nil {
		t.Fatal("expected an error when neither readme nor docs/ exist")
	}
}

func TestImportDocsInvalidRepo(t *testing.T) {
	im := NewImporter("")
	for _, repo := range []string{"", "no-slash", "/repo", "owner/"} {
		if _, err := im.ImportDocs(context.Background(), 1, repo, "x"); err == nil {
			t.Errorf("repo %q: expected an error", repo)
		}
	}
}

func TestDocTypeFor(t *testing.T) {
	cases := map[string]string{
		"README.md":      "md",
		"notes.MARKDOWN": "md",
		"index.html":     "html",
		"page.htm":       "html",
		"CHANGELOG":      "txt",
		"guide.txt":      "txt",
	}
	for name, want := range cases {
		if got := docTypeFor(name); got != want {
			t.Errorf("docTypeFor(%q) = %q, want %q", name, got, want)
		}
	}
}
