package rubeview

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"
)

// maxSceneSize bounds how much of a response body is read.
const maxSceneSize = 64 << 20

// SceneSource fetches scene documents by name.
type SceneSource interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// validSceneName rejects names that would escape the scenes directory.
func validSceneName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("invalid scene name %q", name)
	}
	return nil
}

// HTTPSource fetches <BaseURL>/scenes/<name>.json.
type HTTPSource struct {
	BaseURL string
	// Client defaults to http.DefaultClient.
	Client *http.Client
}

// NewHTTPSource creates a source rooted at baseURL.
func NewHTTPSource(baseURL string) *HTTPSource {
	return &HTTPSource{BaseURL: baseURL}
}

func (s *HTTPSource) client() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return http.DefaultClient
}

// SceneURL returns the document URL for name.
func (s *HTTPSource) SceneURL(name string) string {
	return strings.TrimSuffix(s.BaseURL, "/") + "/scenes/" + url.PathEscape(name) + ".json"
}

// Fetch implements SceneSource. Any non-2xx status is an error.
func (s *HTTPSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := validSceneName(name); err != nil {
		return nil, err
	}
	u := s.SceneURL(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", u, err)
	}
	resp, err := s.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", u, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: %s", u, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSceneSize))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", u, err)
	}
	return data, nil
}

// List asks a SceneServer at BaseURL for its scene names.
func (s *HTTPSource) List(ctx context.Context) ([]string, error) {
	u := strings.TrimSuffix(s.BaseURL, "/") + "/scenes/"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	resp, err := s.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("list scenes: %s", resp.Status)
	}
	var names []string
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxSceneSize)).Decode(&names); err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	return names, nil
}

// FSSource reads <Dir>/<name>.json from a file system, typically the
// embedded scenes bundle or os.DirFS.
type FSSource struct {
	FS  fs.FS
	Dir string
}

// NewFSSource creates a source reading dir inside fsys. Use "." for the
// root.
func NewFSSource(fsys fs.FS, dir string) *FSSource {
	return &FSSource{FS: fsys, Dir: dir}
}

// Fetch implements SceneSource.
func (s *FSSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validSceneName(name); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(s.FS, path.Join(s.Dir, name+".json"))
	if err != nil {
		return nil, fmt.Errorf("read scene %q: %w", name, err)
	}
	return data, nil
}

// List returns the names of every .json file in Dir, sorted.
func (s *FSSource) List() ([]string, error) {
	return listScenes(s.FS, s.Dir)
}

func listScenes(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".json" {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}
