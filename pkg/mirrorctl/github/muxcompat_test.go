package github

import (
	"net/http"
	"strings"
)

// testMux emulates the Go 1.22+ "METHOD /path" http.ServeMux patterns used by
// these tests so they run on the go1.21 toolchain. A pattern whose last
// segment is a "{wildcard}" matches exactly one extra path segment.
type testMux struct {
	routes map[string]map[string]http.HandlerFunc // path -> method -> handler
}

func newTestMux() *testMux {
	return &testMux{routes: map[string]map[string]http.HandlerFunc{}}
}

func (m *testMux) HandleFunc(pattern string, handler http.HandlerFunc) {
	method := ""
	path := pattern
	if i := strings.Index(pattern, " "); i >= 0 {
		method = pattern[:i]
		path = pattern[i+1:]
	}
	if m.routes[path] == nil {
		m.routes[path] = map[string]http.HandlerFunc{}
	}
	m.routes[path][method] = handler
}

func (m *testMux) match(reqPath string) map[string]http.HandlerFunc {
	if byMethod, ok := m.routes[reqPath]; ok {
		return byMethod
	}
	for path, byMethod := range m.routes {
		i := strings.LastIndex(path, "/")
		if i < 0 || !strings.HasPrefix(path[i+1:], "{") || !strings.HasSuffix(path, "}") {
			continue
		}
		prefix := path[:i+1]
		rest := strings.TrimPrefix(reqPath, prefix)
		if rest != reqPath && rest != "" && !strings.Contains(rest, "/") {
			return byMethod
		}
	}
	return nil
}

func (m *testMux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	byMethod := m.match(r.URL.Path)
	if byMethod == nil {
		http.NotFound(w, r)
		return
	}
	if h, ok := byMethod[r.Method]; ok {
		h(w, r)
		return
	}
	if h, ok := byMethod[""]; ok {
		h(w, r)
		return
	}
	w.WriteHeader(http.StatusMethodNotAllowed)
}
