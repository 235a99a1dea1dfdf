package telemetry

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-sensor/internal/settings"
)

// fakeInflux records requests and answers with configurable behaviour.
type fakeInflux struct {
	mu          sync.Mutex
	writeStatus int
	databases   []string
	writes      []*recordedRequest
	queries     []string
}

type recordedRequest struct {
	path        string
	db          string
	body        string
	contentType string
	auth        []string
}

func (f *fakeInflux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	body, _ := io.ReadAll(r.Body)

	switch r.URL.Path {
	case "/write", "/influx/write":
		f.writes = append(f.writes, &recordedRequest{
			path:        r.URL.Path,
			db:          r.URL.Query().Get("db"),
			body:        string(body),
			contentType: r.Header.Get("Content-Type"),
			auth:        r.Header.Values("Authorization"),
		})
		w.WriteHeader(f.writeStatus)

	case "/query":
		form, _ := url.ParseQuery(string(body))
		q := form.Get("q")
		f.queries = append(f.queries, q)
		w.Header().Set("Content-Type", "application/json")
		if q == "SHOW DATABASES" {
			values := ""
			for i, db := range f.databases {
				if i > 0 {
					values += ","
				}
				values += `["` + db + `"]`
			}
			io.WriteString(w, `{"results":[{"statement_id":0,"series":[{"name":"databases","columns":["name"],"values":[`+values+`]}]}]}`) //nolint:errcheck
			return
		}
		io.WriteString(w, `{"results":[{"statement_id":0}]}`) //nolint:errcheck

	default:
		http.NotFound(w, r)
	}
}

func (f *fakeInflux) creates() int {
	n := 0
	for _, q := range f.queries {
		if len(q) > 6 && q[:6] == "CREATE" {
			n++
		}
	}
	return n
}

// newTestClient starts a fake server and points a client at it.
func newTestClient(t *testing.T, f *fakeInflux, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	host, portStr, _ := net.SplitHostPort(u.Host)
	port, _ := strconv.Atoi(portStr)

	return NewClient(settings.ConnectionConfig{
		Server:      host,
		Port:        port,
		Database:    "garage",
		Measurement: "tank",
		Token:       token,
	}, 5*time.Second)
}

func TestClient_Post_StatusClassification(t *testing.T) {
	tests := []struct {
		status   int
		wantKind OutcomeKind
	}{
		{http.StatusNoContent, Success},
		{http.StatusOK, Rejected},
		{http.StatusAccepted, Rejected},
		{http.StatusBadRequest, Rejected},
		{http.StatusUnauthorized, Rejected},
		{http.StatusNotFound, Rejected},
		{http.StatusInternalServerError, Rejected},
		{http.StatusServiceUnavailable, Rejected},
	}

	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.status), func(t *testing.T) {
			f := &fakeInflux{writeStatus: tt.status}
			c := newTestClient(t, f, "tok")

			out := c.Post(context.Background(), "tank,device=abc inches=7.5")
			if out.Kind != tt.wantKind {
				t.Fatalf("Post() kind = %s, want %s (err %v)", out.Kind, tt.wantKind, out.Err)
			}
			if out.StatusCode != tt.status {
				t.Errorf("Post() status = %d, want %d", out.StatusCode, tt.status)
			}
			if tt.wantKind == Rejected && !errors.Is(out.Err, ErrRejected) {
				t.Errorf("Post() err = %v, want ErrRejected", out.Err)
			}
			if out.OK() != (tt.wantKind == Success) {
				t.Errorf("OK() = %v", out.OK())
			}
		})
	}
}

func TestClient_Post_Request(t *testing.T) {
	f := &fakeInflux{writeStatus: http.StatusNoContent}
	c := newTestClient(t, f, "abc.def.ghi")

	line := "tank,device=abc inches=7.5"
	if out := c.Post(context.Background(), line); !out.OK() {
		t.Fatalf("Post() = %+v", out)
	}

	if len(f.writes) != 1 {
		t.Fatalf("got %d writes, want 1", len(f.writes))
	}
	w := f.writes[0]
	if w.path != "/write" || w.db != "garage" {
		t.Errorf("request = %s?db=%s", w.path, w.db)
	}
	if w.body != line {
		t.Errorf("body = %q, want %q", w.body, line)
	}
	if w.contentType != "application/x-www-form-urlencoded" {
		t.Errorf("Content-Type = %q", w.contentType)
	}
	if len(w.auth) != 1 || w.auth[0] != "Bearer abc.def.ghi" {
		t.Errorf("Authorization = %q", w.auth)
	}
}

func TestClient_Post_EmptyTokenStillSendsHeader(t *testing.T) {
	f := &fakeInflux{writeStatus: http.StatusNoContent}
	c := newTestClient(t, f, "")

	if out := c.Post(context.Background(), "m,device=a inches=1.0"); !out.OK() {
		t.Fatalf("Post() = %+v", out)
	}
	if len(f.writes[0].auth) != 1 {
		t.Errorf("Authorization header count = %d, want 1", len(f.writes[0].auth))
	}
}

func TestClient_Post_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	u, _ := url.Parse(srv.URL)
	host, portStr, _ := net.SplitHostPort(u.Host)
	port, _ := strconv.Atoi(portStr)
	srv.Close()

	c := NewClient(settings.ConnectionConfig{Server: host, Port: port, Database: "d"}, time.Second)

	out := c.Post(context.Background(), "m,device=a inches=1.0")
	if out.Kind != NetworkFailure {
		t.Fatalf("Post() kind = %s, want network_failure", out.Kind)
	}
	if out.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0", out.StatusCode)
	}
	if !errors.Is(out.Err, ErrNetwork) {
		t.Errorf("Err = %v, want ErrNetwork", out.Err)
	}
}

func TestClient_EnsureDatabase(t *testing.T) {
	t.Run("absent is created once", func(t *testing.T) {
		f := &fakeInflux{databases: []string{"_internal"}}
		c := newTestClient(t, f, "")

		created, err := c.EnsureDatabase(context.Background())
		if err != nil {
			t.Fatalf("EnsureDatabase() error = %v", err)
		}
		if !created {
			t.Error("created = false, want true")
		}
		if f.creates() != 1 {
			t.Errorf("CREATE issued %d times, want 1", f.creates())
		}
		if f.queries[1] != `CREATE DATABASE "garage"` {
			t.Errorf("query = %q", f.queries[1])
		}
	})

	t.Run("present is not created", func(t *testing.T) {
		f := &fakeInflux{databases: []string{"_internal", "garage"}}
		c := newTestClient(t, f, "")

		created, err := c.EnsureDatabase(context.Background())
		if err != nil {
			t.Fatalf("EnsureDatabase() error = %v", err)
		}
		if created {
			t.Error("created = true, want false")
		}
		if f.creates() != 0 {
			t.Errorf("CREATE issued %d times, want 0", f.creates())
		}
	})

	t.Run("substring match is not presence", func(t *testing.T) {
		f := &fakeInflux{databases: []string{"garage_old"}}
		c := newTestClient(t, f, "")

		if created, err := c.EnsureDatabase(context.Background()); err != nil || !created {
			t.Errorf("EnsureDatabase() = (%v, %v), want (true, nil)", created, err)
		}
	})
}

func TestQuoteIdent(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"garage", `"garage"`},
		{`my"db`, `"my\"db"`},
		{`back\slash`, `"back\\slash"`},
		{"température", `"température"`},
		{"tab\there", "\"tab\there\""},
	}

	for _, tt := range tests {
		if got := quoteIdent(tt.name); got != tt.want {
			t.Errorf("quoteIdent(%q) = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestClient_EnsureDatabase_QuotesName(t *testing.T) {
	f := &fakeInflux{databases: []string{"_internal"}}
	c := newTestClient(t, f, "")
	c.conn.Database = `bürö "x"\y`

	if _, err := c.EnsureDatabase(context.Background()); err != nil {
		t.Fatalf("EnsureDatabase() error = %v", err)
	}
	if want := `CREATE DATABASE "bürö \"x\"\\y"`; f.queries[1] != want {
		t.Errorf("query = %s, want %s", f.queries[1], want)
	}
}

func TestClient_EnsureDatabase_QueryError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `{"error":"forbidden"}`) //nolint:errcheck
	}))
	defer srv.Close()

	u, _ := url.Parse(srv.URL)
	host, portStr, _ := net.SplitHostPort(u.Host)
	port, _ := strconv.Atoi(portStr)
	c := NewClient(settings.ConnectionConfig{Server: host, Port: port, Database: "d"}, time.Second)

	if _, err := c.EnsureDatabase(context.Background()); !errors.Is(err, ErrQueryFailed) {
		t.Errorf("EnsureDatabase() error = %v, want ErrQueryFailed", err)
	}
}
