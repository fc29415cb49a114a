package devtools

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lumina-dev/lumina/internal/config"
	"github.com/lumina-dev/lumina/internal/errors"
	"github.com/lumina-dev/lumina/pkg/control"
	"github.com/lumina-dev/lumina/pkg/host"
	"github.com/lumina-dev/lumina/pkg/host/memhost"
	"github.com/lumina-dev/lumina/pkg/reactive"
	"github.com/lumina-dev/lumina/pkg/reconciler"
	"github.com/lumina-dev/lumina/pkg/vnode"
)

type fakePutter struct {
	inputs []*s3.PutObjectInput
	bodies []string
	err    error
}

func (f *fakePutter) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(in.Body)
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, string(body))
	return &s3.PutObjectOutput{}, nil
}

func render(t *testing.T, node *vnode.Node) *reconciler.Mount {
	t.Helper()
	m, err := reconciler.Render(node)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(m.Dispose)
	return m
}

func find(st State, id uint64) *MountState {
	for i := range st.Mounts {
		if st.Mounts[i].ID == id {
			return &st.Mounts[i]
		}
	}
	return nil
}

func TestCapture(t *testing.T) {
	memhost.Install()
	defer host.Set(nil)

	items := reactive.NewSignal([]string{"a", "b"})
	m := render(t, vnode.H("box", nil,
		vnode.H("label", vnode.Props{"label": "title"}),
		control.For(items.Get, func(s string, _ int) *vnode.Node { return vnode.Text(s) }, nil),
	))

	st := Capture(false)
	ms := find(st, m.ID())
	if ms == nil {
		t.Fatal("expected the root mount in the capture")
	}
	if ms.Tree.Kind != "element" || ms.Tree.Tag != "box" || len(ms.Tree.Children) != 2 {
		t.Errorf("unexpected tree %+v", ms.Tree)
	}
	for _, other := range st.Mounts {
		if other.Nested {
			t.Error("nested mounts should be excluded")
		}
	}

	nested := 0
	for _, other := range Capture(true).Mounts {
		if other.Nested {
			nested++
		}
	}
	if nested != 2 {
		t.Errorf("expected 2 nested item mounts, got %d", nested)
	}
	if st.Stats.Live == 0 {
		t.Error("expected live contexts in stats")
	}
}

func TestRefreshPublishesOnlyAfterMutation(t *testing.T) {
	s := New(Options{Gatherer: prometheus.NewRegistry()})
	host.Set(s.Track(memhost.New()))
	defer host.Set(nil)

	if s.Refresh() {
		t.Error("nothing changed, Refresh should not publish")
	}

	m := render(t, control.Window(control.WindowOptions{Name: "bar"}, "clock"))
	if !s.Refresh() {
		t.Fatal("expected a publish after mounting")
	}
	st := s.State()
	if st.Seq != 1 || find(st, m.ID()) == nil {
		t.Errorf("unexpected state seq=%d mounts=%d", st.Seq, len(st.Mounts))
	}
	if s.Refresh() {
		t.Error("second Refresh without mutation should not publish")
	}

	m.Dispose()
	if !s.Refresh() {
		t.Error("expected a publish after unmounting")
	}
	if find(s.State(), m.ID()) != nil {
		t.Error("disposed mount should not be published")
	}
}

func TestTreeAndStatsRoutes(t *testing.T) {
	s := New(Options{Gatherer: prometheus.NewRegistry()})
	s.Publish(State{Stats: Stats{Live: 3}, Mounts: []MountState{{ID: 7, Tree: &reconciler.Snapshot{Kind: "text", Text: "hi"}}}})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tree", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /tree status = %d", rec.Code)
	}
	var tree struct {
		Seq    uint64       `json:"seq"`
		Mounts []MountState `json:"mounts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &tree); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tree.Seq != 1 || len(tree.Mounts) != 1 || tree.Mounts[0].Tree.Text != "hi" {
		t.Errorf("unexpected tree response %s", rec.Body.String())
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	if !strings.Contains(rec.Body.String(), `"live":3`) || !strings.Contains(rec.Body.String(), `"clients":0`) {
		t.Errorf("unexpected stats response %s", rec.Body.String())
	}
}

func TestMetricsRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "lumina_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	s := New(Options{Gatherer: reg})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "lumina_test_total 1") {
		t.Errorf("expected exposition to include counter, got %s", rec.Body.String())
	}
}

func TestWebSocketPush(t *testing.T) {
	s := New(Options{Gatherer: prometheus.NewRegistry()})
	s.Publish(State{Stats: Stats{Live: 1}})

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	defer s.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var st State
	if err := conn.ReadJSON(&st); err != nil {
		t.Fatalf("read initial state: %v", err)
	}
	if st.Seq != 1 || st.Stats.Live != 1 {
		t.Errorf("unexpected initial state %+v", st)
	}
	if s.ClientCount() != 1 {
		t.Errorf("expected 1 client, got %d", s.ClientCount())
	}

	s.Publish(State{Stats: Stats{Live: 2}})
	if err := conn.ReadJSON(&st); err != nil {
		t.Fatalf("read pushed state: %v", err)
	}
	if st.Seq != 2 || st.Stats.Live != 2 {
		t.Errorf("unexpected pushed state %+v", st)
	}
}

func TestSnapshotRoute(t *testing.T) {
	putter := &fakePutter{}
	s := New(Options{
		Gatherer: prometheus.NewRegistry(),
		Uploader: NewUploader(putter, "goldens", "bar/"),
	})
	s.Publish(State{Time: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/snapshot", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /snapshot status = %d: %s", rec.Code, rec.Body.String())
	}
	if len(putter.inputs) != 1 {
		t.Fatalf("expected one upload, got %d", len(putter.inputs))
	}
	in := putter.inputs[0]
	if *in.Bucket != "goldens" {
		t.Errorf("Bucket = %q", *in.Bucket)
	}
	if !strings.HasPrefix(*in.Key, "bar/20260102T030405Z-") || !strings.HasSuffix(*in.Key, ".json") {
		t.Errorf("unexpected key %q", *in.Key)
	}
	if *in.ContentType != "application/json" || in.Metadata["seq"] != "1" {
		t.Errorf("unexpected object attributes %+v", in)
	}
	if !strings.Contains(rec.Body.String(), *in.Key) {
		t.Errorf("response should name the key, got %s", rec.Body.String())
	}
	var stored State
	if err := json.Unmarshal([]byte(putter.bodies[0]), &stored); err != nil || stored.Seq != 1 {
		t.Errorf("stored body is not the published state: %v %s", err, putter.bodies[0])
	}
}

func TestSnapshotRouteDisabled(t *testing.T) {
	s := New(Options{Gatherer: prometheus.NewRegistry()})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/snapshot", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 without uploader, got %d", rec.Code)
	}
}

func TestUploadFailure(t *testing.T) {
	u := NewUploader(&fakePutter{err: stderrors.New("access denied")}, "goldens", "")
	_, err := u.Upload(context.Background(), State{})
	if !errors.HasCode(err, "E202") {
		t.Fatalf("expected E202, got %v", err)
	}
	if !strings.Contains(err.Error(), "access denied") {
		t.Errorf("expected cause in error, got %v", err)
	}

	s := New(Options{Gatherer: prometheus.NewRegistry(), Uploader: u})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/snapshot", nil))
	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", rec.Code)
	}
}

func TestEnvCredentials(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")
	if _, err := envCredentials(context.Background()); !errors.HasCode(err, "E202") {
		t.Errorf("expected E202 without credentials, got %v", err)
	}

	t.Setenv("AWS_ACCESS_KEY_ID", "id")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	creds, err := envCredentials(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if creds.AccessKeyID != "id" || creds.SecretAccessKey != "secret" {
		t.Errorf("unexpected credentials %+v", creds)
	}

	u := NewS3Uploader(config.SnapshotConfig{Bucket: "b", Prefix: "p/", Region: "eu-west-1", Endpoint: "http://localhost:9000"})
	if u.Bucket() != "b" || u.prefix != "p/" {
		t.Errorf("unexpected uploader %+v", u)
	}
}
