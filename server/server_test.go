package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeStudio is a canned generation backend.
type fakeStudio struct {
	prompt     string
	name       string
	breedName  string
	png        []byte
	conjureErr error
	breedErr   error

	lastConjurePrompt string
	lastParent1       []byte
	lastParent2       []byte
}

func (f *fakeStudio) RandomPrompt(ctx context.Context) (string, error) {
	return f.prompt, nil
}

func (f *fakeStudio) Conjure(ctx context.Context, prompt string) (string, []byte, error) {
	f.lastConjurePrompt = prompt
	return f.name, f.png, f.conjureErr
}

func (f *fakeStudio) Crossbreed(ctx context.Context, p1Name, p2Name string, p1PNG, p2PNG []byte) (string, []byte, error) {
	f.lastParent1, f.lastParent2 = p1PNG, p2PNG
	return f.breedName, f.png, f.breedErr
}

func newTestServer(t *testing.T, studio *fakeStudio) (*Server, *httptest.Server) {
	t.Helper()
	snaps, err := OpenSnapshotStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { snaps.Close() })

	srv, err := New(Config{DataDir: t.TempDir()}, studio, snaps, nil)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// --- /api/generate ---

func TestGenerateCreatesImageAsset(t *testing.T) {
	studio := &fakeStudio{name: "Vulpex", png: []byte("fake png bytes")}
	srv, ts := newTestServer(t, studio)

	resp := postJSON(t, ts.URL+"/api/generate", map[string]string{"prompt": "a crystal fox"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)

	require.Equal(t, "Vulpex", body["name"])
	id := body["id"].(string)
	require.Len(t, id, 8)
	require.Equal(t, "/static/generated/"+id+".png", body["image_url"])
	require.Equal(t, "a crystal fox", studio.lastConjurePrompt)

	// The asset is on disk and served back.
	onDisk, err := os.ReadFile(filepath.Join(srv.imagesDir, id+".png"))
	require.NoError(t, err)
	require.Equal(t, studio.png, onDisk)

	img, err := http.Get(ts.URL + "/static/generated/" + id + ".png")
	require.NoError(t, err)
	defer img.Body.Close()
	require.Equal(t, http.StatusOK, img.StatusCode)
}

func TestGenerateDefaultsPromptAndName(t *testing.T) {
	studio := &fakeStudio{name: "", png: []byte("png")}
	_, ts := newTestServer(t, studio)

	resp := postJSON(t, ts.URL+"/api/generate", map[string]string{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)

	require.Equal(t, "a cute fantasy animal", studio.lastConjurePrompt)
	require.Equal(t, "Unknown Creature", body["name"])
}

func TestGenerateBackendFailure(t *testing.T) {
	studio := &fakeStudio{conjureErr: errors.New("model unavailable")}
	_, ts := newTestServer(t, studio)

	resp := postJSON(t, ts.URL+"/api/generate", map[string]string{"prompt": "x"})
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	body := decodeBody(t, resp)
	require.Contains(t, body["error"], "model unavailable")
}

// --- /api/breed ---

func TestBreedReadsParentImages(t *testing.T) {
	studio := &fakeStudio{name: "P", breedName: "Chimeric", png: []byte("child png")}
	srv, ts := newTestServer(t, studio)

	// Seed two parents on disk the way generate would.
	p1, err := srv.saveImage([]byte("parent one"))
	require.NoError(t, err)
	p2, err := srv.saveImage([]byte("parent two"))
	require.NoError(t, err)

	resp := postJSON(t, ts.URL+"/api/breed", map[string]string{
		"parent1_id": p1, "parent2_id": p2,
		"parent1_name": "Axolotl", "parent2_name": "Basilisk",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)

	require.Equal(t, "Chimeric", body["name"])
	require.Equal(t, []byte("parent one"), studio.lastParent1)
	require.Equal(t, []byte("parent two"), studio.lastParent2)
}

func TestBreedMissingParentIs404(t *testing.T) {
	_, ts := newTestServer(t, &fakeStudio{png: []byte("png")})

	resp := postJSON(t, ts.URL+"/api/breed", map[string]string{
		"parent1_id": "nope1", "parent2_id": "nope2",
	})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decodeBody(t, resp)
	require.Contains(t, body["error"], "parent images not found")
}

func TestBreedNameFallback(t *testing.T) {
	studio := &fakeStudio{breedName: "", png: []byte("child png")}
	srv, ts := newTestServer(t, studio)

	p1, _ := srv.saveImage([]byte("a"))
	p2, _ := srv.saveImage([]byte("b"))
	resp := postJSON(t, ts.URL+"/api/breed", map[string]string{
		"parent1_id": p1, "parent2_id": p2,
		"parent1_name": "Axolotl", "parent2_name": "Basilisk",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	require.Equal(t, "Axoisk", body["name"])
}

// --- /api/save-state, /api/load-state ---

func TestStateRoundTrip(t *testing.T) {
	_, ts := newTestServer(t, &fakeStudio{})

	// Nothing saved yet: an empty scene, not an error.
	resp, err := http.Get(ts.URL + "/api/load-state")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	require.Empty(t, body["animals"])
	require.Empty(t, body["familyLines"])

	scene := `{"animals":[{"id":"a","name":"Axol","imageUrl":"/i.png","generation":1,"x":3,"y":4}],"familyLines":[]}`
	resp, err = http.Post(ts.URL+"/api/save-state", "application/json", strings.NewReader(scene))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/api/load-state")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody(t, resp)
	animals := got["animals"].([]any)
	require.Len(t, animals, 1)
	require.Equal(t, "Axol", animals[0].(map[string]any)["name"])
}

func TestSaveStateRejectsInvalidJSON(t *testing.T) {
	_, ts := newTestServer(t, &fakeStudio{})

	resp, err := http.Post(ts.URL+"/api/save-state", "application/json", strings.NewReader("{broken"))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// --- /metrics ---

func TestMetricsExposed(t *testing.T) {
	_, ts := newTestServer(t, &fakeStudio{prompt: "x"})

	_, err := http.Get(ts.URL + "/api/random-prompt")
	require.NoError(t, err)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	buf := new(bytes.Buffer)
	buf.ReadFrom(resp.Body)
	require.Contains(t, buf.String(), "chimerad_requests_total")
}

// --- Name stitching ---

func TestStitchNames(t *testing.T) {
	tests := []struct {
		a, b, want string
	}{
		{"Axolotl", "Basilisk", "Axoisk"},
		{"Ax", "Bo", "AxBo"},
		{"Løvehjerte", "Dråpefjær", "Løvjær"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, stitchNames(tt.a, tt.b), "stitchNames(%q, %q)", tt.a, tt.b)
	}
}
