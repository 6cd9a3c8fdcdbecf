package taxonomy

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pmd-directory/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubFetcher struct {
	t   *Taxonomy
	err error
}

func (f stubFetcher) Fetch(context.Context) (*Taxonomy, error) { return f.t, f.err }

func remoteTaxonomy(version string) *Taxonomy {
	t := Default()
	t.Version = version
	return t
}

func TestStore_StartsWithDefault(t *testing.T) {
	s := NewStore(nil, nil, time.Minute, zap.NewNop())
	assert.Equal(t, DefaultVersion, s.Current().Version)
}

func TestStore_RefreshFromRemoteCachesResult(t *testing.T) {
	kv := store.NewMemoryKV()
	s := NewStore(stubFetcher{t: remoteTaxonomy("remote-7")}, kv, time.Minute, zap.NewNop())

	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, "remote-7", s.Current().Version)

	raw, err := kv.Get(context.Background(), CacheKey)
	require.NoError(t, err)
	var cached Taxonomy
	require.NoError(t, json.Unmarshal([]byte(raw), &cached))
	assert.Equal(t, "remote-7", cached.Version)
}

func TestStore_RefreshFallsBackToCache(t *testing.T) {
	kv := store.NewMemoryKV()
	raw, err := json.Marshal(remoteTaxonomy("cached-3"))
	require.NoError(t, err)
	require.NoError(t, kv.Set(context.Background(), CacheKey, string(raw), 0))

	s := NewStore(stubFetcher{err: errors.New("network down")}, kv, time.Minute, zap.NewNop())
	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, "cached-3", s.Current().Version)
}

func TestStore_RefreshKeepsCurrentWhenEverythingFails(t *testing.T) {
	s := NewStore(stubFetcher{err: errors.New("network down")}, store.NewMemoryKV(), time.Minute, zap.NewNop())

	err := s.Refresh(context.Background())
	assert.Error(t, err)
	assert.Equal(t, DefaultVersion, s.Current().Version)
}

func TestStore_ObserveSeesRefresh(t *testing.T) {
	s := NewStore(stubFetcher{t: remoteTaxonomy("remote-8")}, nil, time.Minute, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := s.Observe(ctx)
	assert.Equal(t, DefaultVersion, (<-ch).Version)

	require.NoError(t, s.Refresh(ctx))
	select {
	case got := <-ch:
		assert.Equal(t, "remote-8", got.Version)
	case <-time.After(time.Second):
		t.Fatal("no taxonomy published after refresh")
	}
}

func TestRemoteClient_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/directory/api/v1/taxonomy", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"code":    2000,
			"message": "ok",
			"result":  remoteTaxonomy("remote-9"),
		})
	}))
	defer srv.Close()

	c := NewRemoteClient(srv.URL, zap.NewNop())
	tx, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "remote-9", tx.Version)
	assert.True(t, tx.IsDistrictLevelUnit("CID"))
}

func TestRemoteClient_FetchRejectsErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":-1,"message":"maintenance","result":null}`))
	}))
	defer srv.Close()

	c := NewRemoteClient(srv.URL, zap.NewNop())
	_, err := c.Fetch(context.Background())
	assert.ErrorContains(t, err, "maintenance")
}
