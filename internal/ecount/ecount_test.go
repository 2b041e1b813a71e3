package ecount

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/equipment-tracker/internal/common"
)

type fakeERP struct {
	logins   atomic.Int32
	products atomic.Int32
	failFor  int32
}

func (f *fakeERP) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		switch {
		case r.URL.Path == "/OAPI/V2/Zone":
			_, _ = w.Write([]byte(`{"Status":"200","Data":{"ZONE":"CD"}}`))
		case r.URL.Path == "/OAPI/V2/OAPILogin":
			f.logins.Add(1)
			if _, ok := body["PASSWORD"]; !ok {
				_, _ = w.Write([]byte(`{"Status":"500","Errors":[{"Message":"bad"}]}`))
				return
			}
			_, _ = w.Write([]byte(`{"Status":"200","Data":{"Datas":{"SESSION_ID":"sess-1"}}}`))
		case r.URL.Path == "/OAPI/V2/Inventory/GetListProduct":
			assert.Equal(t, "sess-1", r.URL.Query().Get("SESSION_ID"))
			if f.products.Add(1) <= f.failFor {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			_, _ = w.Write([]byte(`{"Status":"200","Data":{"Result":[{"PROD_CD":"P1"}]}}`))
		case r.URL.Path == "/ECERP/OAPI/V2/Customer/GetListCustomer":
			_, _ = w.Write([]byte(`{"Status":"200","Data":{"Result":[]}}`))
		default:
			http.NotFound(w, r)
		}
	})
}

func newTestClient(t *testing.T, srv *httptest.Server, sleeps *[]time.Duration) *Client {
	return NewClient(Options{
		ZoneHost:    srv.URL,
		ComCode:     "100",
		UserID:      "u",
		APICertKey:  "k",
		Password:    "pw",
		Timeout:     2 * time.Second,
		ZoneAPIHost: func(string) string { return srv.URL },
		Retry: Retrier{
			Attempts: 3,
			Base:     10 * time.Millisecond,
			Jitter:   func() time.Duration { return 0 },
			Sleep: func(_ context.Context, d time.Duration) error {
				*sleeps = append(*sleeps, d)
				return nil
			},
		},
	})
}

func TestClient_Call(t *testing.T) {
	t.Run("should log in with the first accepted body variant", func(t *testing.T) {
		erp := &fakeERP{}
		srv := httptest.NewServer(erp.handler(t))
		defer srv.Close()
		var sleeps []time.Duration
		c := newTestClient(t, srv, &sleeps)

		s, err := c.EnsureSession(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "CD", s.Zone)
		assert.Equal(t, "sess-1", s.ID)
		// PWD is rejected, PASSWORD accepted.
		assert.Equal(t, int32(2), erp.logins.Load())

		_, err = c.EnsureSession(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int32(2), erp.logins.Load())
	})

	t.Run("should retry with exponential delays", func(t *testing.T) {
		erp := &fakeERP{failFor: 2}
		srv := httptest.NewServer(erp.handler(t))
		defer srv.Close()
		var sleeps []time.Duration
		c := newTestClient(t, srv, &sleeps)

		raw, err := c.Call(context.Background(), "/Inventory/GetListProduct", map[string]any{"Page": 1})
		require.NoError(t, err)
		assert.Contains(t, string(raw), "P1")
		assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, sleeps)
	})

	t.Run("should fail with an upstream error after the last attempt", func(t *testing.T) {
		erp := &fakeERP{failFor: 100}
		srv := httptest.NewServer(erp.handler(t))
		defer srv.Close()
		var sleeps []time.Duration
		c := newTestClient(t, srv, &sleeps)

		_, err := c.Call(context.Background(), "/Inventory/GetListProduct", nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, common.ErrUpstream))
		assert.Len(t, sleeps, 2)
		assert.Equal(t, int32(3), erp.products.Load())
	})

	t.Run("should fall back to the alternate path base", func(t *testing.T) {
		erp := &fakeERP{}
		srv := httptest.NewServer(erp.handler(t))
		defer srv.Close()
		var sleeps []time.Duration
		c := newTestClient(t, srv, &sleeps)

		raw, err := c.Call(context.Background(), "/OAPI/V2/Customer/GetListCustomer", nil)
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"Result":[]`)
		assert.Empty(t, sleeps)
	})

	t.Run("should serve repeated calls from the file cache", func(t *testing.T) {
		erp := &fakeERP{}
		srv := httptest.NewServer(erp.handler(t))
		defer srv.Close()
		var sleeps []time.Duration
		c := newTestClient(t, srv, &sleeps)
		c.opts.Cache = NewFileCache(t.TempDir(), time.Minute, nil)

		for i := 0; i < 2; i++ {
			_, err := c.Call(context.Background(), "/Inventory/GetListProduct", map[string]any{"Page": 1})
			require.NoError(t, err)
		}
		assert.Equal(t, int32(1), erp.products.Load())
	})
}

func TestClient_LoginRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/Zone") {
			_, _ = w.Write([]byte(`{"Status":"200","Data":{"ZONE":"A"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"Status":"401"}`))
	}))
	defer srv.Close()
	var sleeps []time.Duration
	c := newTestClient(t, srv, &sleeps)

	_, err := c.EnsureSession(context.Background())
	assert.ErrorIs(t, err, ErrLogin)
}

func TestClient_ForceZone(t *testing.T) {
	c := NewClient(Options{ForceZone: "ZZ"})
	zone, err := c.Zone(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ZZ", zone)
}

func TestParseLogin(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Session
		ok   bool
	}{
		{"legacy shape", `{"ERR_CODE":"0","SESSION_ID":"a"}`, Session{Zone: "Z", ID: "a", Host: "h"}, true},
		{"data shape with host", `{"Status":200,"Data":{"SESSION_ID":"b","HOST_URL":"sboapicd.ecount.com"}}`, Session{Zone: "Z", ID: "b", Host: "https://sboapicd.ecount.com"}, true},
		{"nested datas", `{"Status":"200","Data":{"Datas":{"SESSION_ID":"c"}}}`, Session{Zone: "Z", ID: "c", Host: "h"}, true},
		{"error status", `{"Status":"500","Data":{"SESSION_ID":"d"}}`, Session{}, false},
		{"no session", `{"Status":"200","Data":{}}`, Session{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseLogin([]byte(tt.raw), "Z", "h")
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSessionCache(t *testing.T) {
	now := time.Date(2024, 3, 7, 9, 0, 0, 0, time.UTC)
	cache := NewSessionCache(19*time.Minute, func() time.Time { return now })

	_, ok := cache.Get()
	assert.False(t, ok)

	cache.Put(Session{Zone: "CD", ID: "s"})
	now = now.Add(18 * time.Minute)
	s, ok := cache.Get()
	assert.True(t, ok)
	assert.Equal(t, "s", s.ID)

	now = now.Add(time.Minute)
	_, ok = cache.Get()
	assert.False(t, ok)

	cache.Put(Session{Zone: "CD", ID: "t"})
	cache.Invalidate()
	_, ok = cache.Get()
	assert.False(t, ok)
}

func TestFileCache(t *testing.T) {
	dir := t.TempDir()
	cache := NewFileCache(dir, 10*time.Minute, nil)
	key := CacheKey("/Inventory/GetListProduct", map[string]any{"Page": 1})

	_, ok := cache.Get(key)
	assert.False(t, ok)

	require.NoError(t, cache.Put(key, json.RawMessage(`{"x":1}`)))
	data, ok := cache.Get(key)
	require.True(t, ok)
	assert.JSONEq(t, `{"x":1}`, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	raw, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"cachedAt"`)

	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, entries[0].Name()), old, old))
	_, ok = cache.Get(key)
	assert.False(t, ok)

	disabled := NewFileCache(dir, 0, nil)
	require.NoError(t, disabled.Put("k", json.RawMessage(`1`)))
	_, ok = disabled.Get("k")
	assert.False(t, ok)
}

func TestRetrier_Delay(t *testing.T) {
	r := Retrier{Base: time.Second, Jitter: func() time.Duration { return 150 * time.Millisecond }}
	assert.Equal(t, 1150*time.Millisecond, r.Delay(0))
	assert.Equal(t, 4150*time.Millisecond, r.Delay(2))

	for i := 0; i < 50; i++ {
		j := randomJitter()
		assert.GreaterOrEqual(t, j, time.Duration(0))
		assert.Less(t, j, maxJitter)
	}
}
