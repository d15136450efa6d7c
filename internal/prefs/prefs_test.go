package prefs

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ashfaaq98/clients-console/internal/store"
	"github.com/Ashfaaq98/clients-console/internal/table"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

var idThenName = table.Criteria{
	{Field: table.FieldID, Direction: table.Desc},
	{Field: table.FieldName, Direction: table.Asc},
}

func TestEncodeDecode(t *testing.T) {
	raw, err := Encode(idThenName)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"field":"id","direction":"desc"},{"field":"name","direction":"asc"}]`, string(raw))

	got, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, idThenName, got)

	raw, err = Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))

	got, err = Decode([]byte("[]"))
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDecodeRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":           "",
		"null":            "null",
		"not json":        "{nope",
		"object":          `{"field":"name"}`,
		"unknown field":   `[{"field":"phone","direction":"asc"}]`,
		"unknown dir":     `[{"field":"name","direction":"up"}]`,
		"duplicate field": `[{"field":"name","direction":"asc"},{"field":"name","direction":"desc"}]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestEncodeRejectsInvalid(t *testing.T) {
	_, err := Encode(table.Criteria{{Field: table.FieldName, Direction: table.Asc}, {Field: table.FieldName, Direction: table.Desc}})
	assert.ErrorIs(t, err, table.ErrDuplicateField)
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "preferences.json")
	fs, err := NewFileStore(path, quietLogger())
	require.NoError(t, err)

	ctx := context.Background()
	_, ok := fs.Load(ctx)
	assert.False(t, ok, "missing file means no saved criteria")

	require.NoError(t, fs.Save(ctx, idThenName))
	got, ok := fs.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, idThenName, got)

	require.NoError(t, fs.Save(ctx, table.Criteria{}))
	got, ok = fs.Load(ctx)
	require.True(t, ok)
	assert.Empty(t, got)
}

func TestFileStorePreservesOtherSlots(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"theme":"dark"}`), 0o644))

	fs, err := NewFileStore(path, quietLogger())
	require.NoError(t, err)
	require.NoError(t, fs.Save(context.Background(), idThenName))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"theme": "dark"`)
	assert.Contains(t, string(b), Key)
}

func TestFileStoreMalformedIsAbsent(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	for name, content := range map[string]string{
		"garbage":   "not json",
		"bad slot":  `{"clientSortCriteria":"name:asc"}`,
		"duplicate": `{"clientSortCriteria":[{"field":"id","direction":"asc"},{"field":"id","direction":"asc"}]}`,
	} {
		path := filepath.Join(dir, name+".json")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		fs, err := NewFileStore(path, quietLogger())
		require.NoError(t, err)
		_, ok := fs.Load(ctx)
		assert.False(t, ok, name)
	}

	// A save over a malformed file replaces it.
	path := filepath.Join(dir, "garbage.json")
	fs, err := NewFileStore(path, quietLogger())
	require.NoError(t, err)
	require.NoError(t, fs.Save(ctx, idThenName))
	got, ok := fs.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, idThenName, got)
}

type changeRecorder struct {
	mu   sync.Mutex
	seen []table.Criteria
}

func (r *changeRecorder) record(c table.Criteria) {
	r.mu.Lock()
	r.seen = append(r.seen, c)
	r.mu.Unlock()
}

func (r *changeRecorder) all() []table.Criteria {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]table.Criteria(nil), r.seen...)
}

func TestFileStoreWatchReportsExternalWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")
	fs, err := NewFileStore(path, quietLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &changeRecorder{}
	done := make(chan error, 1)
	go func() { done <- fs.Watch(ctx, rec.record) }()

	want := table.Criteria{{Field: table.FieldEmail, Direction: table.Desc}}
	external := []byte(`{"clientSortCriteria":[{"field":"email","direction":"desc"}]}`)
	other := []byte(`{"clientSortCriteria":[]}`)

	// Alternate contents until the watcher is registered and reports the change.
	flip := false
	require.Eventually(t, func() bool {
		flip = !flip
		if flip {
			_ = os.WriteFile(path, other, 0o644)
		} else {
			_ = os.WriteFile(path, external, 0o644)
		}
		for _, c := range rec.all() {
			if c.Equal(want) {
				return true
			}
		}
		return false
	}, 3*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestFileStoreWatchIgnoresOwnSaves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")
	fs, err := NewFileStore(path, quietLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &changeRecorder{}
	go func() { _ = fs.Watch(ctx, rec.record) }()
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, fs.Save(ctx, idThenName))
	assert.Never(t, func() bool { return len(rec.all()) > 0 }, 300*time.Millisecond, 20*time.Millisecond)
}

func TestSQLStore(t *testing.T) {
	db, err := store.NewStore(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	s := NewSQLStore(db, quietLogger())
	assert.Equal(t, "sqlite", s.Name())

	_, ok := s.Load(ctx)
	assert.False(t, ok)

	require.NoError(t, s.Save(ctx, idThenName))
	got, ok := s.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, idThenName, got)

	require.NoError(t, db.SetPreference(ctx, Key, `[{"field":"bogus","direction":"asc"}]`))
	_, ok = s.Load(ctx)
	assert.False(t, ok, "malformed slot reads as absent")
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)

	rs, err := NewRedisStore("redis://"+mr.Addr(), "test:", quietLogger())
	require.NoError(t, err)
	defer rs.Close()

	ctx := context.Background()
	assert.Equal(t, "test:"+Key, RedisKey("test:"))

	_, ok := rs.Load(ctx)
	assert.False(t, ok)

	require.NoError(t, rs.Save(ctx, idThenName))
	raw, err := mr.Get("test:" + Key)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"field":"id","direction":"desc"},{"field":"name","direction":"asc"}]`, raw)

	got, ok := rs.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, idThenName, got)

	require.NoError(t, mr.Set("test:"+Key, "[[["))
	_, ok = rs.Load(ctx)
	assert.False(t, ok)
}

func TestNullStore(t *testing.T) {
	ns := NewNullStore(quietLogger())
	ctx := context.Background()

	_, ok := ns.Load(ctx)
	assert.False(t, ok)

	require.NoError(t, ns.Save(ctx, idThenName))
	got, ok := ns.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, idThenName, got)

	got[0].Direction = table.Asc
	again, _ := ns.Load(ctx)
	assert.Equal(t, table.Desc, again[0].Direction, "loaded criteria must not alias stored state")
}

func TestDeleteForgetsSavedCriteria(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	db, err := store.NewStore(":memory:")
	require.NoError(t, err)
	defer db.Close()

	mr := miniredis.RunT(t)
	rs, err := NewRedisStore("redis://"+mr.Addr(), "test:", quietLogger())
	require.NoError(t, err)
	defer rs.Close()

	path := filepath.Join(dir, "preferences.json")
	fs, err := NewFileStore(path, quietLogger())
	require.NoError(t, err)

	for _, s := range []Store{fs, NewSQLStore(db, quietLogger()), rs, NewNullStore(quietLogger())} {
		require.NoError(t, s.Delete(ctx), "%s: deleting an absent slot", s.Name())
		require.NoError(t, s.Save(ctx, idThenName), s.Name())
		require.NoError(t, s.Delete(ctx), s.Name())
		_, ok := s.Load(ctx)
		assert.False(t, ok, "%s: slot should be gone", s.Name())
	}

	assert.NoFileExists(t, path)
	assert.False(t, mr.Exists("test:"+Key))
}

func TestFileStoreDeleteKeepsOtherSlots(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"theme":"dark"}`), 0o644))

	fs, err := NewFileStore(path, quietLogger())
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, fs.Save(ctx, idThenName))
	require.NoError(t, fs.Delete(ctx))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"theme":"dark"}`, string(b))

	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))
	require.NoError(t, fs.Delete(ctx))
	assert.NoFileExists(t, path)
}

func TestNewSelectsBackend(t *testing.T) {
	dir := t.TempDir()
	mr := miniredis.RunT(t)
	db, err := store.NewStore(":memory:")
	require.NoError(t, err)
	defer db.Close()

	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"default file", Options{Path: filepath.Join(dir, "p.json")}, "file"},
		{"sqlite", Options{Backend: "sqlite", DB: db}, "sqlite"},
		{"sqlite without db", Options{Backend: "sqlite"}, "none"},
		{"redis", Options{Backend: "redis", RedisURL: "redis://" + mr.Addr(), RedisPrefix: DefaultRedisPrefix}, "redis"},
		{"redis without url", Options{Backend: "redis"}, "none"},
		{"none", Options{Backend: "none"}, "none"},
		{"unknown", Options{Backend: "etcd"}, "none"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Logger = quietLogger()
			s := New(tt.opts)
			defer s.Close()
			assert.Equal(t, tt.want, s.Name())
		})
	}
}
