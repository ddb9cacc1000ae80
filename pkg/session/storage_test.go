package session

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/99designs/keyring"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"
)

// exerciseStorage runs the behavior every backend must share.
func exerciseStorage(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, KeyToken); err != nil || ok {
		t.Fatalf("Get on empty storage = ok %v, err %v", ok, err)
	}

	for _, key := range Keys {
		if err := s.Set(ctx, key, "v"+key); err != nil {
			t.Fatalf("Set(%q) error = %v", key, err)
		}
	}
	for _, key := range Keys {
		v, ok, err := s.Get(ctx, key)
		if err != nil || !ok || v != "v"+key {
			t.Errorf("Get(%q) = %q, %v, %v", key, v, ok, err)
		}
	}

	if err := s.Set(ctx, KeyToken, "rotated"); err != nil {
		t.Fatalf("overwrite error = %v", err)
	}
	if v, _, _ := s.Get(ctx, KeyToken); v != "rotated" {
		t.Errorf("overwritten token = %q, want rotated", v)
	}

	if err := s.Set(ctx, "", "x"); !errors.Is(err, ErrEmptyKey) {
		t.Errorf("Set empty key error = %v, want ErrEmptyKey", err)
	}

	if err := s.Delete(ctx, KeyToken); err != nil {
		t.Fatalf("Delete error = %v", err)
	}
	if _, ok, _ := s.Get(ctx, KeyToken); ok {
		t.Error("token still present after Delete")
	}
	if err := s.Delete(ctx, KeyToken); err != nil {
		t.Errorf("second Delete error = %v, want nil", err)
	}
	if v, ok, _ := s.Get(ctx, KeyRole); !ok || v != "vrole" {
		t.Errorf("Delete removed unrelated key: role = %q, %v", v, ok)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close error = %v", err)
	}
	if _, _, err := s.Get(ctx, KeyRole); !errors.Is(err, ErrStorageClosed) {
		t.Errorf("Get after Close error = %v, want ErrStorageClosed", err)
	}
	if err := s.Set(ctx, KeyRole, "x"); !errors.Is(err, ErrStorageClosed) {
		t.Errorf("Set after Close error = %v, want ErrStorageClosed", err)
	}
	if err := s.Delete(ctx, KeyRole); !errors.Is(err, ErrStorageClosed) {
		t.Errorf("Delete after Close error = %v, want ErrStorageClosed", err)
	}
}

func TestMemoryStorage(t *testing.T) {
	exerciseStorage(t, NewMemoryStorage())
}

func TestMemoryStorageConcurrent(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Set(ctx, KeyToken, "t")
			_, _, _ = s.Get(ctx, KeyToken)
			_ = s.Delete(ctx, KeyUserID)
		}()
	}
	wg.Wait()

	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestFileStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	exerciseStorage(t, NewFileStorage(path))
}

func TestFileStorageSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	ctx := context.Background()

	first := NewFileStorage(path)
	if err := first.Set(ctx, KeyUsername, "alice"); err != nil {
		t.Fatalf("Set error = %v", err)
	}
	_ = first.Close()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("file mode = %o, want 600", perm)
	}

	second := NewFileStorage(path)
	v, ok, err := second.Get(ctx, KeyUsername)
	if err != nil || !ok || v != "alice" {
		t.Errorf("Get after reopen = %q, %v, %v", v, ok, err)
	}
}

func TestFileStorageRemovesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	ctx := context.Background()
	s := NewFileStorage(path)

	_ = s.Set(ctx, KeyToken, "t")
	if err := s.Delete(ctx, KeyToken); err != nil {
		t.Fatalf("Delete error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("session file still exists after last key deleted: %v", err)
	}
}

func TestFileStorageCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	s := NewFileStorage(path)
	if _, _, err := s.Get(context.Background(), KeyToken); err == nil {
		t.Error("Get on corrupt file returned nil error")
	}
}

func TestKeyringStorage(t *testing.T) {
	exerciseStorage(t, NewKeyringStorage(keyring.NewArrayKeyring(nil)))
}

func TestKeyringStoragePreloaded(t *testing.T) {
	ring := keyring.NewArrayKeyring([]keyring.Item{
		{Key: KeyToken, Data: []byte("abc")},
	})
	s := NewKeyringStorage(ring)

	v, ok, err := s.Get(context.Background(), KeyToken)
	if err != nil || !ok || v != "abc" {
		t.Errorf("Get = %q, %v, %v", v, ok, err)
	}
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStorage(t *testing.T) {
	_, client := newTestRedis(t)
	exerciseStorage(t, NewRedisStorage(client))
}

func TestRedisStoragePrefix(t *testing.T) {
	mr, client := newTestRedis(t)
	s := NewRedisStorage(client, WithRedisPrefix("test:"))

	if s.Prefix() != "test:" {
		t.Errorf("Prefix() = %q, want test:", s.Prefix())
	}
	if err := s.Set(context.Background(), KeyRole, "ADMIN"); err != nil {
		t.Fatalf("Set error = %v", err)
	}
	got, err := mr.Get("test:role")
	if err != nil || got != "ADMIN" {
		t.Errorf("raw redis value = %q, %v", got, err)
	}
	if mr.TTL("test:role") != 0 {
		t.Errorf("session key has a TTL, want none")
	}
}

func TestRedisStorageUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	s := NewRedisStorage(client)
	mr.Close()

	if _, _, err := s.Get(context.Background(), KeyToken); err == nil {
		t.Error("Get with redis down returned nil error")
	}
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file::memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSQLStorage(t *testing.T) {
	db := openTestDB(t)
	s, err := NewSQLStorage(db)
	if err != nil {
		t.Fatalf("NewSQLStorage error = %v", err)
	}
	if err := s.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema error = %v", err)
	}
	exerciseStorage(t, s)
}

func TestSQLStorageEnsureSchemaIdempotent(t *testing.T) {
	db := openTestDB(t)
	s, _ := NewSQLStorage(db, WithSQLTableName("sessions_v2"))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := s.EnsureSchema(ctx); err != nil {
			t.Fatalf("EnsureSchema #%d error = %v", i+1, err)
		}
	}
	if err := s.Set(ctx, KeyUserID, "42"); err != nil {
		t.Fatalf("Set error = %v", err)
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM sessions_v2`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("row count = %d, want 1", n)
	}
}

func TestSQLStorageRejectsTableName(t *testing.T) {
	_, err := NewSQLStorage(openTestDB(t), WithSQLTableName("x; DROP TABLE y"))
	if !errors.Is(err, ErrInvalidTableName) {
		t.Errorf("error = %v, want ErrInvalidTableName", err)
	}
}

func TestSQLStoragePlaceholders(t *testing.T) {
	tests := []struct {
		dialect SQLDialect
		want    string
		name    string
	}{
		{DialectSQLite, "?", "sqlite"},
		{DialectPostgreSQL, "$2", "postgres"},
	}

	for _, tt := range tests {
		s, _ := NewSQLStorage(nil, WithSQLDialect(tt.dialect))
		if got := s.placeholder(2); got != tt.want {
			t.Errorf("%s placeholder(2) = %q, want %q", tt.name, got, tt.want)
		}
		if s.Dialect().String() != tt.name {
			t.Errorf("Dialect().String() = %q, want %q", s.Dialect().String(), tt.name)
		}
	}
}
