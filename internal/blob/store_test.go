package blob

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	fsStore, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilesystem: %v", err)
	}
	return map[string]Store{
		"memory": NewMemory(),
		"fs":     fsStore,
		"s3":     NewMockS3ForTests(),
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			key := "exports/loans-2026-10-14-abc.json"
			payload := `[{"loan":1,"name":"Perera"}]`
			info, err := store.Put(ctx, key, strings.NewReader(payload), PutOptions{ContentType: "application/json"})
			if err != nil {
				t.Fatalf("Put: %v", err)
			}
			if info.Key != key || info.Size != int64(len(payload)) {
				t.Fatalf("unexpected info %+v", info)
			}
			if _, err := store.Put(ctx, key, strings.NewReader("x"), PutOptions{}); !errors.Is(err, ErrExists) {
				t.Fatalf("expected ErrExists, got %v", err)
			}
			_, rc, err := store.Get(ctx, key)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			body, _ := io.ReadAll(rc)
			_ = rc.Close()
			if string(body) != payload {
				t.Fatalf("unexpected body %q", body)
			}
			if _, err := store.Put(ctx, "other/file.json", strings.NewReader("{}"), PutOptions{}); err != nil {
				t.Fatalf("Put other: %v", err)
			}
			infos, err := store.List(ctx, "exports/")
			if err != nil || len(infos) != 1 || infos[0].Key != key {
				t.Fatalf("expected one export listed, got %+v %v", infos, err)
			}
			existed, err := store.Delete(ctx, key)
			if err != nil || !existed {
				t.Fatalf("Delete: %v %v", existed, err)
			}
			existed, err = store.Delete(ctx, key)
			if err != nil || existed {
				t.Fatalf("second delete should report missing: %v %v", existed, err)
			}
			if _, _, err := store.Get(ctx, key); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestPresignURL(t *testing.T) {
	ctx := context.Background()
	stores := backends(t)
	if _, err := stores["memory"].PresignURL(ctx, "k", SignedURLOptions{}); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected unsupported for memory, got %v", err)
	}
	u, err := stores["fs"].PresignURL(ctx, "exports/a.json", SignedURLOptions{})
	if err != nil || u != "http://local.blob/exports/a.json" {
		t.Fatalf("unexpected fs url %q %v", u, err)
	}
	u, err = stores["s3"].PresignURL(ctx, "exports/a.json", SignedURLOptions{})
	if err != nil || !strings.Contains(u, "X-Amz-Signature") {
		t.Fatalf("expected signed s3 url, got %q %v", u, err)
	}
}

func TestFilesystemRejectsTraversal(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilesystem: %v", err)
	}
	for _, key := range []string{"", "../x", "/abs"} {
		if _, err := store.Put(context.Background(), key, strings.NewReader("x"), PutOptions{}); err == nil {
			t.Fatalf("expected rejection for %q", key)
		}
	}
}

func TestOpenSelectsDriver(t *testing.T) {
	ctx := context.Background()
	cases := map[string]Driver{"": DriverFilesystem, "fs": DriverFilesystem, "MEMORY": DriverMemory}
	for raw, want := range cases {
		store, err := Open(ctx, Config{Driver: raw, FSRoot: t.TempDir()})
		if err != nil {
			t.Fatalf("Open(%q): %v", raw, err)
		}
		if store.Driver() != want {
			t.Fatalf("Open(%q): expected %s, got %s", raw, want, store.Driver())
		}
	}
	if _, err := Open(ctx, Config{Driver: "s3"}); err == nil {
		t.Fatalf("expected missing bucket error")
	}
	if _, err := Open(ctx, Config{Driver: "ftp"}); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}
