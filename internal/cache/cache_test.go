package cache

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/KaramelBytes/habitlens-cli/internal/dataset"
	"github.com/KaramelBytes/habitlens-cli/internal/source"
	"github.com/redis/go-redis/v9"
)

const csvBody = "social_media_hours,netflix_hours,study_hours_per_day,exam_score,part_time_job\n" +
	"1.0,2.0,3.0,70,No\n" +
	"2.0,0.5,1.0,55,Yes\n"

func archive(t *testing.T, name, body string) *source.Archive {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	if err != nil {
		t.Fatalf("zip: %v", err)
	}
	_, _ = io.WriteString(w, body)
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return &source.Archive{Name: "test.zip", Data: buf.Bytes()}
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestMemory_EvictsOldest(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(2)
	a, b, c := &dataset.Dataset{Name: "a"}, &dataset.Dataset{Name: "b"}, &dataset.Dataset{Name: "c"}
	_ = m.Put(ctx, "a", a)
	_ = m.Put(ctx, "b", b)
	_ = m.Put(ctx, "c", c)
	if _, ok := m.Get(ctx, "a"); ok {
		t.Fatalf("oldest entry should be evicted")
	}
	if got, ok := m.Get(ctx, "c"); !ok || got != c {
		t.Fatalf("newest entry missing")
	}
	if m.Len() != 2 {
		t.Fatalf("len: %d", m.Len())
	}
}

func TestMemory_DefaultSingleEntry(t *testing.T) {
	ctx := context.Background()
	m := &Memory{}
	_ = m.Put(ctx, "first", &dataset.Dataset{Name: "first"})
	_ = m.Put(ctx, "second", &dataset.Dataset{Name: "second"})
	if _, ok := m.Get(ctx, "first"); ok {
		t.Fatalf("a new dataset should replace the previous one")
	}
	if m.Len() != 1 {
		t.Fatalf("len: %d", m.Len())
	}
}

func TestMemory_Concurrent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(4)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := string(rune('a' + i%8))
			_ = m.Put(ctx, key, &dataset.Dataset{Name: key})
			m.Get(ctx, key)
		}(i)
	}
	wg.Wait()
	if m.Len() > 4 {
		t.Fatalf("capacity exceeded: %d", m.Len())
	}
}

func TestLoader_MemoizesByContent(t *testing.T) {
	ctx := context.Background()
	l := &Loader{Cache: NewMemory(1), Logger: quiet()}
	a := archive(t, "students.csv", csvBody)

	first, hit, err := l.Load(ctx, a)
	if err != nil || hit {
		t.Fatalf("first load: hit=%v err=%v", hit, err)
	}
	same := &source.Archive{Name: "renamed.zip", Data: append([]byte(nil), a.Data...)}
	second, hit, err := l.Load(ctx, same)
	if err != nil || !hit || second != first {
		t.Fatalf("second load should hit: hit=%v err=%v", hit, err)
	}

	other := archive(t, "students.csv", csvBody+"0.5,0.5,4.0,90,No\n")
	ds, hit, err := l.Load(ctx, other)
	if err != nil || hit || ds.Len() != 3 {
		t.Fatalf("different bytes should miss: hit=%v err=%v", hit, err)
	}
	if _, hit, _ := l.Load(ctx, a); hit {
		t.Fatalf("single-entry cache should have dropped the first dataset")
	}
}

func TestLoader_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(1)
	l := &Loader{Cache: m, Logger: quiet()}
	_, _, err := l.Load(ctx, archive(t, "readme.txt", "hello"))
	if !errors.Is(err, dataset.ErrNoCSVFound) {
		t.Fatalf("expected ErrNoCSVFound, got %v", err)
	}
	if m.Len() != 0 {
		t.Fatalf("failed loads must not be cached")
	}
	_, _, err = l.Load(ctx, &source.Archive{Name: "junk.zip", Data: []byte("not a zip")})
	if !errors.Is(err, dataset.ErrInvalidArchive) {
		t.Fatalf("expected ErrInvalidArchive, got %v", err)
	}
}

func TestLoader_NilCache(t *testing.T) {
	l := &Loader{Logger: quiet()}
	ds, hit, err := l.Load(context.Background(), archive(t, "students.csv", csvBody))
	if err != nil || hit || ds.Len() != 2 {
		t.Fatalf("nil cache load: hit=%v err=%v", hit, err)
	}
}

func TestNew_FallsBackToMemory(t *testing.T) {
	c := New(context.Background(), Options{Backend: "redis"}, quiet())
	if _, ok := c.(*Memory); !ok {
		t.Fatalf("empty redis addr should fall back to memory, got %T", c)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c = New(ctx, Options{Backend: "redis", RedisAddr: "127.0.0.1:1"}, quiet())
	if _, ok := c.(*Memory); !ok {
		t.Fatalf("unreachable redis should fall back to memory, got %T", c)
	}
	if _, ok := New(ctx, Options{}, quiet()).(*Memory); !ok {
		t.Fatalf("default backend should be memory")
	}
}

func TestEntry_RoundTripIsLossless(t *testing.T) {
	body := "social_media_hours,netflix_hours,study_hours_per_day,exam_score,part_time_job\n" +
		"0.1234567,0.0000001,3.0,70,No\n" +
		"2.0,0.5,1.0,55,Yes\n"
	ds, err := dataset.LoadBytes(archive(t, "a.csv", body).Data)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	b, err := encodeEntry(ds)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := decodeEntry(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Name != "a.csv" || got.Name != ds.Name {
		t.Fatalf("name: %q want %q", got.Name, ds.Name)
	}
	for _, col := range []string{dataset.ColSocialMedia, dataset.ColNetflix, dataset.ColTotalScreen, dataset.ColExamScore} {
		want, _ := ds.Float(col)
		have, _ := got.Float(col)
		if len(want) != len(have) {
			t.Fatalf("%s: len %d want %d", col, len(have), len(want))
		}
		for i := range want {
			if math.Float64bits(want[i]) != math.Float64bits(have[i]) {
				t.Fatalf("%s[%d]: %v want %v", col, i, have[i], want[i])
			}
		}
	}
	if _, err := decodeEntry([]byte("not json")); err == nil {
		t.Fatalf("corrupt entry should fail to decode")
	}
}

func TestRedis_RoundTrip(t *testing.T) {
	addr := os.Getenv("HABITLENS_TEST_REDIS")
	if addr == "" {
		t.Skip("HABITLENS_TEST_REDIS not set")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	r := &Redis{Client: client, TTL: time.Minute, Logger: quiet()}
	a := archive(t, "students.csv", csvBody)
	ds, err := dataset.LoadBytes(a.Data)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	key := a.Key()
	defer client.Del(ctx, KeyPrefix+key)
	if err := r.Put(ctx, key, ds); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok := r.Get(ctx, key)
	if !ok || got.Len() != 2 || !got.Has(dataset.ColTotalScreen) {
		t.Fatalf("round trip: ok=%v", ok)
	}
	if _, ok := r.Get(ctx, "missing"); ok {
		t.Fatalf("missing key should miss")
	}
}
