package icy

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

// icyBody frames one metadata block the way a station does: metaint
// audio bytes, a length byte (x16), the zero-padded block, more audio.
func icyBody(metaint int, block []byte) []byte {
	body := bytes.Repeat([]byte{0xAA}, metaint)
	chunks := (len(block) + 15) / 16
	frame := make([]byte, chunks*16)
	copy(frame, block)
	body = append(body, byte(chunks))
	body = append(body, frame...)
	return append(body, bytes.Repeat([]byte{0xAA}, 8)...)
}

func icyServer(t *testing.T, metaint string, body func() []byte) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Icy-MetaData") != "1" {
			t.Error("missing Icy-MetaData request header")
		}
		if metaint != "" {
			w.Header().Set("icy-metaint", metaint)
		}
		_, _ = w.Write(body())
	}))
	t.Cleanup(server.Close)
	return server
}

func TestPollExtractsTitle(t *testing.T) {
	server := icyServer(t, "16", func() []byte {
		return icyBody(16, []byte("StreamTitle='Artist X - Song Y';"))
	})

	r := NewReader(zap.NewNop(), server.URL, time.Second)
	upd := r.Poll(context.Background())

	if !upd.Changed {
		t.Fatal("expected a changed update on first poll")
	}
	if upd.Title != "Artist X - Song Y" {
		t.Errorf("expected title 'Artist X - Song Y', got %q", upd.Title)
	}
}

func TestPollIdenticalBlockIsNoChange(t *testing.T) {
	server := icyServer(t, "16", func() []byte {
		return icyBody(16, []byte("StreamTitle='Same Song';"))
	})

	r := NewReader(zap.NewNop(), server.URL, time.Second)
	if upd := r.Poll(context.Background()); !upd.Changed {
		t.Fatal("first poll should emit the title")
	}
	if upd := r.Poll(context.Background()); upd.Changed {
		t.Errorf("byte-identical block must yield no change, got %+v", upd)
	}
}

func TestPollChangedBlockEmitsNewTitle(t *testing.T) {
	var calls atomic.Int32
	server := icyServer(t, "16", func() []byte {
		if calls.Add(1) == 1 {
			return icyBody(16, []byte("StreamTitle='First';"))
		}
		return icyBody(16, []byte("StreamTitle='Second';"))
	})

	r := NewReader(zap.NewNop(), server.URL, time.Second)
	r.Poll(context.Background())
	upd := r.Poll(context.Background())

	if !upd.Changed || upd.Title != "Second" {
		t.Errorf("expected changed update with title 'Second', got %+v", upd)
	}
}

func TestPollWithoutMetadataCapability(t *testing.T) {
	server := icyServer(t, "", func() []byte {
		return bytes.Repeat([]byte{0xAA}, 64)
	})

	r := NewReader(zap.NewNop(), server.URL, time.Second)
	for i := 0; i < 3; i++ {
		if upd := r.Poll(context.Background()); upd.Changed {
			t.Fatalf("stream without icy-metaint must never emit, got %+v", upd)
		}
	}
}

func TestPollDegradesToNoChange(t *testing.T) {
	tests := []struct {
		name    string
		metaint string
		body    func() []byte
	}{
		{
			name:    "zero metaint",
			metaint: "0",
			body:    func() []byte { return bytes.Repeat([]byte{0xAA}, 64) },
		},
		{
			name:    "malformed metaint",
			metaint: "banana",
			body:    func() []byte { return bytes.Repeat([]byte{0xAA}, 64) },
		},
		{
			name:    "empty metadata block",
			metaint: "16",
			body:    func() []byte { return append(bytes.Repeat([]byte{0xAA}, 16), 0x00) },
		},
		{
			name:    "truncated body",
			metaint: "4096",
			body:    func() []byte { return bytes.Repeat([]byte{0xAA}, 100) },
		},
		{
			name:    "truncated metadata block",
			metaint: "16",
			body:    func() []byte { return append(bytes.Repeat([]byte{0xAA}, 16), 0x04, 'S', 't') },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := icyServer(t, tt.metaint, tt.body)
			r := NewReader(zap.NewNop(), server.URL, time.Second)
			if upd := r.Poll(context.Background()); upd.Changed {
				t.Errorf("expected no change, got %+v", upd)
			}
		})
	}
}

func TestPollServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	r := NewReader(zap.NewNop(), server.URL, time.Second)
	if upd := r.Poll(context.Background()); upd.Changed {
		t.Errorf("expected no change on server error, got %+v", upd)
	}
}

func TestPollTimeoutIsNotFatal(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer func() {
		close(release)
		server.Close()
	}()

	r := NewReader(zap.NewNop(), server.URL, 50*time.Millisecond)
	start := time.Now()
	upd := r.Poll(context.Background())
	if upd.Changed {
		t.Errorf("expected no change on timeout, got %+v", upd)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("poll was not bounded by the timeout, took %v", elapsed)
	}
}

func TestPollDecodesLatin2(t *testing.T) {
	// 0xE9 is 'é' in ISO 8859-2.
	block := []byte("StreamTitle='Zen\xE9sz - Dal';")
	server := icyServer(t, "16", func() []byte { return icyBody(16, block) })

	r := NewReader(zap.NewNop(), server.URL, time.Second)
	upd := r.Poll(context.Background())

	if upd.Title != "Zenész - Dal" {
		t.Errorf("expected decoded title 'Zenész - Dal', got %q", upd.Title)
	}
}

func TestResetReemitsCurrentTitle(t *testing.T) {
	server := icyServer(t, "16", func() []byte {
		return icyBody(16, []byte("StreamTitle='Still Here';"))
	})

	r := NewReader(zap.NewNop(), server.URL, time.Second)
	r.Poll(context.Background())
	if upd := r.Poll(context.Background()); upd.Changed {
		t.Fatal("expected no change before reset")
	}

	r.Reset()
	upd := r.Poll(context.Background())
	if !upd.Changed || upd.Title != "Still Here" {
		t.Errorf("expected re-emitted title after reset, got %+v", upd)
	}
}

func TestChangedBlockWithoutTitleTag(t *testing.T) {
	server := icyServer(t, "16", func() []byte {
		return icyBody(16, []byte("StreamUrl='http://example.org';"))
	})

	r := NewReader(zap.NewNop(), server.URL, time.Second)
	upd := r.Poll(context.Background())

	if !upd.Changed {
		t.Fatal("a new block without a title tag is still a change")
	}
	if upd.Title != "" {
		t.Errorf("expected empty title, got %q", upd.Title)
	}
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name  string
		block string
		want  string
	}{
		{"plain", "StreamTitle='Artist - Song';StreamUrl='';", "Artist - Song"},
		{"no tag", "StreamUrl='http://x';", ""},
		{"empty value", "StreamTitle='';", ""},
		{"terminated by semicolon", "StreamTitle='Half;done';", "Half"},
		{"whitespace trimmed", "StreamTitle='  padded  ';", "padded"},
		{"trailing padding", "StreamTitle='Tail';\x00\x00\x00", "Tail"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractTitle(tt.block); got != tt.want {
				t.Errorf("ExtractTitle(%q) = %q, want %q", tt.block, got, tt.want)
			}
		})
	}
}
