// Package icy polls the in-band metadata channel of an internet-radio
// stream (the Icecast/Shoutcast "ICY" protocol) and reports track title
// changes.
package icy

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
)

const userAgent = "good-moode/1.0"

// Sanity bound on a metadata block; the length byte allows at most
// 255*16 = 4080 bytes.
const maxMetaBlock = 4080

var titleRe = regexp.MustCompile(`StreamTitle='([^';]+)`)

// Update is the outcome of one metadata poll. Changed is false when the
// raw block was byte-identical to the previous one, when the stream
// carries no metadata, or when the poll failed; the title (possibly
// empty) is only meaningful when Changed is true.
type Update struct {
	Changed bool
	Title   string
}

// Reader extracts ICY metadata from an audio stream. Each poll issues a
// fresh request rather than holding one long-lived stream read open; a
// stalled connection then costs at most one poll timeout.
//
// Reader is not safe for concurrent use; it is owned by the playing
// screen's background loop.
type Reader struct {
	logger  *zap.Logger
	url     string
	client  *http.Client
	timeout time.Duration

	lastBlock string
}

// NewReader creates a reader for the given stream URL. The timeout is
// the hard per-poll bound and should stay below the poll cadence.
func NewReader(logger *zap.Logger, url string, timeout time.Duration) *Reader {
	return &Reader{
		logger:  logger,
		url:     url,
		timeout: timeout,
		client: &http.Client{
			// Essential: one slow network call must not stall the
			// render cadence beyond a single missed tick.
			Timeout: timeout,
		},
	}
}

// Reset forgets the previously seen metadata block so the next poll
// re-emits the current title. Called when the reader is restarted after
// a pause, during which the remembered block may have gone stale.
func (r *Reader) Reset() {
	r.lastBlock = ""
}

// Poll performs one metadata read. All transport and protocol failures
// degrade to "no change" for this cycle only; the connection is set up
// afresh on the next poll.
func (r *Reader) Poll(ctx context.Context) Update {
	block, err := r.read(ctx)
	if err != nil {
		r.logger.Debug("metadata poll failed", zap.Error(err))
		return Update{}
	}
	if block == "" || block == r.lastBlock {
		return Update{}
	}
	r.lastBlock = block
	title := ExtractTitle(block)
	return Update{Changed: true, Title: title}
}

// read fetches and decodes one metadata block. An empty string with a
// nil error means the stream carries no metadata (or an empty block).
func (r *Reader) read(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Icy-MetaData", "1")
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("stream request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	header := strings.TrimSpace(resp.Header.Get("icy-metaint"))
	if header == "" {
		// Stream has no metadata capability; not an error.
		return "", nil
	}
	metaint, err := strconv.Atoi(header)
	if err != nil {
		return "", fmt.Errorf("malformed icy-metaint %q: %w", header, err)
	}
	if metaint <= 0 {
		return "", nil
	}

	br := bufio.NewReader(resp.Body)
	if _, err := io.CopyN(io.Discard, br, int64(metaint)); err != nil {
		return "", fmt.Errorf("skip audio bytes: %w", err)
	}

	lengthByte, err := br.ReadByte()
	if err != nil {
		return "", fmt.Errorf("read length byte: %w", err)
	}
	metaLen := int(lengthByte) * 16
	if metaLen == 0 {
		return "", nil
	}
	if metaLen > maxMetaBlock {
		return "", fmt.Errorf("metadata block too large: %d", metaLen)
	}

	buf := make([]byte, metaLen)
	if _, err := io.ReadFull(br, buf); err != nil {
		return "", fmt.Errorf("read metadata block: %w", err)
	}
	return decodeLatin2(buf), nil
}

// ExtractTitle pulls the StreamTitle value out of a decoded metadata
// block. The value ends at the first quote or semicolon, matching what
// stations actually emit. Returns "" when the block carries no title.
func ExtractTitle(block string) string {
	m := titleRe.FindStringSubmatch(block)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// decodeLatin2 converts the single-byte ISO 8859-2 text the station
// emits. The charmap decoder maps every byte to some rune, so decoding
// never fails on garbage input.
func decodeLatin2(b []byte) string {
	decoded, err := charmap.ISO8859_2.NewDecoder().Bytes(b)
	if err != nil {
		// Unreachable for a charmap decoder; keep the raw bytes.
		return string(b)
	}
	return string(decoded)
}
