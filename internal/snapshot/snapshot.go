// Package snapshot persists a trained model so a server can start without
// retraining.
//
// A snapshot is a fixed little-endian header followed by a gzip compressed
// gob payload:
//
//	Magic    [4]byte  "NSPL"
//	Version  uint32
//	Length   uint64   payload length in bytes
//	Checksum [32]byte SHA-256 of the payload
package snapshot

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"io"

	"noisyspell/internal/bigram"
	"noisyspell/internal/corrector"
	"noisyspell/internal/errormodel"
	"noisyspell/internal/langmodel"
)

const (
	Magic   = "NSPL"
	Version = 1
)

var (
	ErrBadMagic         = errors.New("snapshot: bad magic")
	ErrBadVersion       = errors.New("snapshot: unsupported version")
	ErrChecksumMismatch = errors.New("snapshot: checksum mismatch")
	ErrTruncated        = errors.New("snapshot: truncated")
	ErrNotFound         = errors.New("snapshot: not found")
)

type header struct {
	Magic    [4]byte
	Version  uint32
	Length   uint64
	Checksum [sha256.Size]byte
}

var headerSize = binary.Size(header{})

type entry struct {
	Next  map[string]int
	Typos map[string]int
}

type payload struct {
	Scores map[string]float64
	Errors errormodel.Params
	Graph  map[string]entry
}

// Marshal encodes m into a snapshot blob.
func Marshal(m *corrector.Model) ([]byte, error) {
	if m == nil || m.LM == nil || m.Errors == nil || m.Graph == nil {
		return nil, corrector.ErrNilModel
	}
	p := payload{
		Scores: m.LM.Scores(),
		Errors: m.Errors.Params(),
		Graph:  make(map[string]entry, m.Graph.Len()),
	}
	m.Graph.Words(func(w string, e *bigram.Entry) {
		p.Graph[w] = entry{Next: e.Next.Counts(), Typos: e.Typos.Counts()}
	})

	var body bytes.Buffer
	zw := gzip.NewWriter(&body)
	if err := gob.NewEncoder(zw).Encode(&p); err != nil {
		return nil, fmt.Errorf("snapshot encode: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("snapshot compress: %w", err)
	}

	h := header{
		Version:  Version,
		Length:   uint64(body.Len()),
		Checksum: sha256.Sum256(body.Bytes()),
	}
	copy(h.Magic[:], Magic)

	out := bytes.NewBuffer(make([]byte, 0, headerSize+body.Len()))
	if err := binary.Write(out, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("snapshot header: %w", err)
	}
	out.Write(body.Bytes())
	return out.Bytes(), nil
}

// Unmarshal decodes a snapshot blob. opts configure the restored language
// model, typically its lemmatizer. data is not retained.
func Unmarshal(data []byte, opts ...langmodel.Option) (*corrector.Model, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncated, len(data))
	}
	var h header
	if err := binary.Read(bytes.NewReader(data[:headerSize]), binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("snapshot header: %w", err)
	}
	if string(h.Magic[:]) != Magic {
		return nil, fmt.Errorf("%w: %q", ErrBadMagic, h.Magic[:])
	}
	if h.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrBadVersion, h.Version)
	}
	body := data[headerSize:]
	if uint64(len(body)) != h.Length {
		return nil, fmt.Errorf("%w: payload %d bytes, header says %d", ErrTruncated, len(body), h.Length)
	}
	if sha256.Sum256(body) != h.Checksum {
		return nil, ErrChecksumMismatch
	}

	zr, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("snapshot decompress: %w", err)
	}
	defer zr.Close()
	var p payload
	if err := gob.NewDecoder(zr).Decode(&p); err != nil {
		return nil, fmt.Errorf("snapshot decode: %w", err)
	}
	// drain so the gzip trailer is verified too
	if _, err := io.Copy(io.Discard, zr); err != nil {
		return nil, fmt.Errorf("snapshot decompress: %w", err)
	}

	b := bigram.NewBuilder()
	for w, e := range p.Graph {
		for next, n := range e.Next {
			b.AddSuccessor(w, next, n)
		}
		for typo, n := range e.Typos {
			b.AddTypo(w, typo, n)
		}
	}
	return &corrector.Model{
		LM:     langmodel.New(p.Scores, opts...),
		Errors: errormodel.New(p.Errors),
		Graph:  b.Build(),
	}, nil
}
