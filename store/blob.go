package store

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// Compression selects how a packed blob's payload is compressed.
type Compression uint8

const (
	CompNone Compression = 0
	CompZlib Compression = 1
	CompZstd Compression = 2
)

// ParseCompression maps a config or CLI name to a Compression.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "", "none":
		return CompNone, nil
	case "zlib":
		return CompZlib, nil
	case "zstd":
		return CompZstd, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", name)
	}
}

func (c Compression) String() string {
	switch c {
	case CompNone:
		return "none"
	case CompZlib:
		return "zlib"
	case CompZstd:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

const (
	blobMagic   = "CUBS"
	blobVersion = 1
	// magic + version + compression + checksum + payload length
	blobHeaderLen = 4 + 1 + 1 + 8 + 4
)

// IsPacked reports whether data starts with the packed blob header.
func IsPacked(data []byte) bool {
	return len(data) >= len(blobMagic) && string(data[:len(blobMagic)]) == blobMagic
}

// Pack wraps a JSON state blob in the framed format. The checksum covers
// the uncompressed JSON.
func Pack(raw []byte, comp Compression) ([]byte, error) {
	var payload []byte
	switch comp {
	case CompNone:
		payload = raw
	case CompZlib:
		var buf bytes.Buffer
		zw, _ := zlib.NewWriterLevel(&buf, zlib.BestCompression)
		if _, err := zw.Write(raw); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		payload = buf.Bytes()
	case CompZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, err
		}
		payload = enc.EncodeAll(raw, nil)
		_ = enc.Close()
	default:
		return nil, fmt.Errorf("unsupported compression: %d", comp)
	}

	var out bytes.Buffer
	out.Grow(blobHeaderLen + len(payload))
	out.WriteString(blobMagic)
	_ = binary.Write(&out, binary.LittleEndian, uint8(blobVersion))
	_ = binary.Write(&out, binary.LittleEndian, uint8(comp))
	_ = binary.Write(&out, binary.LittleEndian, xxhash.Sum64(raw))
	_ = binary.Write(&out, binary.LittleEndian, uint32(len(payload)))
	_, _ = out.Write(payload)
	return out.Bytes(), nil
}

// Unpack returns the JSON carried by data. Unframed input is returned as is,
// so plain JSON written by the browser build stays readable.
func Unpack(data []byte) ([]byte, error) {
	if !IsPacked(data) {
		return data, nil
	}
	if len(data) < blobHeaderLen {
		return nil, fmt.Errorf("packed state truncated: %d bytes", len(data))
	}
	r := bytes.NewReader(data[len(blobMagic):])
	var ver, comp uint8
	var sum uint64
	var plen uint32
	_ = binary.Read(r, binary.LittleEndian, &ver)
	_ = binary.Read(r, binary.LittleEndian, &comp)
	_ = binary.Read(r, binary.LittleEndian, &sum)
	_ = binary.Read(r, binary.LittleEndian, &plen)
	if ver != blobVersion {
		return nil, fmt.Errorf("unsupported packed state version: %d", ver)
	}
	if uint32(len(data)-blobHeaderLen) != plen {
		return nil, fmt.Errorf("invalid payload length (expected %d, have %d)", plen, len(data)-blobHeaderLen)
	}
	payload := data[blobHeaderLen:]

	var raw []byte
	switch Compression(comp) {
	case CompNone:
		raw = payload
	case CompZlib:
		zr, err := zlib.NewReader(bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		if raw, err = io.ReadAll(zr); err != nil {
			return nil, err
		}
	case CompZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		if raw, err = dec.DecodeAll(payload, nil); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported compression: %d", comp)
	}
	if xxhash.Sum64(raw) != sum {
		return nil, fmt.Errorf("packed state checksum mismatch")
	}
	return raw, nil
}
