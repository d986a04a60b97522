package store

import (
	"context"
	"fmt"
)

// Store loads and saves session state. Load reports false, without error,
// when nothing has been saved yet.
type Store interface {
	Load(ctx context.Context) (*State, bool, error)
	Save(ctx context.Context, s *State) error
}

// KV is a byte-oriented key-value backend, modelled on browser storage.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}

// BlobStore keeps a State as one blob under a fixed key of a KV.
type BlobStore struct {
	kv   KV
	key  string
	comp Compression
	// packed selects the framed format; plain JSON otherwise.
	packed bool
}

var _ Store = (*BlobStore)(nil)

// NewBlobStore stores plain JSON under key.
func NewBlobStore(kv KV, key string) *BlobStore {
	if key == "" {
		key = StorageKey
	}
	return &BlobStore{kv: kv, key: key}
}

// Packed switches the store to the framed blob format with comp.
func (b *BlobStore) Packed(comp Compression) *BlobStore {
	b.packed = true
	b.comp = comp
	return b
}

// Key returns the key the state is stored under.
func (b *BlobStore) Key() string { return b.key }

func (b *BlobStore) Load(ctx context.Context) (*State, bool, error) {
	data, ok, err := b.kv.Get(ctx, b.key)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", b.key, err)
	}
	if !ok {
		return nil, false, nil
	}
	raw, err := Unpack(data)
	if err != nil {
		return nil, false, fmt.Errorf("unpack %s: %w", b.key, err)
	}
	s, err := Decode(raw)
	if err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", b.key, err)
	}
	return s, true, nil
}

func (b *BlobStore) Save(ctx context.Context, s *State) error {
	raw, err := Encode(s)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if b.packed {
		if raw, err = Pack(raw, b.comp); err != nil {
			return fmt.Errorf("pack state: %w", err)
		}
	}
	if err := b.kv.Put(ctx, b.key, raw); err != nil {
		return fmt.Errorf("write %s: %w", b.key, err)
	}
	return nil
}
