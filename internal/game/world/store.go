package world

import (
	"encoding/binary"
	"fmt"

	"github.com/boltdb/bolt"
	"github.com/klauspost/compress/zstd"
)

var chunkBucket = []byte("chunks")

// Store persists chunk block data in a BoltDB file. Values are the raw
// RLE buffers wrapped in a zstd frame; keys are the packed chunk
// coordinates, big-endian so neighboring chunks sort together.
type Store struct {
	db     *bolt.DB
	enc    *zstd.Encoder
	dec    *zstd.Decoder
	closed bool
}

// OpenStore opens or creates the chunk database at path.
func OpenStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0666, nil)
	if err != nil {
		return nil, fmt.Errorf("opening chunk db %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(chunkBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating chunk bucket: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}

	return &Store{db: db, enc: enc, dec: dec}, nil
}

// Put writes the block data of one chunk.
func (s *Store) Put(pos ChunkPos, blockData []byte) error {
	packed := s.enc.EncodeAll(blockData, nil)
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(chunkBucket).Put(encodeChunkKey(pos), packed)
	})
}

// Get reads the block data of one chunk. A chunk that was never stored
// returns nil with no error.
func (s *Store) Get(pos ChunkPos) ([]byte, error) {
	var packed []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(chunkBucket).Get(encodeChunkKey(pos)); v != nil {
			packed = append(packed, v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if packed == nil {
		return nil, nil
	}
	data, err := s.dec.DecodeAll(packed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompressing chunk %v: %w", pos, err)
	}
	return data, nil
}

// Close flushes and closes the database. Closing twice is a no-op.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.enc.Close()
	s.dec.Close()
	return s.db.Close()
}

func encodeChunkKey(pos ChunkPos) []byte {
	key := make([]byte, 12)
	binary.BigEndian.PutUint32(key[0:], uint32(int32(pos.X)))
	binary.BigEndian.PutUint32(key[4:], uint32(int32(pos.Y)))
	binary.BigEndian.PutUint32(key[8:], uint32(int32(pos.Z)))
	return key
}
