package storage

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Unit text is stored zstd-compressed. Encoder and decoder are safe for
// concurrent EncodeAll/DecodeAll and are built once.
var (
	codecOnce sync.Once
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
	codecErr  error
)

func codec() (*zstd.Encoder, *zstd.Decoder, error) {
	codecOnce.Do(func() {
		encoder, codecErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault), zstd.WithZeroFrames(true))
		if codecErr != nil {
			return
		}
		decoder, codecErr = zstd.NewReader(nil)
	})
	return encoder, decoder, codecErr
}

func compress(text string) ([]byte, error) {
	enc, _, err := codec()
	if err != nil {
		return nil, fmt.Errorf("zstd: %w", err)
	}
	return enc.EncodeAll([]byte(text), nil), nil
}

func decompress(blob []byte) (string, error) {
	_, dec, err := codec()
	if err != nil {
		return "", fmt.Errorf("zstd: %w", err)
	}
	out, err := dec.DecodeAll(blob, nil)
	if err != nil {
		return "", fmt.Errorf("zstd: %w", err)
	}
	return string(out), nil
}
