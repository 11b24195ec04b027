package cache

import (
	"bytes"
	"compress/gzip"
	"io"
)

// The shared tier prefixes a one-byte flag ahead of the payload so Get can
// tell compressed entries from plain ones without a side channel. No
// third-party compression library appears anywhere in the retrieved pack
// (see DESIGN.md) so this stays on compress/gzip.
const (
	flagPlain      byte = 0x00
	flagCompressed byte = 0x01
)

func maybeCompress(value []byte, threshold int) ([]byte, error) {
	if len(value) < threshold {
		return append([]byte{flagPlain}, value...), nil
	}

	var buf bytes.Buffer
	buf.WriteByte(flagCompressed)
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write(value); err != nil {
		return nil, err
	}
	if err := gw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func maybeDecompress(stored []byte) ([]byte, error) {
	if len(stored) == 0 {
		return stored, nil
	}
	flag, payload := stored[0], stored[1:]
	if flag == flagPlain {
		return payload, nil
	}

	gr, err := gzip.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer gr.Close()
	return io.ReadAll(gr)
}
