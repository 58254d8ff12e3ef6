package kv

import (
	"bytes"
	"encoding/binary"

	"github.com/ChanhaBB/YCSB/internal"
	"github.com/cockroachdb/errors"
)

var ErrValueCorrupted = errors.New("field codec: corrupted value")

// EncodeFields serializes a field map as a flat sequence of length-prefixed
// (name, value) pairs. Pair order follows map iteration; decoding rebuilds a
// map, so the encoding does not need to be canonical.
func EncodeFields(fields map[string]string) []byte {
	var buf bytes.Buffer
	for name, value := range fields {
		writeChunk(&buf, name)
		writeChunk(&buf, value)
	}
	return buf.Bytes()
}

func writeChunk(buf *bytes.Buffer, s string) {
	_ = binary.Write(buf, binary.BigEndian, uint64(len(s)))
	buf.WriteString(s)
}

// DecodeFields parses an encoded record back into a field map. A zero-pair
// record is indistinguishable from "no record" and decodes to ok=false. When
// a projection is given, every projected field must be present; a missing
// field also yields ok=false and the result is restricted to the projection.
// Malformed bytes return an error.
func DecodeFields(b []byte, projection []string) (map[string]string, bool, error) {
	fields := map[string]string{}

	r := bytes.NewReader(b)
	for r.Len() > 0 {
		name, err := readChunk(r)
		if err != nil {
			return nil, false, errors.WithStack(err)
		}
		value, err := readChunk(r)
		if err != nil {
			return nil, false, errors.WithStack(err)
		}
		fields[name] = value
	}

	if len(fields) == 0 {
		return nil, false, nil
	}

	if len(projection) == 0 {
		return fields, true, nil
	}

	result := make(map[string]string, len(projection))
	for _, name := range projection {
		v, ok := fields[name]
		if !ok {
			return nil, false, nil
		}
		result[name] = v
	}

	return result, true, nil
}

func readChunk(r *bytes.Reader) (string, error) {
	var length uint64
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return "", errors.WithStack(ErrValueCorrupted)
	}

	n, err := internal.Uint64ToInt(length)
	if err != nil {
		return "", errors.WithStack(err)
	}
	if n > r.Len() {
		return "", errors.WithStack(ErrValueCorrupted)
	}

	chunk := make([]byte, n)
	if _, err := r.Read(chunk); err != nil {
		return "", errors.WithStack(ErrValueCorrupted)
	}

	return string(chunk), nil
}
