package codec

import (
	"fmt"
	"strings"

	"github.com/ssargent/marcstream/pkg/marc"
	"golang.org/x/text/encoding/charmap"
)

// Encoding selects how payload bytes map to text.
type Encoding int

const (
	// EncodingAuto resolves from the leader's character coding scheme.
	EncodingAuto Encoding = iota
	// EncodingLatin1 is the legacy 8-bit single-byte text (ISO-8859-1).
	EncodingLatin1
	// EncodingUTF8 is universal multi-byte text.
	EncodingUTF8
)

func (e Encoding) String() string {
	switch e {
	case EncodingLatin1:
		return "latin1"
	case EncodingUTF8:
		return "utf8"
	default:
		return "auto"
	}
}

// ParseEncoding accepts the names used in configuration files.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return EncodingAuto, nil
	case "latin1", "iso-8859-1", "iso8859-1", "iso8859_1", "legacy":
		return EncodingLatin1, nil
	case "utf8", "utf-8", "unicode":
		return EncodingUTF8, nil
	default:
		return EncodingAuto, fmt.Errorf("unknown encoding %q", s)
	}
}

// Resolve returns e, or the encoding the leader declares when e is auto.
func (e Encoding) Resolve(leader marc.Leader) Encoding {
	if e != EncodingAuto {
		return e
	}
	if leader.IsUnicode() {
		return EncodingUTF8
	}
	return EncodingLatin1
}

// TextCodec converts field payloads between bytes and text.
type TextCodec interface {
	Decode(b []byte) (string, error)
	Encode(s string) ([]byte, error)
}

// TextCodecFor returns the codec for a resolved encoding. Auto falls back
// to UTF-8, which is byte-transparent.
func TextCodecFor(e Encoding) TextCodec {
	if e == EncodingLatin1 {
		return latin1Codec{}
	}
	return utf8Codec{}
}

// utf8Codec keeps bytes as-is so invalid sequences survive a round trip.
type utf8Codec struct{}

func (utf8Codec) Decode(b []byte) (string, error) { return string(b), nil }
func (utf8Codec) Encode(s string) ([]byte, error) { return []byte(s), nil }

type latin1Codec struct{}

func (latin1Codec) Decode(b []byte) (string, error) {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (latin1Codec) Encode(s string) ([]byte, error) {
	out, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnmappableText, err)
	}
	return out, nil
}
