// Package codec implements the pieces of the binary bibliographic tape
// format: the leader, the directory, and individual fields, plus the record
// encoder that assembles them.
//
// # Record Format
//
// Records are serialized as:
//
//	[Leader(24)][Directory(n*12)][FT][Field 1]...[Field n][RT]
//
// Leader:
//
//	[RecLen(5)][Status(1)][Type(1)][Impl1(2)][CharEnc(1)]
//	[IndCount(1)][SubfLen(1)][BaseAddr(5)][Impl2(3)][EntryMap(4)]
//
// Directory entry:
//
//	[Tag(3)][Length(4)][Start(5)]
//
// Fields:
//   - Control field: payload bytes, then FT
//   - Data field: Ind1, Ind2, then (US Code payload)*, then FT
//
// FT (0x1E), RT (0x1D) and US (0x1F) are defined in package marc.
//
// The base address of data always equals 24 + 12*n + 1, and the record
// length counts every byte through RT.
//
// # Decoding
//
// The decode functions are pure. They never stop at the first problem;
// instead they return the best value they can build together with a list of
// diagnostics whose positions are relative to the bytes they were given.
// The stream reader rebases positions onto the stream, attaches the control
// number, and forwards them to an ErrorHandler. Only an unreadable leader is
// fatal at this level.
//
// # Encoding
//
// RecordCodec.Encode recomputes the directory from the current field
// contents. Values that do not fit their fixed-width slot (a field over 9999
// bytes, an offset or record length over 99999) fail the whole encode with an
// ErrEncodeOverflow diagnostic rather than writing a corrupt directory.
//
// # Errors
//
// Every diagnostic is a *Diagnostic. Use errors.Is with ErrFormat,
// ErrTermination, ErrLengthMismatch, ErrTruncatedInput, ErrEncodeOverflow or
// ErrUnmappableText to classify one, or inspect Code for the exact cause.
//
// # Text
//
// Payload bytes are mapped to text by a TextCodec. Legacy 8-bit records
// (leader position 9 blank) use ISO-8859-1; records marked 'a' use UTF-8,
// which is kept byte-transparent so malformed sequences round-trip.
package codec
