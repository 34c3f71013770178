package codec

import (
	"strings"

	"github.com/ssargent/marcstream/pkg/marc"
)

// UnknownLength marks a directory entry whose length slot was not numeric.
const UnknownLength = -1

const (
	maxFieldLength = 9999
	maxOffset      = 99999
)

// DirectoryEntry locates one field in the data section.
type DirectoryEntry struct {
	Tag    string
	Length int // includes the field terminator; UnknownLength if unreadable
	Start  int // offset from the base address; UnknownLength if unreadable
}

// DirectoryLength returns the number of directory bytes a leader declares,
// excluding the terminator. Negative means the base address is too small to
// hold even the terminator.
func DirectoryLength(l marc.Leader) int {
	return l.BaseAddressOfData - marc.LeaderLength - 1
}

// DecodeDirectory parses the bytes between the leader and the base address
// of data, terminator included. A length that is not a multiple of twelve is
// reported and the whole entries that fit are still decoded.
func DecodeDirectory(b []byte) ([]DirectoryEntry, []*Diagnostic) {
	var diags []*Diagnostic
	if len(b) == 0 {
		diags = append(diags, newDiagnostic(SeverityWarning, CodeDirectoryNotTerminated, 0,
			"directory is empty and has no terminator"))
		return nil, diags
	}

	dirLen := len(b) - 1
	if dirLen%marc.DirectoryEntryLength != 0 {
		diags = append(diags, newDiagnostic(SeverityWarning, CodeInvalidDirectoryLength, 0,
			"directory length %d is not a multiple of %d", dirLen, marc.DirectoryEntryLength))
	}

	count := dirLen / marc.DirectoryEntryLength
	entries := make([]DirectoryEntry, count)
	for i := 0; i < count; i++ {
		off := i * marc.DirectoryEntryLength
		raw := b[off : off+marc.DirectoryEntryLength]
		e := DirectoryEntry{Tag: string(raw[0:3])}

		if n, ok := atoi(raw[3:7]); ok {
			e.Length = n
		} else {
			e.Length = UnknownLength
			d := newDiagnostic(SeverityError, CodeInvalidDirectoryEntry, int64(off+3),
				"entry %d: length %q is not numeric", i, raw[3:7])
			d.Tag = e.Tag
			diags = append(diags, d)
		}

		if n, ok := atoi(raw[7:12]); ok {
			e.Start = n
		} else {
			e.Start = UnknownLength
			d := newDiagnostic(SeverityError, CodeInvalidDirectoryEntry, int64(off+7),
				"entry %d: start %q is not numeric", i, raw[7:12])
			d.Tag = e.Tag
			diags = append(diags, d)
		}
		entries[i] = e
	}

	if b[len(b)-1] != marc.FieldTerminator {
		diags = append(diags, newDiagnostic(SeverityWarning, CodeDirectoryNotTerminated, int64(len(b)-1),
			"expected field terminator after directory, found 0x%02X", b[len(b)-1]))
	}
	return entries, diags
}

// LayoutDirectory assigns cumulative start offsets to fields of the given
// encoded lengths.
func LayoutDirectory(tags []string, lengths []int) []DirectoryEntry {
	entries := make([]DirectoryEntry, len(tags))
	start := 0
	for i, tag := range tags {
		entries[i] = DirectoryEntry{Tag: tag, Length: lengths[i], Start: start}
		start += lengths[i]
	}
	return entries
}

// EncodeDirectory renders entries followed by the field terminator.
func EncodeDirectory(entries []DirectoryEntry) ([]byte, error) {
	b := make([]byte, 0, len(entries)*marc.DirectoryEntryLength+1)
	for _, e := range entries {
		b = append(b, formatTag(e.Tag)...)

		var err error
		if b, err = appendDigits(b, e.Length, 4, CodeFieldTooLong, "field length"); err != nil {
			d := err.(*Diagnostic)
			d.Tag = e.Tag
			return nil, d
		}
		if b, err = appendDigits(b, e.Start, 5, CodeOffsetOverflow, "field start"); err != nil {
			d := err.(*Diagnostic)
			d.Tag = e.Tag
			return nil, d
		}
	}
	return append(b, marc.FieldTerminator), nil
}

// formatTag truncates to three bytes or left-pads with zeros.
func formatTag(tag string) string {
	if len(tag) >= 3 {
		return tag[:3]
	}
	return strings.Repeat("0", 3-len(tag)) + tag
}
