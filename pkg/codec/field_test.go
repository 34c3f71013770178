package codec

import (
	"testing"

	"github.com/ssargent/marcstream/pkg/marc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var utf8 = TextCodecFor(EncodingUTF8)

func codes(diags []*Diagnostic) []Code {
	out := make([]Code, len(diags))
	for i, d := range diags {
		out[i] = d.Code
	}
	return out
}

func TestDecodeControlField(t *testing.T) {
	f, diags := DecodeControlField("001", []byte("12345\x1e"), utf8)
	assert.Empty(t, diags)
	assert.Equal(t, "001", f.Tag())
	assert.Equal(t, "12345", f.Data)
}

func TestDecodeControlField_Empty(t *testing.T) {
	f, diags := DecodeControlField("005", []byte{marc.FieldTerminator}, utf8)
	assert.Equal(t, "", f.Data)
	assert.Equal(t, []Code{CodeEmptyControlField}, codes(diags))
	assert.Equal(t, SeverityWarning, diags[0].Severity)
}

func TestDecodeControlField_NotTerminated(t *testing.T) {
	f, diags := DecodeControlField("003", []byte("DLC"), utf8)
	assert.Equal(t, "DLC", f.Data)
	assert.Equal(t, []Code{CodeFieldNotTerminated}, codes(diags))
}

func TestDecodeDataField(t *testing.T) {
	testCases := []struct {
		name      string
		data      []byte
		ind1      byte
		ind2      byte
		subfields []marc.Subfield
		codes     []Code
	}{
		{
			name:      "single subfield",
			data:      []byte{' ', ' ', 0x1F, 'a', 'H', 'e', 'l', 'l', 'o', 0x1E},
			ind1:      ' ',
			ind2:      ' ',
			subfields: []marc.Subfield{{Code: 'a', Data: "Hello"}},
			codes:     []Code{},
		},
		{
			name: "two subfields keep order",
			data: []byte("10\x1faFoo\x1fbBar\x1e"),
			ind1: '1',
			ind2: '0',
			subfields: []marc.Subfield{
				{Code: 'a', Data: "Foo"},
				{Code: 'b', Data: "Bar"},
			},
			codes: []Code{},
		},
		{
			name:      "empty subfield value",
			data:      []byte("  \x1fa\x1fbx\x1e"),
			ind1:      ' ',
			ind2:      ' ',
			subfields: []marc.Subfield{{Code: 'a', Data: ""}, {Code: 'b', Data: "x"}},
			codes:     []Code{},
		},
		{
			name:      "indicators only",
			data:      []byte("04\x1e"),
			ind1:      '0',
			ind2:      '4',
			subfields: nil,
			codes:     []Code{},
		},
		{
			name:      "too short for indicators",
			data:      []byte("1\x1e"),
			ind1:      ' ',
			ind2:      ' ',
			subfields: nil,
			codes:     []Code{CodeEmptyDataField},
		},
		{
			name:      "missing first delimiter",
			data:      []byte("00junk\x1faTitle\x1e"),
			ind1:      '0',
			ind2:      '0',
			subfields: []marc.Subfield{{Code: 'a', Data: "Title"}},
			codes:     []Code{CodeMissingDelimiter},
		},
		{
			name:      "unterminated trailing subfield dropped",
			data:      []byte("  \x1faOne\x1fbTwo"),
			ind1:      ' ',
			ind2:      ' ',
			subfields: []marc.Subfield{{Code: 'a', Data: "One"}},
			codes:     []Code{CodeFieldNotTerminated, CodeUnterminatedSubfield},
		},
		{
			name:      "delimiter directly before terminator",
			data:      []byte("  \x1faOne\x1f\x1e"),
			ind1:      ' ',
			ind2:      ' ',
			subfields: []marc.Subfield{{Code: 'a', Data: "One"}},
			codes:     []Code{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f, diags := DecodeDataField("245", tc.data, utf8)
			assert.Equal(t, "245", f.Tag())
			assert.Equal(t, tc.ind1, f.Indicator1)
			assert.Equal(t, tc.ind2, f.Indicator2)
			assert.Equal(t, tc.subfields, f.Subfields)
			assert.Equal(t, tc.codes, codes(diags))
		})
	}
}

func TestEncodeDataField(t *testing.T) {
	f := marc.NewDataField("245", '1', '0').AddSubfield('a', "Foo").AddSubfield('b', "Bar")
	b, err := EncodeDataField(f, utf8)
	require.NoError(t, err)
	assert.Equal(t, []byte("10\x1faFoo\x1fbBar\x1e"), b)

	back, diags := DecodeDataField("245", b, utf8)
	assert.Empty(t, diags)
	assert.Equal(t, f, back)
}

func TestEncodeDataField_ReservedByte(t *testing.T) {
	f := marc.NewDataField("500", ' ', ' ').AddSubfield('a', "bad\x1fvalue")
	_, err := EncodeDataField(f, utf8)
	require.Error(t, err)
	d, ok := AsDiagnostic(err)
	require.True(t, ok)
	assert.Equal(t, CodeReservedByte, d.Code)

	tests := []struct {
		name  string
		field *marc.DataField
	}{
		{"code is field terminator", marc.NewDataField("245", '1', '0').
			AddSubfield(marc.FieldTerminator, "Title").AddSubfield('b', "sub")},
		{"code is subfield delimiter", marc.NewDataField("245", '1', '0').
			AddSubfield(marc.SubfieldDelimiter, "Title")},
		{"indicator is field terminator", marc.NewDataField("245", marc.FieldTerminator, '0').
			AddSubfield('a', "Title")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EncodeDataField(tt.field, utf8)
			require.Error(t, err)
			d, ok := AsDiagnostic(err)
			require.True(t, ok)
			assert.Equal(t, CodeReservedByte, d.Code)
			assert.Equal(t, SeverityFatal, d.Severity)
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestEncodeControlField(t *testing.T) {
	b, err := EncodeControlField(marc.NewControlField("001", "12345"), utf8)
	require.NoError(t, err)
	assert.Equal(t, []byte("12345\x1e"), b)
}

func TestLatin1Text(t *testing.T) {
	latin1 := TextCodecFor(EncodingLatin1)

	f, diags := DecodeDataField("245", []byte{'0', '0', 0x1F, 'a', 'C', 0xE9, 'z', 'a', 'n', 'n', 'e', 0x1E}, latin1)
	assert.Empty(t, diags)
	assert.Equal(t, "Cézanne", f.Subfields[0].Data)

	b, err := EncodeDataField(f, latin1)
	require.NoError(t, err)
	assert.Equal(t, []byte{'0', '0', 0x1F, 'a', 'C', 0xE9, 'z', 'a', 'n', 'n', 'e', 0x1E}, b)

	_, err = EncodeControlField(marc.NewControlField("001", "日本"), latin1)
	assert.ErrorIs(t, err, ErrUnmappableText)
}

func TestParseEncoding(t *testing.T) {
	for in, want := range map[string]Encoding{
		"":           EncodingAuto,
		"auto":       EncodingAuto,
		"latin1":     EncodingLatin1,
		"ISO-8859-1": EncodingLatin1,
		"utf-8":      EncodingUTF8,
	} {
		got, err := ParseEncoding(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseEncoding("marc8")
	assert.Error(t, err)
}

func TestEncoding_Resolve(t *testing.T) {
	l := marc.NewLeader()
	assert.Equal(t, EncodingLatin1, EncodingAuto.Resolve(l))
	l.CharCodingScheme = 'a'
	assert.Equal(t, EncodingUTF8, EncodingAuto.Resolve(l))
	assert.Equal(t, EncodingLatin1, EncodingLatin1.Resolve(l))
}
