package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/marcstream/pkg/codec"
	"github.com/ssargent/marcstream/pkg/marc"
	"github.com/ssargent/marcstream/pkg/marcxml"
	"github.com/ssargent/marcstream/pkg/metrics"
	"github.com/ssargent/marcstream/pkg/stream"
)

// setupTestServer returns a router backed by a private registry
func setupTestServer(t *testing.T, config ServerConfig) (http.Handler, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	server := NewServer(config, Dependencies{Metrics: metrics.NewMetrics(reg)})
	return server.Routes(reg), reg
}

func sampleRecord(t *testing.T, cn string) *marc.Record {
	t.Helper()
	rec := marc.NewRecord()
	require.NoError(t, rec.AddField(marc.NewControlField("001", cn)))
	require.NoError(t, rec.AddField(marc.NewDataField("245", '1', '0').
		AddSubfield('a', "Café society :").
		AddSubfield('b', "a study.")))
	return rec
}

func tapeBytes(t *testing.T, records ...*marc.Record) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := stream.NewWriter(&buf, stream.WriterConfig{})
	for _, rec := range records {
		_, err := w.Write(rec)
		require.NoError(t, err)
	}
	require.NoError(t, w.Flush())
	return buf.Bytes()
}

// decodeResponse unwraps the APIResponse envelope around a DecodeResponse
func decodeResponse(t *testing.T, body *bytes.Buffer) DecodeResponse {
	t.Helper()
	var envelope struct {
		Success bool           `json:"success"`
		Data    DecodeResponse `json:"data"`
		Error   string         `json:"error"`
	}
	require.NoError(t, json.NewDecoder(body).Decode(&envelope))
	require.True(t, envelope.Success, envelope.Error)
	return envelope.Data
}

func TestServer_handleHealth(t *testing.T) {
	router, _ := setupTestServer(t, ServerConfig{})

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response APIResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.True(t, response.Success)
	assert.Equal(t, map[string]interface{}{"status": "healthy"}, response.Data)
}

func TestServer_handleDecode(t *testing.T) {
	router, _ := setupTestServer(t, ServerConfig{})
	body := tapeBytes(t, sampleRecord(t, "ocm1"), sampleRecord(t, "ocm2"))

	req := httptest.NewRequest("POST", "/api/v1/records/decode", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get(DiagnosticCountHeader))

	resp := decodeResponse(t, w.Body)
	assert.True(t, resp.Complete)
	assert.Equal(t, "latin1", resp.Encoding)
	assert.Empty(t, resp.Diagnostics)
	require.Len(t, resp.Records, 2)

	first := resp.Records[0]
	assert.Equal(t, string(body[:24]), first.Leader)
	assert.Equal(t, []ControlFieldJSON{{Tag: "001", Data: "ocm1"}}, first.ControlFields)
	require.Len(t, first.DataFields, 1)
	assert.Equal(t, DataFieldJSON{
		Tag:  "245",
		Ind1: "1",
		Ind2: "0",
		Subfields: []SubfieldJSON{
			{Code: "a", Data: "Café society :"},
			{Code: "b", Data: "a study."},
		},
	}, first.DataFields[0])
}

func TestServer_handleDecode_Diagnostics(t *testing.T) {
	router, _ := setupTestServer(t, ServerConfig{})
	good := tapeBytes(t, sampleRecord(t, "ocm1"))
	truncated := append(append([]byte{}, good...), good[:30]...)

	req := httptest.NewRequest("POST", "/api/v1/records/decode", bytes.NewReader(truncated))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get(DiagnosticCountHeader))

	resp := decodeResponse(t, w.Body)
	assert.False(t, resp.Complete)
	require.Len(t, resp.Records, 1)
	require.Len(t, resp.Diagnostics, 1)
	assert.Equal(t, "fatal", resp.Diagnostics[0].Severity)
	assert.Equal(t, string(codec.CodeTruncatedRecord), resp.Diagnostics[0].Code)
}

func TestServer_handleDecode_EncodingOverride(t *testing.T) {
	router, _ := setupTestServer(t, ServerConfig{})
	body := tapeBytes(t, sampleRecord(t, "ocm1"))

	t.Run("invalid encoding", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/v1/records/decode?encoding=marc8", bytes.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("utf8 override", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/v1/records/decode?encoding=utf8", bytes.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w.Body)
		assert.Equal(t, "utf8", resp.Encoding)
		// UTF-8 decoding is byte-transparent; the lone Latin-1 byte for é
		// becomes a replacement character once rendered as JSON
		require.Len(t, resp.Records, 1)
		assert.Equal(t, "Caf\uFFFD society :", resp.Records[0].DataFields[0].Subfields[0].Data)
	})
}

func TestServer_handleDecode_BodyTooLarge(t *testing.T) {
	router, _ := setupTestServer(t, ServerConfig{MaxBodyBytes: 10})
	body := tapeBytes(t, sampleRecord(t, "ocm1"))

	req := httptest.NewRequest("POST", "/api/v1/records/decode", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestServer_handleToMARCXML(t *testing.T) {
	router, _ := setupTestServer(t, ServerConfig{})
	body := tapeBytes(t, sampleRecord(t, "ocm1"))

	req := httptest.NewRequest("POST", "/api/v1/records/marcxml", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, contentTypeMARCXML, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), `<controlfield tag="001">ocm1</controlfield>`)

	records, err := marcxml.Unmarshal(w.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Café society :", records[0].DataFields()[0].Subfields[0].Data)
}

func TestServer_handleToMARCXML_Fatal(t *testing.T) {
	router, _ := setupTestServer(t, ServerConfig{})

	req := httptest.NewRequest("POST", "/api/v1/records/marcxml", strings.NewReader("not a record at all, really"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var response APIResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.False(t, response.Success)
	assert.Contains(t, response.Error, "InvalidLeader")
}

func TestServer_handleToMARCXML_UnrepresentableText(t *testing.T) {
	router, reg := setupTestServer(t, ServerConfig{})
	rec := marc.NewRecord()
	require.NoError(t, rec.AddField(marc.NewControlField("001", "ocm2")))
	require.NoError(t, rec.AddField(marc.NewDataField("245", '0', '0').AddSubfield('a', "\x1b(3Arabic\x1bs")))
	body := tapeBytes(t, rec)

	req := httptest.NewRequest("POST", "/api/v1/records/marcxml", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var response APIResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.False(t, response.Success)
	assert.Contains(t, response.Error, "UnmappableText")
	assert.Contains(t, response.Error, "tag 245")
	assert.Contains(t, response.Error, "control number ocm2")

	families, err := reg.Gather()
	require.NoError(t, err)
	found := false
	for _, mf := range families {
		if mf.GetName() != "marcstream_diagnostics_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["code"] == string(codec.CodeUnmappableText) && labels["severity"] == "fatal" {
				found = true
				assert.Equal(t, float64(1), m.GetCounter().GetValue())
			}
		}
	}
	assert.True(t, found, "unmappable text diagnostic counted")
}

func TestServer_handleEncode(t *testing.T) {
	router, _ := setupTestServer(t, ServerConfig{WriterEncoding: codec.EncodingUTF8})
	doc, err := marcxml.Marshal([]*marc.Record{sampleRecord(t, "ocm1"), sampleRecord(t, "ocm2")})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/records/encode", bytes.NewReader(doc))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, contentTypeMARC, w.Header().Get("Content-Type"))

	records, err := stream.UnmarshalAll(w.Body.Bytes(), stream.ReaderConfig{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[0].Leader.IsUnicode())
	cn, _ := records[1].ControlNumber()
	assert.Equal(t, "ocm2", cn)
	assert.Equal(t, "Café society :", records[1].DataFields()[0].Subfields[0].Data)
}

func TestServer_handleEncode_Errors(t *testing.T) {
	router, _ := setupTestServer(t, ServerConfig{})

	t.Run("malformed document", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/v1/records/encode", strings.NewReader("<record><leader>"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("field too long", func(t *testing.T) {
		rec := marc.NewRecord()
		require.NoError(t, rec.AddField(marc.NewDataField("500", ' ', ' ').
			AddSubfield('a', strings.Repeat("x", 10000))))
		doc, err := marcxml.Marshal([]*marc.Record{rec})
		require.NoError(t, err)

		req := httptest.NewRequest("POST", "/api/v1/records/encode", bytes.NewReader(doc))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "FieldTooLong")
	})
}

func TestServer_Metrics(t *testing.T) {
	router, _ := setupTestServer(t, ServerConfig{})
	body := tapeBytes(t, sampleRecord(t, "ocm1"))

	req := httptest.NewRequest("POST", "/api/v1/records/decode", bytes.NewReader(body))
	router.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	out := w.Body.String()
	assert.Contains(t, out, `marcstream_records_total{direction="decode"} 1`)
	assert.Contains(t, out, `marcstream_http_requests_total{endpoint="/api/v1/records/decode",method="POST",status_code="200"} 1`)
}
