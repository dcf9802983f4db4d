package output_test

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rusub/rusub/internal/dnsrecord"
	"github.com/rusub/rusub/internal/output"
	"github.com/rusub/rusub/internal/scanner"
)

func sample() scanner.ScanResult {
	return scanner.ScanResult{
		Subdomain: "www.example.test",
		Answers:   []string{"93.184.216.34"},
		Records:   []dnsrecord.Record{{Type: dnsrecord.TypeA, Data: "93.184.216.34"}},
	}
}

func TestSink_JSONL(t *testing.T) {
	var buf bytes.Buffer
	sink, err := output.NewSink(&buf, output.FormatJSONL, false)
	require.NoError(t, err)
	require.NoError(t, sink.Write(sample()))
	require.NoError(t, sink.Close())

	assert.Equal(t,
		`{"subdomain":"www.example.test","answers":["93.184.216.34"],"records":[{"rtype":"A","data":"93.184.216.34"}]}`+"\n",
		buf.String())
}

func TestSink_JSON_ArrayOfMultiple(t *testing.T) {
	var buf bytes.Buffer
	sink, err := output.NewSink(&buf, output.FormatJSON, false)
	require.NoError(t, err)
	require.NoError(t, sink.Write(sample()))
	require.NoError(t, sink.Write(scanner.ScanResult{Subdomain: "api.example.test", Answers: []string{"1.2.3.4"}}))
	require.NoError(t, sink.Close())

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "www.example.test", decoded[0]["subdomain"])
	assert.Equal(t, "api.example.test", decoded[1]["subdomain"])
}

func TestSink_TXT(t *testing.T) {
	var buf bytes.Buffer
	sink, err := output.NewSink(&buf, output.FormatTXT, false)
	require.NoError(t, err)
	require.NoError(t, sink.Write(sample()))
	require.NoError(t, sink.Close())
	assert.Equal(t, "www.example.test\t93.184.216.34\n", buf.String())
}

func TestSink_TXT_CNAMEOnlyFallback(t *testing.T) {
	var buf bytes.Buffer
	sink, err := output.NewSink(&buf, output.FormatTXT, false)
	require.NoError(t, err)
	r := scanner.ScanResult{
		Subdomain: "alias.example.test",
		Records:   []dnsrecord.Record{{Type: dnsrecord.TypeCNAME, Data: "target.example.test"}},
	}
	require.NoError(t, sink.Write(r))
	require.NoError(t, sink.Close())
	assert.Equal(t, "alias.example.test\tCNAME target.example.test\n", buf.String())
}

func TestSink_CSV(t *testing.T) {
	var buf bytes.Buffer
	sink, err := output.NewSink(&buf, output.FormatCSV, false)
	require.NoError(t, err)
	require.NoError(t, sink.Write(sample()))
	require.NoError(t, sink.Write(scanner.ScanResult{Subdomain: "dual.example.test", Answers: []string{"1.1.1.1", "2.2.2.2"}}))
	require.NoError(t, sink.Close())

	assert.Equal(t,
		"subdomain;answers\nwww.example.test;93.184.216.34\ndual.example.test;1.1.1.1|2.2.2.2\n",
		buf.String())
}

func TestSink_Gzip(t *testing.T) {
	var buf bytes.Buffer
	sink, err := output.NewSink(&buf, output.FormatJSONL, true)
	require.NoError(t, err)
	require.NoError(t, sink.Write(sample()))
	require.NoError(t, sink.Close())

	zr, err := gzip.NewReader(&buf)
	require.NoError(t, err)
	defer zr.Close()
	data, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Contains(t, string(data), "www.example.test")
}

func TestShouldGzip(t *testing.T) {
	assert.True(t, output.ShouldGzip("out.jsonl.gz", false))
	assert.True(t, output.ShouldGzip("out.jsonl", true))
	assert.False(t, output.ShouldGzip("out.jsonl", false))
}

func TestParseFormat_Invalid(t *testing.T) {
	_, err := output.ParseFormat("xml")
	assert.Error(t, err)
}
