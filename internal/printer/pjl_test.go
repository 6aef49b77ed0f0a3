package printer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitCommands(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "two commands",
			in:   "@PJL USTATUSOFF\r\n@PJL INFO ID\r\n",
			want: []string{"@PJL USTATUSOFF\r\n", "@PJL INFO ID\r\n"},
		},
		{
			name: "raw job only",
			in:   "This is my print job",
			want: []string{"This is my print job"},
		},
		{
			name: "raw job then command",
			in:   "job text@PJL INFO STATUS\r\n",
			want: []string{"job text", "@PJL INFO STATUS\r\n"},
		},
		{
			name: "single command",
			in:   "@PJL ECHO DELIMITER",
			want: []string{"@PJL ECHO DELIMITER"},
		},
		{
			name: "empty input",
			in:   "",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitCommands(tt.in))
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		kind Kind
		body string
	}{
		{"@PJL ECHO DELIMITER42", KindEcho, "ECHO DELIMITER42"},
		{"@PJL USTATUSOFF\r\n", KindUstatusOff, "USTATUSOFF\r\n"},
		{"@PJL INFO ID\r\n", KindInfoID, "INFO ID\r\n"},
		{"@PJL INFO STATUS\r\n", KindInfoStatus, "INFO STATUS\r\n"},
		{"@PJL FSDIRLIST NAME=\"0:/\" ENTRY=1 COUNT=65535", KindFSDirList, "FSDIRLIST NAME=\"0:/\" ENTRY=1 COUNT=65535"},
		{"@PJL FSQUERY NAME=\"0:/PJL\"", KindFSQuery, "FSQUERY NAME=\"0:/PJL\""},
		{"@PJL FSMKDIR NAME=\"0:/tmp\"", KindFSMkdir, "FSMKDIR NAME=\"0:/tmp\""},
		{"@PJL FSUPLOAD NAME=\"0:/x\" OFFSET=0 SIZE=100", KindFSUpload, "FSUPLOAD NAME=\"0:/x\" OFFSET=0 SIZE=100"},
		{"@PJL FSDOWNLOAD SIZE=4 NAME=\"0:/x\"\r\ndata", KindFSDownload, "FSDOWNLOAD SIZE=4 NAME=\"0:/x\"\r\ndata"},
		{"@PJL RDYMSG DISPLAY=\"pwned\"", KindRdyMsg, "RDYMSG DISPLAY=\"pwned\""},
		{"@PJL FROBNICATE", KindUnknown, "FROBNICATE"},
		{"not pjl at all", KindRawData, "not pjl at all"},
		{"  \r\n@PJL INFO ID", KindInfoID, "INFO ID"},
	}
	for _, tt := range tests {
		got := Parse(tt.in)
		assert.Equal(t, tt.kind, got.Kind, tt.in)
		assert.Equal(t, tt.body, got.Body, tt.in)
	}
}

func TestParse_InfoIDBeforeInfoStatus(t *testing.T) {
	// Prefix collision: both start with INFO.
	assert.Equal(t, KindInfoID, Parse("@PJL INFO ID").Kind)
	assert.Equal(t, KindInfoStatus, Parse("@PJL INFO STATUS").Kind)
}

func TestParseParams(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want map[string]string
	}{
		{
			name: "packed pairs",
			in:   "FSUPLOAD NAME=\"0:/webServer/home\" OFFSET=0 SIZE=100",
			want: map[string]string{"NAME": `"0:/webServer/home"`, "OFFSET": "0", "SIZE": "100"},
		},
		{
			// The regex strategy captures the quoted value without its
			// quotes; only the naive strategy keeps them.
			name: "spaced pairs",
			in:   "FSDIRLIST NAME = \"0:/\" COUNT = 65535",
			want: map[string]string{"NAME": "0:/", "COUNT": "65535"},
		},
		{
			name: "mixed, naive split wins per key",
			in:   "RDYMSG DISPLAY=\"intruder\" EXTRA = 7",
			want: map[string]string{"DISPLAY": `"intruder"`, "EXTRA": "7"},
		},
		{
			name: "quoted value followed by payload",
			in:   "FSDOWNLOAD NAME=\"0:/f\"\r\npayload",
			want: map[string]string{"NAME": `"0:/f"`},
		},
		{
			name: "no params",
			in:   "USTATUSOFF",
			want: map[string]string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseParams(tt.in))
		})
	}
}

func TestPathParam(t *testing.T) {
	assert.Equal(t, "/webServer/home", pathParam(`"0:/webServer/home"`))
	assert.Equal(t, "/PJL", pathParam("0:/PJL"))
	assert.Equal(t, "/plain", pathParam("/plain"))
	assert.Equal(t, "", pathParam(""))
}

func TestParseParams_QuotedValueKeepsQuotes(t *testing.T) {
	params := ParseParams(`RDYMSG DISPLAY="hacked"`)
	require.Contains(t, params, "DISPLAY")
	assert.Equal(t, `"hacked"`, params["DISPLAY"])
}
