package printer

import (
	"bytes"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chensy618/HoneyFarm/internal/eventlog"
)

func startTestServer(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	elog := eventlog.NewWriter(&bytes.Buffer{})
	srv := NewServer(ServerConfig{
		Timeout:   2 * time.Second,
		MaxConns:  8,
		UploadDir: dir,
	}, elog, NewIdentityPool(false), nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go srv.Serve(ln) //nolint:errcheck
	t.Cleanup(func() { srv.Close() })
	return ln.Addr().String(), dir
}

func dialTest(t *testing.T, addr string) net.Conn {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readResponse(t *testing.T, conn net.Conn) string {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second)) //nolint:errcheck
	buf := make([]byte, 4096)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	return string(buf[:n])
}

func uploadedFiles(t *testing.T, dir, ext string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ext) {
			names = append(names, e.Name())
		}
	}
	return names
}

func TestServer_InfoID(t *testing.T) {
	addr, _ := startTestServer(t)
	conn := dialTest(t, addr)

	_, err := conn.Write([]byte("\x1b%-12345X@PJL INFO ID\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "@PJL INFO ID\r\nhp LaserJet 4200\r\n\x1b", readResponse(t, conn))
}

func TestServer_CommandPipeline(t *testing.T) {
	addr, _ := startTestServer(t)
	conn := dialTest(t, addr)

	_, err := conn.Write([]byte("@PJL USTATUSOFF\r\n@PJL INFO STATUS\r\n"))
	require.NoError(t, err)
	got := readResponse(t, conn)
	assert.Equal(t, "@PJL INFO STATUS\r\nCODE=10001\r\nDISPLAY=\"Ready\"\r\nONLINE=True", got)
}

func TestServer_PostScriptCapture(t *testing.T) {
	addr, dir := startTestServer(t)
	conn := dialTest(t, addr)

	chunks := []string{
		"%!PS-Adobe-3.0\n/Helvetica findfont 12 scalefont setfont\n",
		"72 712 moveto (captured) show\n",
		"showpage\n%%EOF\n",
	}
	for _, c := range chunks {
		_, err := conn.Write([]byte(c))
		require.NoError(t, err)
		time.Sleep(20 * time.Millisecond) // separate reads on the server side
	}

	require.Eventually(t, func() bool {
		return len(uploadedFiles(t, dir, ".ps")) == 1
	}, 2*time.Second, 20*time.Millisecond)

	names := uploadedFiles(t, dir, ".ps")
	data, err := os.ReadFile(filepath.Join(dir, names[0]))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%!PS-Adobe-3.0"))
	assert.Contains(t, string(data), "(captured) show")
}

func TestServer_RawJobFlushedOnDisconnect(t *testing.T) {
	addr, dir := startTestServer(t)
	conn := dialTest(t, addr)

	_, err := conn.Write([]byte("hello world"))
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	conn.Close()

	require.Eventually(t, func() bool {
		return len(uploadedFiles(t, dir, ".txt")) == 1
	}, 2*time.Second, 20*time.Millisecond)

	names := uploadedFiles(t, dir, ".txt")
	data, err := os.ReadFile(filepath.Join(dir, names[0]))
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestServer_RawJobFlushedBeforePJLResponse(t *testing.T) {
	addr, dir := startTestServer(t)
	conn := dialTest(t, addr)

	// Job text and a PJL command in one stream: the command boundary must
	// flush the job before the command is answered.
	_, err := conn.Write([]byte("print me@PJL INFO ID\r\n"))
	require.NoError(t, err)
	got := readResponse(t, conn)
	assert.Equal(t, "@PJL INFO ID\r\nhp LaserJet 4200\r\n\x1b", got)

	names := uploadedFiles(t, dir, ".txt")
	require.Len(t, names, 1)
	data, err := os.ReadFile(filepath.Join(dir, names[0]))
	require.NoError(t, err)
	assert.Equal(t, "print me", string(data))
}

func TestServer_BinaryGarbageClosesConnection(t *testing.T) {
	addr, _ := startTestServer(t)
	conn := dialTest(t, addr)

	_, err := conn.Write([]byte{0xff, 0xfe, 0x00, 0x80, 0x81})
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second)) //nolint:errcheck
	buf := make([]byte, 16)
	_, err = conn.Read(buf)
	assert.Error(t, err) // server closes without replying
}
