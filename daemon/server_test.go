package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AustinScola/insh-sub000/api"
	inshclient "github.com/AustinScola/insh-sub000/client"
)

// startTestServer runs a server on a socket under a temp dir and returns the
// socket path. The server is stopped and joined in cleanup.
func startTestServer(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	socketPath := filepath.Join(dir, "inshd.sock")
	pidFilePath := filepath.Join(dir, "inshd.pid")
	require.NoError(t, os.WriteFile(pidFilePath, []byte("1\n"), 0o600))

	server := NewServer(Options{
		SocketPath:  socketPath,
		PidFilePath: pidFilePath,
		NumWorkers:  2,
	})

	done := make(chan error, 1)
	go func() {
		done <- server.Run()
	}()
	waitFor(t, func() bool {
		_, err := os.Stat(socketPath)
		return err == nil
	})

	t.Cleanup(func() {
		close(server.stop)
		require.NoError(t, <-done)
		// Graceful shutdown removes the socket and the pid file.
		_, err := os.Stat(socketPath)
		assert.True(t, os.IsNotExist(err))
		_, err = os.Stat(pidFilePath)
		assert.True(t, os.IsNotExist(err))
	})
	return socketPath
}

func TestServerServesGetFiles(t *testing.T) {
	socketPath := startTestServer(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.txt"), []byte("hi"), 0o644))

	conn, err := inshclient.Dial(socketPath)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	writer := api.NewFrameWriter(conn)
	reader := api.NewFrameReader(conn)

	req := api.NewGetFilesRequest(dir)
	require.NoError(t, writer.WriteRequest(req))

	resp, err := reader.ReadResponse()
	require.NoError(t, err)
	assert.Equal(t, req.ID, resp.ID)
	assert.True(t, resp.Last)
	require.NotNil(t, resp.Params.GetFiles)
	require.Len(t, resp.Params.GetFiles.Files, 1)
	assert.Equal(t, "hello.txt", resp.Params.GetFiles.Files[0].Name())
}

func TestServerServesEmptyDirectory(t *testing.T) {
	socketPath := startTestServer(t)

	conn, err := inshclient.Dial(socketPath)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	writer := api.NewFrameWriter(conn)
	reader := api.NewFrameReader(conn)

	req := api.NewGetFilesRequest(t.TempDir())
	require.NoError(t, writer.WriteRequest(req))

	resp, err := reader.ReadResponse()
	require.NoError(t, err)
	assert.True(t, resp.Last)
	assert.Empty(t, resp.Params.GetFiles.Files)
	assert.Nil(t, resp.Params.GetFiles.Err)
}

func TestServerStreamsFindFiles(t *testing.T) {
	socketPath := startTestServer(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "foo.rs"), nil, 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "foo_bar.rs"), nil, 0o644))

	conn, err := inshclient.Dial(socketPath)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	writer := api.NewFrameWriter(conn)
	reader := api.NewFrameReader(conn)

	req := api.NewFindFilesRequest(dir, `^foo.*\.rs$`)
	require.NoError(t, writer.WriteRequest(req))

	var paths []string
	for {
		resp, err := reader.ReadResponse()
		require.NoError(t, err)
		require.Equal(t, req.ID, resp.ID)
		require.NotNil(t, resp.Params.FindFiles)
		for _, entry := range resp.Params.FindFiles.Entries {
			paths = append(paths, entry.Path)
		}
		if resp.Last {
			assert.Empty(t, resp.Params.FindFiles.Entries)
			break
		}
	}
	sort.Strings(paths)
	assert.Equal(t, []string{
		filepath.Join(dir, "foo.rs"),
		filepath.Join(dir, "sub", "foo_bar.rs"),
	}, paths)
}

func TestServerInterleavesClients(t *testing.T) {
	socketPath := startTestServer(t)

	dirA := t.TempDir()
	dirB := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dirA, "a"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dirB, "b"), nil, 0o644))

	connA, err := inshclient.Dial(socketPath)
	require.NoError(t, err)
	defer func() { _ = connA.Close() }()
	connB, err := inshclient.Dial(socketPath)
	require.NoError(t, err)
	defer func() { _ = connB.Close() }()

	reqA := api.NewGetFilesRequest(dirA)
	reqB := api.NewGetFilesRequest(dirB)
	require.NoError(t, api.NewFrameWriter(connA).WriteRequest(reqA))
	require.NoError(t, api.NewFrameWriter(connB).WriteRequest(reqB))

	respB, err := api.NewFrameReader(connB).ReadResponse()
	require.NoError(t, err)
	assert.Equal(t, reqB.ID, respB.ID)
	assert.Equal(t, "b", respB.Params.GetFiles.Files[0].Name())

	respA, err := api.NewFrameReader(connA).ReadResponse()
	require.NoError(t, err)
	assert.Equal(t, reqA.ID, respA.ID)
	assert.Equal(t, "a", respA.Params.GetFiles.Files[0].Name())
}

func TestServerSurvivesClientDisconnectMidFind(t *testing.T) {
	socketPath := startTestServer(t)

	// A tree big enough that the find is still streaming when the client
	// goes away.
	dir := t.TempDir()
	for i := 0; i < 500; i++ {
		name := fmt.Sprintf("match-%03d.go", i)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	conn, err := inshclient.Dial(socketPath)
	require.NoError(t, err)
	writer := api.NewFrameWriter(conn)
	reader := api.NewFrameReader(conn)

	req := api.NewFindFilesRequest(dir, `\.go$`)
	require.NoError(t, writer.WriteRequest(req))

	// Read a couple of streamed responses, then disconnect abruptly.
	_, err = reader.ReadResponse()
	require.NoError(t, err)
	_, err = reader.ReadResponse()
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	// The daemon keeps serving other clients.
	other, err := inshclient.Dial(socketPath)
	require.NoError(t, err)
	defer func() { _ = other.Close() }()

	okDir := t.TempDir()
	okReq := api.NewGetFilesRequest(okDir)
	require.NoError(t, api.NewFrameWriter(other).WriteRequest(okReq))
	resp, err := api.NewFrameReader(other).ReadResponse()
	require.NoError(t, err)
	assert.Equal(t, okReq.ID, resp.ID)
}
