package api

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		request Request
	}{
		{
			name:    "get files",
			request: NewGetFilesRequest("/tmp/somewhere"),
		},
		{
			name:    "find files",
			request: NewFindFilesRequest("/proj", `^foo.*\.go$`),
		},
		{
			name:    "create file",
			request: NewCreateFileRequest("/tmp/new", FileTypeDir),
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			payload, err := EncodeRequest(test.request)
			require.NoError(t, err)

			decoded, err := DecodeRequest(payload)
			require.NoError(t, err)
			assert.Equal(t, test.request, decoded)
		})
	}
}

func TestResponseRoundTrip(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name     string
		response Response
	}{
		{
			name: "get files result",
			response: Response{
				ID:   id,
				Last: true,
				Params: ResponseParams{GetFiles: &GetFilesResult{
					Files: []FileInfo{
						{Path: "/d/a", Type: FileTypeFile},
						{Path: "/d/b", Type: FileTypeDir},
						{Path: "/d/c", Type: FileTypeOther, TypeErr: "stat failed"},
					},
				}},
			},
		},
		{
			name: "get files error",
			response: Response{
				ID:   id,
				Last: true,
				Params: ResponseParams{GetFiles: &GetFilesResult{
					Err: &GetFilesError{Kind: GetFilesErrPermissionDenied},
				}},
			},
		},
		{
			name: "find files stream element",
			response: Response{
				ID:     id,
				Params: ResponseParams{FindFiles: &FindFilesResult{Entries: []Entry{{Path: "/proj/foo.go"}}}},
			},
		},
		{
			name: "create file already exists",
			response: Response{
				ID:   id,
				Last: true,
				Params: ResponseParams{CreateFile: &CreateFileResult{
					Err: &CreateFileError{Kind: CreateFileErrAlreadyExists, Path: "/x/already_there"},
				}},
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			payload, err := EncodeResponse(test.response)
			require.NoError(t, err)

			decoded, err := DecodeResponse(payload)
			require.NoError(t, err)
			assert.Equal(t, test.response, decoded)
		})
	}
}

func TestIDsRoundTripBitExact(t *testing.T) {
	request := NewGetFilesRequest("/")

	payload, err := EncodeRequest(request)
	require.NoError(t, err)
	decoded, err := DecodeRequest(payload)
	require.NoError(t, err)

	assert.Equal(t, [16]byte(request.ID), [16]byte(decoded.ID))
}

func TestFreshRequestsHaveDistinctIDs(t *testing.T) {
	a := NewGetFilesRequest("/")
	b := NewGetFilesRequest("/")
	assert.NotEqual(t, a.ID, b.ID)
}

func TestCreateFileErrorMessages(t *testing.T) {
	err := &CreateFileError{Kind: CreateFileErrAlreadyExists, Path: "/x/already_there"}
	assert.Equal(t, `The file "already_there" already exists.`, err.Error())

	other := &CreateFileError{Kind: CreateFileErrOther, Message: "disk full"}
	assert.Equal(t, "disk full", other.Error())
}
