// Package api defines the request/response model shared by the insh client
// and the inshd daemon, along with its wire encoding.
package api

import (
	"fmt"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// FileType classifies a file system entry.
type FileType uint8

// File type values.
const (
	FileTypeFile FileType = iota
	FileTypeDir
	FileTypeOther
)

// String returns a human readable name for the file type.
func (t FileType) String() string {
	switch t {
	case FileTypeFile:
		return "file"
	case FileTypeDir:
		return "directory"
	default:
		return "other"
	}
}

// IsDir reports whether the type is a directory.
func (t FileType) IsDir() bool {
	return t == FileTypeDir
}

// FileInfo describes one entry of a directory listing. TypeErr carries a
// per-entry stat failure without failing the enclosing listing.
type FileInfo struct {
	Path    string   `cbor:"path"`
	Type    FileType `cbor:"type"`
	TypeErr string   `cbor:"type_err,omitempty"`
}

// Name returns the base name of the entry.
func (fi FileInfo) Name() string {
	return filepath.Base(fi.Path)
}

// Entry is a single find result.
type Entry struct {
	Path string `cbor:"path"`
}

// Name returns the base name of the entry.
func (e Entry) Name() string {
	return filepath.Base(e.Path)
}

// Request is a unit of work submitted by a client. Exactly one of the params
// fields is set.
type Request struct {
	ID     uuid.UUID     `cbor:"id"`
	Params RequestParams `cbor:"params"`
}

// RequestParams is the tagged parameter variant of a request. Exactly one
// field is non-nil.
type RequestParams struct {
	GetFiles   *GetFilesParams   `cbor:"get_files,omitempty"`
	FindFiles  *FindFilesParams  `cbor:"find_files,omitempty"`
	CreateFile *CreateFileParams `cbor:"create_file,omitempty"`
}

// GetFilesParams asks for the immediate children of a directory.
type GetFilesParams struct {
	Dir string `cbor:"dir"`
}

// FindFilesParams asks for all files under a directory whose name matches a
// regular expression.
type FindFilesParams struct {
	Dir     string `cbor:"dir"`
	Pattern string `cbor:"pattern"`
}

// CreateFileParams asks for a file or directory to be created.
type CreateFileParams struct {
	Path     string   `cbor:"path"`
	FileType FileType `cbor:"file_type"`
}

// NewGetFilesRequest returns a GetFiles request with a fresh id.
func NewGetFilesRequest(dir string) Request {
	return Request{
		ID:     uuid.New(),
		Params: RequestParams{GetFiles: &GetFilesParams{Dir: dir}},
	}
}

// NewFindFilesRequest returns a FindFiles request with a fresh id.
func NewFindFilesRequest(dir, pattern string) Request {
	return Request{
		ID:     uuid.New(),
		Params: RequestParams{FindFiles: &FindFilesParams{Dir: dir, Pattern: pattern}},
	}
}

// NewCreateFileRequest returns a CreateFile request with a fresh id.
func NewCreateFileRequest(path string, fileType FileType) Request {
	return Request{
		ID:     uuid.New(),
		Params: RequestParams{CreateFile: &CreateFileParams{Path: path, FileType: fileType}},
	}
}

// Response is a unit of work output. Responses carry the id of the request
// that produced them; exactly one response per request has Last set.
type Response struct {
	ID     uuid.UUID      `cbor:"id"`
	Last   bool           `cbor:"last"`
	Params ResponseParams `cbor:"params"`
}

// ResponseParams is the tagged parameter variant of a response. Exactly one
// field is non-nil.
type ResponseParams struct {
	GetFiles   *GetFilesResult   `cbor:"get_files,omitempty"`
	FindFiles  *FindFilesResult  `cbor:"find_files,omitempty"`
	CreateFile *CreateFileResult `cbor:"create_file,omitempty"`
}

// GetFilesResult is the outcome of listing a directory. Err is set when the
// directory itself could not be read; per-entry failures live on the entries.
type GetFilesResult struct {
	Files []FileInfo     `cbor:"files"`
	Err   *GetFilesError `cbor:"err,omitempty"`
}

// GetFilesErrorKind classifies a directory read failure.
type GetFilesErrorKind uint8

// Directory read failure kinds.
const (
	GetFilesErrDirDoesNotExist GetFilesErrorKind = iota
	GetFilesErrPermissionDenied
	GetFilesErrOther
)

// GetFilesError describes why a directory could not be read.
type GetFilesError struct {
	Kind    GetFilesErrorKind `cbor:"kind"`
	Message string            `cbor:"message,omitempty"`
}

func (e *GetFilesError) Error() string {
	switch e.Kind {
	case GetFilesErrDirDoesNotExist:
		return "The directory does not exist."
	case GetFilesErrPermissionDenied:
		return "Permission denied."
	default:
		return e.Message
	}
}

// FindFilesResult carries a batch of find entries. Streaming responses carry
// one entry each; the terminal response carries none. Err is set on the
// terminal response when the find could not run at all (a bad pattern).
type FindFilesResult struct {
	Entries []Entry `cbor:"entries"`
	Err     string  `cbor:"err,omitempty"`
}

// CreateFileResult is the outcome of creating a file or directory.
type CreateFileResult struct {
	Err *CreateFileError `cbor:"err,omitempty"`
}

// CreateFileErrorKind classifies a create failure.
type CreateFileErrorKind uint8

// Create failure kinds.
const (
	CreateFileErrAlreadyExists CreateFileErrorKind = iota
	CreateFileErrUnsupportedFileType
	CreateFileErrOther
)

// CreateFileError describes why a file could not be created.
type CreateFileError struct {
	Kind    CreateFileErrorKind `cbor:"kind"`
	Path    string              `cbor:"path,omitempty"`
	Message string              `cbor:"message,omitempty"`
}

func (e *CreateFileError) Error() string {
	switch e.Kind {
	case CreateFileErrAlreadyExists:
		return fmt.Sprintf("The file %q already exists.", filepath.Base(e.Path))
	case CreateFileErrUnsupportedFileType:
		return fmt.Sprintf("Unsupported file type: %s.", e.Message)
	default:
		return e.Message
	}
}

// EncodeRequest serializes a request to its wire payload.
func EncodeRequest(req Request) ([]byte, error) {
	return cbor.Marshal(req)
}

// DecodeRequest deserializes a request from its wire payload.
func DecodeRequest(payload []byte) (Request, error) {
	var req Request
	err := cbor.Unmarshal(payload, &req)
	return req, err
}

// EncodeResponse serializes a response to its wire payload.
func EncodeResponse(resp Response) ([]byte, error) {
	return cbor.Marshal(resp)
}

// DecodeResponse deserializes a response from its wire payload.
func DecodeResponse(payload []byte) (Response, error) {
	var resp Response
	err := cbor.Unmarshal(payload, &resp)
	return resp, err
}
