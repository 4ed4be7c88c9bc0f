// Package hostvfs is the filesystem interceptor (spec.md §4.2). Every
// filesystem primitive a dependency calls is reduced to a policy.Operation,
// evaluated through the behavior monitor, and only then forwarded to the
// real filesystem — exactly mirroring hostnet's shape for network calls.
package hostvfs

import (
	"context"
	"io"
	"os"
)

// DirEntry mirrors os.DirEntry so callers don't need to import os directly
// through this package's interface.
type DirEntry = os.DirEntry

// FileInfo mirrors os.FileInfo.
type FileInfo = os.FileInfo

// HostVFS is the capability surface a dependency's filesystem calls are
// reduced to.
type HostVFS interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFile(ctx context.Context, path string, data []byte, perm os.FileMode) error
	AppendFile(ctx context.Context, path string, data []byte) error
	Stat(ctx context.Context, path string) (FileInfo, error)
	Lstat(ctx context.Context, path string) (FileInfo, error)
	ReadDir(ctx context.Context, path string) ([]DirEntry, error)
	Exists(ctx context.Context, path string) bool
	Mkdir(ctx context.Context, path string, perm os.FileMode) error
	MkdirAll(ctx context.Context, path string, perm os.FileMode) error
	Remove(ctx context.Context, path string) error
	RemoveAll(ctx context.Context, path string) error
	Rename(ctx context.Context, oldPath, newPath string) error
	Copy(ctx context.Context, src, dst string) error
	Link(ctx context.Context, oldPath, newPath string) error
	Symlink(ctx context.Context, oldPath, newPath string) error
	Readlink(ctx context.Context, path string) (string, error)
	Realpath(ctx context.Context, path string) (string, error)
	Chdir(ctx context.Context, path string) error

	// Open returns a Handle for subsequent read/write calls. Per spec.md
	// §4.2 step 6, the handle re-applies policy against the path that
	// opened it on every operation, so "open then operate on the handle"
	// cannot bypass the check that would have applied to a direct call.
	Open(ctx context.Context, path string, flag int, perm os.FileMode) (Handle, error)
}

// Handle wraps an open file descriptor so reads/writes on it are still
// attributable to the path that opened it.
type Handle interface {
	io.ReadWriteCloser
	Path() string
}
