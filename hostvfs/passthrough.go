package hostvfs

import (
	"context"
	"io"
	"os"
)

type passthrough struct{}

// NewPassthrough returns a HostVFS that performs every operation for real,
// with no policy applied.
func NewPassthrough() HostVFS { return passthrough{} }

func (passthrough) ReadFile(ctx context.Context, path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (passthrough) WriteFile(ctx context.Context, path string, data []byte, perm os.FileMode) error {
	return os.WriteFile(path, data, perm)
}

func (passthrough) AppendFile(ctx context.Context, path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(data)
	return err
}

func (passthrough) Stat(ctx context.Context, path string) (FileInfo, error) { return os.Stat(path) }

func (passthrough) Lstat(ctx context.Context, path string) (FileInfo, error) { return os.Lstat(path) }

func (passthrough) ReadDir(ctx context.Context, path string) ([]DirEntry, error) {
	return os.ReadDir(path)
}

func (passthrough) Exists(ctx context.Context, path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (passthrough) Mkdir(ctx context.Context, path string, perm os.FileMode) error {
	return os.Mkdir(path, perm)
}

func (passthrough) MkdirAll(ctx context.Context, path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (passthrough) Remove(ctx context.Context, path string) error { return os.Remove(path) }

func (passthrough) RemoveAll(ctx context.Context, path string) error { return os.RemoveAll(path) }

func (passthrough) Rename(ctx context.Context, oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

func (passthrough) Copy(ctx context.Context, src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

func (passthrough) Link(ctx context.Context, oldPath, newPath string) error {
	return os.Link(oldPath, newPath)
}

func (passthrough) Symlink(ctx context.Context, oldPath, newPath string) error {
	return os.Symlink(oldPath, newPath)
}

func (passthrough) Readlink(ctx context.Context, path string) (string, error) {
	return os.Readlink(path)
}

func (passthrough) Realpath(ctx context.Context, path string) (string, error) {
	return realpath(path)
}

func (passthrough) Chdir(ctx context.Context, path string) error { return os.Chdir(path) }

func (passthrough) Open(ctx context.Context, path string, flag int, perm os.FileMode) (Handle, error) {
	f, err := os.OpenFile(path, flag, perm)
	if err != nil {
		return nil, err
	}

	return &osHandle{File: f, path: path}, nil
}

type osHandle struct {
	*os.File
	path string
}

func (h *osHandle) Path() string { return h.path }
