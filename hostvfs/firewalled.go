package hostvfs

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/safedep/depwatch/exfil"
	"github.com/safedep/depwatch/monitor"
	"github.com/safedep/depwatch/origin"
	"github.com/safedep/depwatch/policy"
)

// Denied is returned when the policy engine denies a filesystem operation.
// spec.md §4.2 step 4: "raise a typed access error (EACCES-equivalent)".
type Denied struct {
	Verdict policy.Verdict
	Path    string
}

func (d *Denied) Error() string {
	return fmt.Sprintf("EACCES: %s denied for %s", d.Verdict.Reason, d.Path)
}

// firewalled wraps a HostVFS with policy enforcement: every call is
// resolved to an Operation (with realpath filled in when the target
// exists), checked through the monitor, and only forwarded on allow.
type firewalled struct {
	inner    HostVFS
	mon      *monitor.Monitor
	detector *exfil.Detector
}

// NewFirewalled wraps inner with policy enforcement. detector, if non-nil,
// records every allowed read against the exfiltration detector's
// sensitive-file tracker (spec.md §4.4) so a later outbound request can be
// correlated against it.
func NewFirewalled(inner HostVFS, mon *monitor.Monitor, detector *exfil.Detector) HostVFS {
	return &firewalled{inner: inner, mon: mon, detector: detector}
}

func (f *firewalled) recordRead(path string) {
	if f.detector == nil {
		return
	}

	f.detector.RecordRead(path, time.Now())
}

func (f *firewalled) check(ctx context.Context, kind policy.Kind, target string) error {
	return f.checkTwoPath(ctx, kind, target, "")
}

// checkTwoPath additionally runs dest as a Write check (spec.md §4.2 step
// 3), used for copy/rename/link/symlink.
func (f *firewalled) checkTwoPath(ctx context.Context, kind policy.Kind, target, dest string) error {
	real, _ := realpath(target)
	if real == target {
		real = ""
	}

	op := policy.Operation{
		Kind:       kind,
		Target:     target,
		RealPath:   real,
		DestTarget: dest,
		Origin:     originFromContext(ctx),
	}

	verdict := f.mon.Check(op)
	if !verdict.Allowed {
		return &Denied{Verdict: verdict, Path: target}
	}

	return nil
}

func (f *firewalled) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := f.check(ctx, policy.KindRead, path); err != nil {
		return nil, err
	}

	f.recordRead(path)

	return f.inner.ReadFile(ctx, path)
}

func (f *firewalled) WriteFile(ctx context.Context, path string, data []byte, perm os.FileMode) error {
	if err := f.checkWrite(ctx, path, data); err != nil {
		return err
	}

	return f.inner.WriteFile(ctx, path, data, perm)
}

func (f *firewalled) AppendFile(ctx context.Context, path string, data []byte) error {
	if err := f.checkWrite(ctx, path, data); err != nil {
		return err
	}

	return f.inner.AppendFile(ctx, path, data)
}

// checkWrite attaches up to 100 bytes of content as a shebang-detection
// preview (spec.md §3 "ContentPreview").
func (f *firewalled) checkWrite(ctx context.Context, path string, data []byte) error {
	preview := data
	if len(preview) > 100 {
		preview = preview[:100]
	}

	real, _ := realpath(path)
	if real == path {
		real = ""
	}

	op := policy.Operation{
		Kind:           policy.KindWrite,
		Target:         path,
		RealPath:       real,
		ContentPreview: preview,
		Origin:         originFromContext(ctx),
	}

	verdict := f.mon.Check(op)
	if !verdict.Allowed {
		return &Denied{Verdict: verdict, Path: path}
	}

	return nil
}

func (f *firewalled) Stat(ctx context.Context, path string) (FileInfo, error) {
	if err := f.check(ctx, policy.KindRead, path); err != nil {
		return nil, err
	}

	return f.inner.Stat(ctx, path)
}

func (f *firewalled) Lstat(ctx context.Context, path string) (FileInfo, error) {
	if err := f.check(ctx, policy.KindRead, path); err != nil {
		return nil, err
	}

	return f.inner.Lstat(ctx, path)
}

func (f *firewalled) ReadDir(ctx context.Context, path string) ([]DirEntry, error) {
	if err := f.check(ctx, policy.KindRead, path); err != nil {
		return nil, err
	}

	return f.inner.ReadDir(ctx, path)
}

func (f *firewalled) Exists(ctx context.Context, path string) bool {
	if err := f.check(ctx, policy.KindRead, path); err != nil {
		return false
	}

	return f.inner.Exists(ctx, path)
}

func (f *firewalled) Mkdir(ctx context.Context, path string, perm os.FileMode) error {
	if err := f.checkWrite(ctx, path, nil); err != nil {
		return err
	}

	return f.inner.Mkdir(ctx, path, perm)
}

func (f *firewalled) MkdirAll(ctx context.Context, path string, perm os.FileMode) error {
	if err := f.checkWrite(ctx, path, nil); err != nil {
		return err
	}

	return f.inner.MkdirAll(ctx, path, perm)
}

func (f *firewalled) Remove(ctx context.Context, path string) error {
	if err := f.check(ctx, policy.KindDelete, path); err != nil {
		return err
	}

	return f.inner.Remove(ctx, path)
}

func (f *firewalled) RemoveAll(ctx context.Context, path string) error {
	if err := f.check(ctx, policy.KindDelete, path); err != nil {
		return err
	}

	return f.inner.RemoveAll(ctx, path)
}

func (f *firewalled) Rename(ctx context.Context, oldPath, newPath string) error {
	if err := f.checkTwoPath(ctx, policy.KindWrite, oldPath, newPath); err != nil {
		return err
	}

	return f.inner.Rename(ctx, oldPath, newPath)
}

// Copy denies iff the source read or the destination write would be
// denied (spec.md §8 testable property: "check(copy(src, dst)) denies iff
// check(Read, src) = deny OR check(Write, dst) = deny").
func (f *firewalled) Copy(ctx context.Context, src, dst string) error {
	if err := f.check(ctx, policy.KindRead, src); err != nil {
		return err
	}

	if err := f.checkWrite(ctx, dst, nil); err != nil {
		return err
	}

	return f.inner.Copy(ctx, src, dst)
}

func (f *firewalled) Link(ctx context.Context, oldPath, newPath string) error {
	if err := f.checkTwoPath(ctx, policy.KindSymlink, oldPath, newPath); err != nil {
		return err
	}

	return f.inner.Link(ctx, oldPath, newPath)
}

func (f *firewalled) Symlink(ctx context.Context, oldPath, newPath string) error {
	if err := f.checkTwoPath(ctx, policy.KindSymlink, oldPath, newPath); err != nil {
		return err
	}

	return f.inner.Symlink(ctx, oldPath, newPath)
}

func (f *firewalled) Readlink(ctx context.Context, path string) (string, error) {
	if err := f.check(ctx, policy.KindRead, path); err != nil {
		return "", err
	}

	return f.inner.Readlink(ctx, path)
}

func (f *firewalled) Realpath(ctx context.Context, path string) (string, error) {
	if err := f.check(ctx, policy.KindRead, path); err != nil {
		return "", err
	}

	return f.inner.Realpath(ctx, path)
}

// Chdir is validated as a Read against the destination (spec.md §4.2
// "Filesystem" wrapping list).
func (f *firewalled) Chdir(ctx context.Context, path string) error {
	if err := f.check(ctx, policy.KindChdir, path); err != nil {
		return err
	}

	return f.inner.Chdir(ctx, path)
}

func (f *firewalled) Open(ctx context.Context, path string, flag int, perm os.FileMode) (Handle, error) {
	kind := policy.KindRead
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_CREATE|os.O_APPEND|os.O_TRUNC) != 0 {
		kind = policy.KindWrite
	}

	if err := f.check(ctx, kind, path); err != nil {
		return nil, err
	}

	if kind == policy.KindRead {
		f.recordRead(path)
	}

	inner, err := f.inner.Open(ctx, path, flag, perm)
	if err != nil {
		return nil, err
	}

	// Re-validates every subsequent call against the opening path (spec.md
	// §4.2 step 6), so a handle obtained while allowed cannot be used to
	// bypass a policy change or reused past a later revocation.
	return &firewalledHandle{inner: inner, path: path, kind: kind, f: f, ctx: ctx}, nil
}

type firewalledHandle struct {
	inner Handle
	path  string
	kind  policy.Kind
	f     *firewalled
	ctx   context.Context
}

func (h *firewalledHandle) Path() string { return h.path }

func (h *firewalledHandle) Read(p []byte) (int, error) {
	if err := h.f.check(h.ctx, policy.KindRead, h.path); err != nil {
		return 0, err
	}

	return h.inner.Read(p)
}

func (h *firewalledHandle) Write(p []byte) (int, error) {
	if err := h.f.checkWrite(h.ctx, h.path, p); err != nil {
		return 0, err
	}

	return h.inner.Write(p)
}

func (h *firewalledHandle) Close() error { return h.inner.Close() }

func originFromContext(ctx context.Context) origin.Tag {
	tag, _ := origin.FromContext(ctx)
	return tag
}
