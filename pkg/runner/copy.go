package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Copy copies from to to. Either side may be user@host:path, but not both.
// A local source may be a glob; several matches require a directory destination,
// written with a trailing slash for remote targets.
func (r *Runner) Copy(ctx context.Context, opts Options, from, to string) error {
	src, dst := ParseAddress(from), ParseAddress(to)
	slog.Debug("copying", "from", src.String(), "to", dst.String())

	switch {
	case src.Remote() && dst.Remote():
		return fmt.Errorf("%w: %s to %s: remote to remote copies are not supported", ErrCopy, from, to)
	case src.Remote():
		return r.download(ctx, opts, src, dst.Path)
	}

	files, err := expandSources(opts.Dir, src.Path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCopy, err)
	}
	if dst.Remote() {
		return r.upload(ctx, files, dst)
	}
	return copyLocal(files, resolve(opts.Dir, dst.Path), hasTrailingSlash(dst.Path))
}

func (r *Runner) upload(ctx context.Context, files []string, dst Address) error {
	conn, err := r.connect(ctx, dst)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCopy, err)
	}
	defer func() { _ = conn.Close() }()

	toDir := len(files) > 1 || strings.HasSuffix(dst.Path, "/")
	for _, f := range files {
		target := dst.Path
		if toDir {
			target = path.Join(dst.Path, filepath.Base(f))
		}
		if err := conn.Upload(ctx, f, target); err != nil {
			return fmt.Errorf("%w: %s to %s:%s: %w", ErrCopy, f, dst.Login(), target, err)
		}
		slog.Info("uploaded file", "file", f, "target", dst.Login()+":"+target)
	}
	return nil
}

func (r *Runner) download(ctx context.Context, opts Options, src Address, to string) error {
	conn, err := r.connect(ctx, src)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCopy, err)
	}
	defer func() { _ = conn.Close() }()

	target := resolve(opts.Dir, to)
	if isDir(target) || hasTrailingSlash(to) {
		target = filepath.Join(target, path.Base(src.Path))
	}
	if err := conn.Download(ctx, src.Path, target); err != nil {
		return fmt.Errorf("%w: %s to %s: %w", ErrCopy, src.String(), target, err)
	}
	return nil
}

func expandSources(dir, pattern string) ([]string, error) {
	pattern = resolve(dir, pattern)
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}
	var files []string
	for _, m := range matches {
		if isDir(m) {
			continue
		}
		files = append(files, m)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files match %q", pattern)
	}
	slices.Sort(files)
	return files, nil
}

func copyLocal(files []string, dst string, wantDir bool) error {
	toDir := wantDir || len(files) > 1 || isDir(dst)
	for _, f := range files {
		target := dst
		if toDir {
			target = filepath.Join(dst, filepath.Base(f))
		}
		if err := copyFile(f, target); err != nil {
			return fmt.Errorf("%w: %w", ErrCopy, err)
		}
	}
	return nil
}

func resolve(dir, p string) string {
	if dir == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

func isDir(p string) bool {
	st, err := os.Stat(p)
	return err == nil && st.IsDir()
}

func hasTrailingSlash(p string) bool {
	return strings.HasSuffix(p, "/") || strings.HasSuffix(p, string(filepath.Separator))
}
