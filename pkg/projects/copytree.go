package projects

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// copyConcurrency bounds the number of file copies in flight.
const copyConcurrency = 8

type copyJob struct {
	src  string
	dst  string
	mode fs.FileMode
}

// copyTree recursively copies the directory tree at src to dst. The directory
// skeleton is replicated in walk order, then file contents are copied
// concurrently with error propagation. The caller is responsible for cleaning
// up dst on failure.
func copyTree(ctx context.Context, src, dst string) error {
	var jobs []copyJob

	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			info, err := d.Info()
			if err != nil {
				return err
			}
			return os.MkdirAll(target, info.Mode().Perm())
		case d.Type()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		case d.Type().IsRegular():
			info, err := d.Info()
			if err != nil {
				return err
			}
			jobs = append(jobs, copyJob{src: path, dst: target, mode: info.Mode().Perm()})
			return nil
		default:
			return fmt.Errorf("unsupported file type %s at %s", d.Type(), path)
		}
	})
	if err != nil {
		return err
	}

	// Use errgroup for concurrent copying with error propagation
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(copyConcurrency)
	for _, job := range jobs {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			return copyFile(job.src, job.dst, job.mode)
		})
	}
	return g.Wait()
}

func copyFile(src, dst string, mode fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
