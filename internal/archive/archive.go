// Package archive writes a staging directory into a zip archive.
//
// Entries are added in lexical order with `/` separators and explicit
// directory entries, so the same tree always yields the same entry list.
package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"sort"

	"github.com/go-git/go-billy/v5"
	"github.com/klauspost/compress/zip"
)

// Stats describes a written archive.
type Stats struct {
	// Files is the number of file entries.
	Files int
	// Dirs is the number of directory entries.
	Dirs int
	// Bytes is the uncompressed size of all file entries.
	Bytes int64
}

// Write zips the contents of root in fsys into w. The root itself is not part of entry names.
func Write(ctx context.Context, w io.Writer, fsys billy.Filesystem, root string) (Stats, error) {
	var stats Stats

	zw := zip.NewWriter(w)

	if err := addDir(ctx, zw, fsys, root, "", &stats); err != nil {
		_ = zw.Close()

		return stats, err
	}

	if err := zw.Close(); err != nil {
		return stats, fmt.Errorf("finish archive: %w", err)
	}

	return stats, nil
}

func addDir(ctx context.Context, zw *zip.Writer, fsys billy.Filesystem, dir, prefix string, stats *Stats) error {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read directory %s: %w", dir, err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, info := range entries {
		if err = ctx.Err(); err != nil {
			return err
		}

		var (
			name     = path.Join(prefix, info.Name())
			fullPath = fsys.Join(dir, info.Name())
		)

		if info.IsDir() {
			if err = addHeader(zw, info, name+"/"); err != nil {
				return err
			}

			stats.Dirs++

			if err = addDir(ctx, zw, fsys, fullPath, name, stats); err != nil {
				return err
			}

			continue
		}

		if !info.Mode().IsRegular() {
			continue
		}

		n, err := addFile(zw, fsys, info, fullPath, name)
		if err != nil {
			return err
		}

		stats.Files++
		stats.Bytes += n
	}

	return nil
}

func addHeader(zw *zip.Writer, info os.FileInfo, name string) error {
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("zip header for %s: %w", name, err)
	}

	header.Name = name
	header.Method = zip.Store

	if _, err = zw.CreateHeader(header); err != nil {
		return fmt.Errorf("add %s: %w", name, err)
	}

	return nil
}

func addFile(zw *zip.Writer, fsys billy.Filesystem, info os.FileInfo, fullPath, name string) (int64, error) {
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return 0, fmt.Errorf("zip header for %s: %w", name, err)
	}

	header.Name = name
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return 0, fmt.Errorf("add %s: %w", name, err)
	}

	f, err := fsys.Open(fullPath)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", fullPath, err)
	}

	defer func() {
		_ = f.Close()
	}()

	n, err := io.Copy(w, f)
	if err != nil {
		return n, fmt.Errorf("compress %s: %w", name, err)
	}

	return n, nil
}
