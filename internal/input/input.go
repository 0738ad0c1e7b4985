// Package input finds donation files and streams their lines.
package input

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/campaign-data/donagg/internal/model"
)

// MaxLineBytes bounds a single input line, terminator included. Longer
// lines are drained and passed on empty with TooLong set.
const MaxLineBytes = 4 << 20

// FileInfo describes an input file.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// Scan returns the CSV files directly inside dir, sorted by name.
// Subdirectories are not descended into. A missing dir yields no files.
func Scan(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading input dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// Expand turns a mix of file and directory arguments into input files.
// Directories are scanned for CSV files; files are taken as given whatever
// their extension. A path that does not exist is an error.
func Expand(paths []string) ([]FileInfo, error) {
	var files []FileInfo
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat input %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, FileInfo{Name: info.Name(), Path: p, Size: info.Size()})
			continue
		}
		found, err := Scan(p)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	sort.SliceStable(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Stream sends every line of every file to out, in file order. It stops
// early when ctx is done. The caller owns out and closes it.
func Stream(ctx context.Context, files []FileInfo, out chan<- model.Line) error {
	for _, f := range files {
		if err := streamFile(ctx, f.Path, out); err != nil {
			return err
		}
	}
	return nil
}

func streamFile(ctx context.Context, path string, out chan<- model.Line) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer f.Close()

	r := bufio.NewReaderSize(f, 64<<10)

	var n int64
	for {
		data, tooLong, err := readLine(r)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("reading %s line %d: %w", path, n+1, err)
		}
		if err == nil || len(data) > 0 || tooLong {
			n++
			text := strings.TrimSuffix(strings.TrimSuffix(string(data), "\n"), "\r")
			line := model.Line{Source: path, No: n, Text: text, TooLong: tooLong}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case out <- line:
			}
		}
		if err != nil {
			return nil
		}
	}
}

// readLine returns the next line including its terminator. A line longer
// than MaxLineBytes is read to its end and returned as nil with tooLong set.
func readLine(r *bufio.Reader) (line []byte, tooLong bool, err error) {
	for {
		frag, err := r.ReadSlice('\n')
		if !tooLong {
			if len(line)+len(frag) > MaxLineBytes {
				tooLong, line = true, nil
			} else {
				line = append(line, frag...)
			}
		}
		if !errors.Is(err, bufio.ErrBufferFull) {
			return line, tooLong, err
		}
	}
}
