package order

import (
	"context"
	"errors"
	"io"
)

// fakeCounter returns fixed counts by content, or err when set.
type fakeCounter struct {
	pages int
	err   error
	calls int
}

func (f *fakeCounter) CountPages(ctx context.Context, rs io.ReadSeeker) (int, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.pages, nil
}

var errBroken = errors.New("broken pdf")

// sizedFile is a File whose reported size differs from its content, used
// to exercise the size heuristics without allocating megabytes.
func sizedFile(name string, size int64, content []byte) File {
	f := FileFromBytes(name, "", content)
	f.Size = size
	return f
}

func failingFile(name string, size int64) File {
	return File{
		Name: name,
		Size: size,
		Open: func() (io.ReadCloser, error) { return nil, errors.New("read error") },
	}
}
