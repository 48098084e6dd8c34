package command

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

var CLI struct {
	Convert  ConvertCmd  `cmd:"" help:"Convert data from one format to another."`
	Validate ValidateCmd `cmd:"" help:"Validate a GeoParquet file."`
	Describe DescribeCmd `cmd:"" help:"Describe a GeoParquet file."`
	Version  VersionCmd  `cmd:"" help:"Print the version of this program."`
}

type ReaderAtSeeker interface {
	io.Reader
	io.ReaderAt
	io.Seeker
}

// readerFromInput resolves a CLI input argument to a seekable reader.
// A bare path is opened from the local filesystem; an http(s):// URL is
// fetched in full, since parquet footer reads need random access that a
// streaming response body can't provide.
func readerFromInput(source string) (ReaderAtSeeker, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		resp, err := http.Get(source)
		if err != nil {
			return nil, fmt.Errorf("trouble fetching %q: %w", source, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("trouble fetching %q: unexpected status %s", source, resp.Status)
		}
		data, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("trouble reading response body from %q: %w", source, readErr)
		}
		return bytes.NewReader(data), nil
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("failed to read from %q: %w", source, err)
	}
	return f, nil
}
