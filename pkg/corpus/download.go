package corpus

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// downloadTimeout bounds a whole corpus download.
const downloadTimeout = 5 * time.Minute

// wordlistExts are the member names taken from a downloaded archive.
var wordlistExts = []string{".txt", ".tab"}

// Ensure makes sure the corpus file exists at path. When it is missing it
// is downloaded from url. A .tgz or .tar.gz archive is unpacked to its
// first wordlist member and a .gz file is decompressed. downloaded reports
// whether a download took place.
func Ensure(ctx context.Context, path, url string) (downloaded bool, err error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, err
	}
	if url == "" {
		return false, fmt.Errorf("corpus %s not found and no download url set", path)
	}

	ctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("User-Agent", "sonority-cli")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("download %s: %s", url, resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".corpus-*.download")
	if err != nil {
		return false, err
	}
	defer os.Remove(tmp.Name()) // no-op after the rename

	if err := extract(tmp, resp.Body, url); err != nil {
		tmp.Close()
		return false, fmt.Errorf("download %s: %w", url, err)
	}
	if err := tmp.Close(); err != nil {
		return false, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return false, err
	}
	return true, nil
}

// extract copies the wordlist in body to w, unpacking by the url suffix.
func extract(w io.Writer, body io.Reader, url string) error {
	name := strings.ToLower(url)
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	switch {
	case strings.HasSuffix(name, ".tgz"), strings.HasSuffix(name, ".tar.gz"):
		gz, err := gzip.NewReader(body)
		if err != nil {
			return fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		return extractTar(w, tar.NewReader(gz))
	case strings.HasSuffix(name, ".gz"):
		gz, err := gzip.NewReader(body)
		if err != nil {
			return fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		_, err = io.Copy(w, gz)
		return err
	default:
		_, err := io.Copy(w, body)
		return err
	}
}

func extractTar(w io.Writer, tr *tar.Reader) error {
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return fmt.Errorf("no wordlist file in archive")
		}
		if err != nil {
			return fmt.Errorf("error reading tar archive: %w", err)
		}
		if header.Typeflag != tar.TypeReg || !isWordlist(header.Name) {
			continue
		}
		_, err = io.Copy(w, tr)
		return err
	}
}

func isWordlist(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range wordlistExts {
		if ext == e {
			return true
		}
	}
	return false
}
