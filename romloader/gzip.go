package romloader

import (
	"archive/tar"
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// tar header magic, found at offset 257 of the first block
var magicTar = []byte("ustar")

const tarMagicOffset = 257

// extractFromGzip decompresses a gzip file. A tarball inside is searched for
// the first CHIP-8 program; anything else is taken as the program itself.
func extractFromGzip(path string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open gzip: %w", err)
	}
	defer gz.Close()

	br := bufio.NewReaderSize(gz, 512)
	if isTar(br) {
		return extractFromTar(br)
	}

	data, err := limitedRead(br)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decompress: %w", err)
	}
	return data, gzipName(gz.Name, path), nil
}

func isTar(br *bufio.Reader) bool {
	head, _ := br.Peek(tarMagicOffset + len(magicTar))
	if len(head) < tarMagicOffset+len(magicTar) {
		return false
	}
	return bytes.Equal(head[tarMagicOffset:], magicTar)
}

func extractFromTar(r io.Reader) ([]byte, string, error) {
	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, "", fmt.Errorf("failed to read tar entry: %w", err)
		}

		if header.Typeflag != tar.TypeReg || !isROMFile(header.Name) {
			continue
		}

		data, err := limitedRead(tr)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", header.Name, err)
		}
		return data, filepath.Base(header.Name), nil
	}

	return nil, "", ErrNoROMFile
}

// gzipName picks the display name: the name stored in the gzip header,
// or the archive name without its .gz suffix.
func gzipName(stored, path string) string {
	if stored != "" {
		return filepath.Base(stored)
	}
	base := filepath.Base(path)
	if strings.HasSuffix(strings.ToLower(base), ".gz") {
		return base[:len(base)-3]
	}
	return base
}
