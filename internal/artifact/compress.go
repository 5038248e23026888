package artifact

import (
	"bytes"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Decompress inflates data according to the compression suffix of name and
// returns name without it. Unknown suffixes pass through untouched.
func Decompress(name string, data []byte) (string, []byte, error) {
	ext := path.Ext(name)
	var (
		out []byte
		err error
	)
	switch strings.ToLower(ext) {
	case ".gz":
		var r *gzip.Reader
		r, err = gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return "", nil, err
		}
		defer r.Close()
		out, err = io.ReadAll(r)
	case ".zst":
		var d *zstd.Decoder
		d, err = zstd.NewReader(nil)
		if err != nil {
			return "", nil, err
		}
		defer d.Close()
		out, err = d.DecodeAll(data, nil)
	case ".lz4":
		out, err = io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	default:
		return name, data, nil
	}
	if err != nil {
		return "", nil, err
	}
	return strings.TrimSuffix(name, ext), out, nil
}
