//go:build unix

package htmlify

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"

	"github.com/momentics/stagebuf/buffer"
	"github.com/momentics/stagebuf/transport"
)

// Stats reports the bytes moved by ConvertFile.
type Stats struct {
	Read    int
	Written int
}

// Staging hands out and takes back the buffers ConvertFile works in.
// *pool.BufferPool satisfies it.
type Staging interface {
	Get(capacity int) (*buffer.Buffer, error)
	Put(b *buffer.Buffer)
}

// ConvertFile converts the file at inPath and writes the markup to outPath,
// truncating it. Both staging buffers are taken from staging with at least
// capacity bytes and returned to it afterwards.
func (c *Converter) ConvertFile(inPath, outPath string, staging Staging, capacity int) (Stats, error) {
	var st Stats
	in, err := transport.OpenFile(inPath, unix.O_RDONLY, 0)
	if err != nil {
		return st, err
	}
	defer in.Close()

	size, err := in.Size()
	if err != nil {
		return st, err
	}

	out, err := transport.OpenFile(outPath, unix.O_RDWR|unix.O_CREAT|unix.O_TRUNC, 0o644)
	if err != nil {
		return st, err
	}
	defer out.Close()

	ibuf, err := staging.Get(capacity)
	if err != nil {
		return st, err
	}
	defer staging.Put(ibuf)
	obuf, err := staging.Get(capacity)
	if err != nil {
		return st, err
	}
	defer staging.Put(obuf)

	if st.Read, err = ibuf.ReadFromDescriptor(in, int(size)); err != nil {
		return st, errors.Wrapf(err, "read %s", inPath)
	}
	log.Debug().Str("file", inPath).Int("bytes", st.Read).Msg("htmlify: input loaded")

	if err := c.Convert(ibuf, obuf); err != nil {
		return st, err
	}
	if st.Written, err = obuf.WriteToDescriptor(out); err != nil {
		return st, errors.Wrapf(err, "write %s", outPath)
	}
	return st, nil
}
