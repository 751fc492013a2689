package ripemd

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"time"
)

// maxTail is the number of absorbed bytes a checkpoint keeps to recognise
// its stream.
const maxTail = 256

// source is a seekable stream that checkpoints can be bound to.
type source struct {
	rs      io.ReadSeeker
	start   int64
	size    int64
	modTime time.Time

	tail [maxTail]byte
	n    int
}

// newSource returns nil, nil when r cannot seek. The position of r is
// left where it was.
func newSource(r io.Reader) (*source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		return nil, nil
	}
	start, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, nil
	}
	end, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, nil
	}
	if _, err := rs.Seek(start, io.SeekStart); err != nil {
		return nil, err
	}

	src := &source{rs: rs, start: start, size: end - start}
	if f, ok := r.(interface{ Stat() (fs.FileInfo, error) }); ok {
		if fi, err := f.Stat(); err == nil {
			src.modTime = fi.ModTime()
		}
	}
	return src, nil
}

// absorbed records p as the most recent bytes written to the State.
func (src *source) absorbed(p []byte) {
	if len(p) >= maxTail {
		src.n = copy(src.tail[:], p[len(p)-maxTail:])
		return
	}
	keep := min(src.n, maxTail-len(p))
	copy(src.tail[:], src.tail[src.n-keep:src.n])
	src.n = keep + copy(src.tail[keep:], p)
}

func (src *source) identity() Source {
	return Source{
		Size:    src.size,
		ModTime: src.modTime,
		Tail:    append([]byte(nil), src.tail[:src.n]...),
	}
}

// resume checks that cp was taken from this stream and positions the
// stream at cp.Offset.
func (src *source) resume(cp Checkpoint) error {
	id := cp.Source
	if id.Size != src.size {
		return fmt.Errorf("%w: stream has %d bytes, checkpoint was taken on %d", ErrCheckpointMismatch, src.size, id.Size)
	}
	if !id.ModTime.Equal(src.modTime) {
		return fmt.Errorf("%w: stream modified at %s, checkpoint was taken on %s",
			ErrCheckpointMismatch, src.modTime.Format(time.RFC3339Nano), id.ModTime.Format(time.RFC3339Nano))
	}
	if cp.Offset > uint64(src.size) {
		return fmt.Errorf("%w: offset %d past end of stream", ErrCheckpointMismatch, cp.Offset)
	}
	if len(id.Tail) == 0 || uint64(len(id.Tail)) > cp.Offset {
		return fmt.Errorf("%w: checkpoint at offset %d has %d tail bytes", ErrCheckpointMismatch, cp.Offset, len(id.Tail))
	}

	from := int64(cp.Offset) - int64(len(id.Tail))
	if _, err := src.rs.Seek(src.start+from, io.SeekStart); err != nil {
		return err
	}
	tail := make([]byte, len(id.Tail))
	if _, err := io.ReadFull(src.rs, tail); err != nil {
		return err
	}
	if !bytes.Equal(tail, id.Tail) {
		return fmt.Errorf("%w: content before offset %d changed", ErrCheckpointMismatch, cp.Offset)
	}

	src.n = copy(src.tail[:], tail)
	return nil
}
