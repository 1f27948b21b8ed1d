package util

import (
	"io"
	"sync"

	"github.com/klauspost/compress/gzip"
)

// GzipReaderPool recycles gzip readers across JSON-RPC responses.
type GzipReaderPool struct {
	pool sync.Pool
}

func NewGzipReaderPool() *GzipReaderPool {
	return &GzipReaderPool{}
}

// GetReset returns a gzip.Reader reading from r, reusing a pooled instance
// when one can be reset.
func (p *GzipReaderPool) GetReset(r io.Reader) (*gzip.Reader, error) {
	if pooled, ok := p.pool.Get().(*gzip.Reader); ok && pooled != nil {
		if err := pooled.Reset(r); err == nil {
			return pooled, nil
		}
	}
	return gzip.NewReader(r)
}

func (p *GzipReaderPool) Put(zr *gzip.Reader) {
	if zr == nil {
		return
	}
	p.pool.Put(zr)
}

type pooledGzipReadCloser struct {
	zr   *gzip.Reader
	body io.Closer
	pool *GzipReaderPool
	once sync.Once
}

func (r *pooledGzipReadCloser) Read(b []byte) (int, error) { return r.zr.Read(b) }

func (r *pooledGzipReadCloser) Close() error {
	var err error
	r.once.Do(func() {
		err = r.zr.Close()
		r.pool.Put(r.zr)
		if r.body != nil {
			if cerr := r.body.Close(); err == nil {
				err = cerr
			}
		}
	})
	return err
}

// WrapGzipReader returns a ReadCloser that hands zr back to the pool and
// closes body when closed.
func (p *GzipReaderPool) WrapGzipReader(zr *gzip.Reader, body io.Closer) io.ReadCloser {
	return &pooledGzipReadCloser{zr: zr, body: body, pool: p}
}
