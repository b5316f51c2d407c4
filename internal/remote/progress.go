package remote

import "io"

// progressReader counts bytes read from the underlying file and reports whole
// percentages on the progress channel. Sends are non-blocking: a slow receiver
// loses intermediate updates but never stalls the upload.
type progressReader struct {
	reader   io.Reader
	total    int64
	sent     int64
	lastPct  int
	progress chan<- UploadProgress
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.reader.Read(buf)
	if n > 0 {
		p.sent += int64(n)
		p.report()
	}
	return n, err
}

func (p *progressReader) report() {
	if p.progress == nil || p.total <= 0 {
		return
	}

	pct := int(p.sent * 100 / p.total)
	if pct > 100 {
		pct = 100
	}
	if pct == p.lastPct && p.sent != p.total {
		return
	}
	p.lastPct = pct

	select {
	case p.progress <- UploadProgress{BytesSent: p.sent, TotalBytes: p.total, Percentage: pct}:
	default:
	}
}
