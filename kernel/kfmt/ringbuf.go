package kfmt

import "io"

// earlyBufferSize holds a full 80x25 screen worth of output. It must be a
// power of 2.
const earlyBufferSize = 2048

// ringBuffer is an overwriting ring buffer: once full, each write discards
// the oldest byte. It backs Printf until a console is attached.
type ringBuffer struct {
	buffer [earlyBufferSize]byte
	start  int
	count  int
}

// Write implements io.Writer. It never fails.
func (rb *ringBuffer) Write(p []byte) (int, error) {
	for _, b := range p {
		rb.buffer[(rb.start+rb.count)&(earlyBufferSize-1)] = b
		if rb.count < earlyBufferSize {
			rb.count++
		} else {
			rb.start = (rb.start + 1) & (earlyBufferSize - 1)
		}
	}

	return len(p), nil
}

// Len returns the number of buffered bytes.
func (rb *ringBuffer) Len() int {
	return rb.count
}

// WriteTo drains the buffered bytes into w, oldest first.
func (rb *ringBuffer) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for rb.count > 0 {
		end := rb.start + rb.count
		if end > earlyBufferSize {
			end = earlyBufferSize
		}

		n, err := w.Write(rb.buffer[rb.start:end])
		total += int64(n)
		rb.start = (rb.start + n) & (earlyBufferSize - 1)
		rb.count -= n
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, io.ErrShortWrite
		}
	}

	rb.start = 0
	return total, nil
}
