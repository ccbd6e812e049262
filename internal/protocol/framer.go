package protocol

// MaxBufferedBytes bounds the reassembly buffer. When exceeded, the oldest
// bytes are discarded.
const MaxBufferedBytes = 4096

// Framer reassembles packets from a TCP byte stream. TCP has no message
// boundaries, so a single read may carry a partial packet, several packets,
// or noise. Bytes that cannot start a valid packet are skipped one at a time
// until the stream realigns on the header.
//
// A Framer is not safe for concurrent use; it belongs to one reader.
type Framer struct {
	buf     []byte
	dropped int
}

// NewFramer returns an empty framer.
func NewFramer() *Framer {
	return &Framer{buf: make([]byte, 0, PacketSize*4)}
}

// Feed appends data and returns every complete packet now available,
// in stream order.
func (f *Framer) Feed(data []byte) []*Packet {
	f.buf = append(f.buf, data...)

	var packets []*Packet
	for {
		start := f.findHeader()
		if start < 0 {
			// Keep a trailing first header byte; its partner may be in the next read.
			keep := 0
			if n := len(f.buf); n > 0 && f.buf[n-1] == HeaderByte0 {
				keep = 1
			}
			f.discard(len(f.buf) - keep)
			break
		}
		f.discard(start)

		if len(f.buf) < PacketSize {
			break
		}

		pkt, ok := Decode(f.buf[:PacketSize])
		if !ok {
			// Header matched but the frame is bad; step past this header.
			f.discard(1)
			continue
		}
		packets = append(packets, pkt)
		f.buf = f.buf[PacketSize:]
	}

	if over := len(f.buf) - MaxBufferedBytes; over > 0 {
		f.discard(over)
	}
	return packets
}

// Buffered returns the number of bytes waiting for the rest of a packet.
func (f *Framer) Buffered() int {
	return len(f.buf)
}

// Dropped returns the total number of bytes discarded as noise and resets
// the counter.
func (f *Framer) Dropped() int {
	n := f.dropped
	f.dropped = 0
	return n
}

func (f *Framer) findHeader() int {
	for i := 0; i+1 < len(f.buf); i++ {
		if f.buf[i] == HeaderByte0 && f.buf[i+1] == HeaderByte1 {
			return i
		}
	}
	return -1
}

func (f *Framer) discard(n int) {
	if n <= 0 {
		return
	}
	f.buf = f.buf[n:]
	f.dropped += n
}
