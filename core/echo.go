package core

// EchoBufferSize bounds the bytes moved per echo call
const EchoBufferSize = 64

// EchoTask sends every byte received on the CDC channel straight back
type EchoTask struct {
	buf [EchoBufferSize]byte
}

// Run performs at most one bounded read and echoes what it got. It returns the
// number of bytes echoed; zero means nothing was available.
func (e *EchoTask) Run(serial SerialChannel) int {
	if serial.Available() == 0 {
		return 0
	}

	n := serial.Read(e.buf[:])
	if n == 0 {
		return 0
	}

	serial.Write(e.buf[:n])
	serial.Flush()
	return n
}
