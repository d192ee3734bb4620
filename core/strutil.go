package core

// maxUintDigits is the decimal width of the largest uint32
const maxUintDigits = 10

// appendUint appends the decimal form of n to dst without using fmt.
// dst must have room for maxUintDigits more bytes to stay allocation free.
func appendUint(dst []byte, n uint32) []byte {
	var digits [maxUintDigits]byte
	pos := len(digits)

	for {
		pos--
		digits[pos] = byte('0' + n%10)
		n /= 10
		if n == 0 {
			break
		}
	}

	return append(dst, digits[pos:]...)
}

// utoa converts an unsigned integer to a string
func utoa(n uint32) string {
	var buf [maxUintDigits]byte
	return string(appendUint(buf[:0], n))
}
