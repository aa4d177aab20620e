package conv

// Allocation-free number formatting for serial line emission.
// No fmt/strconv dependency so the hot emit path stays MCU-friendly.

// AppendInt appends the base-10 representation of n to dst.
func AppendInt(dst []byte, n int) []byte {
	if n < 0 {
		dst = append(dst, '-')
		n = -n
	}
	return AppendUint(dst, uint64(n))
}

// AppendUint appends the base-10 representation of n to dst.
func AppendUint(dst []byte, n uint64) []byte {
	var buf [20]byte
	i := len(buf)
	if n == 0 {
		i--
		buf[i] = '0'
	}
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return append(dst, buf[i:]...)
}

// AppendBit appends '1' or '0'.
func AppendBit(dst []byte, b bool) []byte {
	if b {
		return append(dst, '1')
	}
	return append(dst, '0')
}

// AppendMilli appends v/1000 as a fixed-point decimal with three fractional
// digits ("0.000".."1.000"). Used for the progress field of status lines.
func AppendMilli(dst []byte, v int) []byte {
	if v < 0 {
		v = 0
	}
	if v > 1000 {
		v = 1000
	}
	dst = AppendInt(dst, v/1000)
	dst = append(dst, '.')
	frac := v % 1000
	dst = append(dst, byte('0'+frac/100))
	dst = append(dst, byte('0'+(frac/10)%10))
	dst = append(dst, byte('0'+frac%10))
	return dst
}

// AppendU64Hex appends 16 uppercase hex digits, zero-padded. Pattern rows
// are exported as one 64-bit column bitmap each.
func AppendU64Hex(dst []byte, n uint64) []byte {
	const hexd = "0123456789ABCDEF"
	var buf [16]byte
	for i := 15; i >= 0; i-- {
		buf[i] = hexd[n&0xF]
		n >>= 4
	}
	return append(dst, buf[:]...)
}
