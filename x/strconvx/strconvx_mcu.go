//go:build rp2040

package strconvx

// Minimal decimal-only helpers with strconv-compatible signatures.
// Keeps the TinyGo binary free of the full strconv machinery.

type parseError struct{}

func (parseError) Error() string { return "invalid syntax" }

func Itoa(i int) string {
	neg := i < 0
	u := uint64(i)
	if neg {
		u = uint64(-i)
	}
	var buf [20]byte
	p := len(buf)
	if u == 0 {
		p--
		buf[p] = '0'
	}
	for u > 0 {
		p--
		buf[p] = byte('0' + u%10)
		u /= 10
	}
	if neg {
		p--
		buf[p] = '-'
	}
	return string(buf[p:])
}

func Atoi(s string) (int, error) {
	if len(s) == 0 {
		return 0, parseError{}
	}
	neg := false
	i := 0
	switch s[0] {
	case '-':
		neg = true
		i = 1
	case '+':
		i = 1
	}
	if i == len(s) {
		return 0, parseError{}
	}
	var v int
	for ; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, parseError{}
		}
		v = v*10 + int(c-'0')
	}
	if neg {
		v = -v
	}
	return v, nil
}
