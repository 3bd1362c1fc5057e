package testutil

const (
	giantLiteral    = 0x4000
	maxShortLiteral = 64
	minRun          = 3
	maxRun          = 66
)

// EncodeRLE compresses data with the four-opcode run-length grammar used by
// backup volumes. Runs of three or more equal bytes become zero runs or
// repeat units, everything else is emitted as giant or short literals.
func EncodeRLE(data []byte) []byte {
	out := make([]byte, 0, len(data)+len(data)/maxShortLiteral+1)
	var lit []byte

	flush := func() {
		for len(lit) > 0 {
			if len(lit) >= giantLiteral {
				out = append(out, 0x00)
				out = append(out, lit[:giantLiteral]...)
				lit = lit[giantLiteral:]
				continue
			}
			n := min(len(lit), maxShortLiteral)
			out = append(out, byte(0x3F+n))
			out = append(out, lit[:n]...)
			lit = lit[n:]
		}
	}

	for i := 0; i < len(data); {
		run := 1
		for i+run < len(data) && data[i+run] == data[i] && run < maxRun {
			run++
		}
		if run < minRun {
			lit = append(lit, data[i])
			i++
			continue
		}
		flush()
		if data[i] == 0 {
			out = append(out, byte(0xBD+run))
		} else {
			out = append(out, byte(0x7D+run), data[i])
		}
		i += run
	}
	flush()
	return out
}
