package cpu

// Flags is the condition flag state of the processor.
type Flags struct {
	Zero     bool // Result was zero.
	Negative bool // Result was negative (sign bit set).
	Carry    bool // Result did not fit the 32-bit signed range.
	Overflow bool // Signed overflow.
}

// String returns the flags as "ZNCV", with '-' for each clear flag.
func (fl Flags) String() string {
	out := []byte("----")
	for n, set := range []bool{fl.Zero, fl.Negative, fl.Carry, fl.Overflow} {
		if set {
			out[n] = "ZNCV"[n]
		}
	}
	return string(out)
}
