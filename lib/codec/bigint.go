package codec

import "math/big"

// bigIntToBytes renders x as a big-endian two's-complement blob. The sign is
// carried by the top bit of the first byte, so non-negative values whose
// magnitude already has the top bit set get a leading zero byte.
func bigIntToBytes(x *big.Int) []byte {
	if x.Sign() == 0 {
		return []byte{0}
	}
	if x.Sign() > 0 {
		b := x.Bytes()
		if b[0]&0x80 != 0 {
			return append([]byte{0}, b...)
		}
		return b
	}
	// negative: two's complement over n = BitLen/8+1 bytes. This always fits
	// and is minimal except for -2^(8k-1) (e.g. -128 takes two bytes).
	// tc >= 2^(8n-1) holds, so the result is always exactly n bytes.
	n := x.BitLen()/8 + 1
	tc := new(big.Int).Lsh(big.NewInt(1), uint(8*n))
	tc.Add(tc, x)
	return tc.Bytes()
}

// bytesToBigInt is the inverse of bigIntToBytes.
func bytesToBigInt(b []byte) *big.Int {
	if len(b) == 0 {
		return new(big.Int)
	}
	x := new(big.Int).SetBytes(b)
	if b[0]&0x80 != 0 {
		tc := new(big.Int).Lsh(big.NewInt(1), uint(8*len(b)))
		x.Sub(x, tc)
	}
	return x
}
