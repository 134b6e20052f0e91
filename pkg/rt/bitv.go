package rt

// bitv is a fixed-size bit vector indexed by soltab or region handle
type bitv []uint64

func newBitv(n int) bitv {
	return make(bitv, (n+63)/64)
}

func (b bitv) set(i int) {
	b[i>>6] |= 1 << (uint(i) & 63)
}

func (b bitv) test(i int) bool {
	return b[i>>6]&(1<<(uint(i)&63)) != 0
}

func (b bitv) clear(i int) {
	b[i>>6] &^= 1 << (uint(i) & 63)
}
