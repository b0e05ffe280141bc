//Package nilsimsa implements the Nilsimsa locality-sensitive hash. Similar inputs produce digests which differ in
//few bits, so comparing two digests gives a similarity score between -128 (opposite) and 128 (identical).
package nilsimsa

import (
	"encoding/hex"
	"fmt"
	"math/bits"
)

//Size is the length of a digest in bytes
const Size = 32

//Digest is a Nilsimsa digest
type Digest [Size]byte

//Hasher accumulates trigram counts over the bytes written to it. The zero value is ready to use.
type Hasher struct {
	acc    [256]uint32
	window [4]int
	filled int
	count  int
}

//New returns an empty Hasher
func New() *Hasher {
	return &Hasher{}
}

//Write adds p to the hashed input. It never fails.
func (h *Hasher) Write(p []byte) (int, error) {
	for _, b := range p {
		h.update(int(b))
	}
	return len(p), nil
}

//WriteString adds s to the hashed input. It never fails.
func (h *Hasher) WriteString(s string) (int, error) {
	for i := 0; i < len(s); i++ {
		h.update(int(s[i]))
	}
	return len(s), nil
}

func (h *Hasher) update(c int) {
	w := &h.window
	if h.filled > 1 {
		h.acc[tranHash(c, w[0], w[1], 0)]++
	}
	if h.filled > 2 {
		h.acc[tranHash(c, w[0], w[2], 1)]++
		h.acc[tranHash(c, w[1], w[2], 2)]++
	}
	if h.filled > 3 {
		h.acc[tranHash(c, w[0], w[3], 3)]++
		h.acc[tranHash(c, w[1], w[3], 4)]++
		h.acc[tranHash(c, w[2], w[3], 5)]++
		h.acc[tranHash(w[3], w[0], c, 6)]++
		h.acc[tranHash(w[3], w[2], c, 7)]++
	}
	w[3], w[2], w[1], w[0] = w[2], w[1], w[0], c
	if h.filled < 4 {
		h.filled++
	}
	h.count++
}

//Sum returns the digest of everything written so far. It does not change the hasher's state.
func (h *Hasher) Sum() Digest {
	var trigrams int
	switch {
	case h.count == 3:
		trigrams = 1
	case h.count == 4:
		trigrams = 4
	case h.count > 4:
		trigrams = 8*h.count - 28
	}
	threshold := float64(trigrams) / 256

	var d Digest
	for i, n := range h.acc {
		if float64(n) > threshold {
			//bytes are emitted most significant first
			d[Size-1-(i>>3)] |= 1 << uint(i&7)
		}
	}
	return d
}

//Reset clears the hasher
func (h *Hasher) Reset() {
	*h = Hasher{}
}

//Sum returns the digest of s
func Sum(s string) Digest {
	var h Hasher
	h.WriteString(s)
	return h.Sum()
}

//Compare returns the similarity of two digests, 128 minus the number of differing bits
func Compare(a, b Digest) int {
	diff := 0
	for i := range a {
		diff += bits.OnesCount8(a[i] ^ b[i])
	}
	return Size*8/2 - diff
}

//String returns the lowercase hex encoding of the digest
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

//ParseHex decodes a digest from its hex encoding
func ParseHex(s string) (Digest, error) {
	var d Digest
	raw, err := hex.DecodeString(s)
	if err != nil {
		return d, err
	}
	if len(raw) != Size {
		return d, fmt.Errorf("nilsimsa digest must be %d bytes, got %d", Size, len(raw))
	}
	copy(d[:], raw)
	return d, nil
}

func tranHash(a, b, c, n int) int {
	return ((int(tran[(a+n)&255]) ^ int(tran[b])*(n+n+1)) + int(tran[c^int(tran[n])])) & 255
}
