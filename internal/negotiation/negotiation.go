// Package negotiation implements the commit-reveal coin flip used to settle
// turn order between two peers that do not trust each other.
//
// The challenger commits to a secret by sending Hash(secret) before play, the
// accepter answers with its own counter value in the clear, and the challenger
// then reveals the secret. Because neither side can pick its number after
// seeing the other's, the XOR parity of the two values is a fair coin. The
// hash is a fairness device against casual cheating, not a cryptographic
// boundary: reversing it costs a scan of the 16-bit secret space.
package negotiation

import "math/bits"

// PublicModulus is the shared modulus behind Hash. Both peers must agree on
// it or commitments will never verify. Part of the wire protocol.
const PublicModulus = 0xBEEF

// Outcome of a coin flip.
type Outcome int

const (
	Tails Outcome = iota
	Heads
)

func (o Outcome) String() string {
	if o == Heads {
		return "heads"
	}
	return "tails"
}

// Hash maps a secret to its public commitment by squaring modulo
// PublicModulus. Deterministic, and always strictly below the modulus.
func Hash(secret uint16) uint16 {
	return uint16(uint32(secret) * uint32(secret) % PublicModulus)
}

// Verify reports whether a revealed secret matches a prior commitment. A
// false return means the peer committed to something else: cheating.
func Verify(secret, commitment uint16) bool {
	return Hash(secret) == commitment
}

// CoinFlip derives the shared outcome from both revealed secrets: Heads iff
// the number of set bits in a^b is odd. Flipping any single bit of either
// input toggles the result, so neither side can bias it alone.
func CoinFlip(a, b uint16) Outcome {
	if bits.OnesCount16(a^b)%2 == 1 {
		return Heads
	}
	return Tails
}

// CounterForCommitment recovers the secret behind a commitment by exhaustive
// search and returns a counter value that forces Heads against it. This is
// the cheater's move the protocol is designed to make expensive; it exists
// for adversarial tests, not for play.
func CounterForCommitment(commitment uint16) uint16 {
	for s := 0; s <= 0xFFFF; s++ {
		if Hash(uint16(s)) == commitment {
			return uint16(s) ^ 1
		}
	}
	// No preimage exists; any counter is as good as any other.
	return 0
}

// SecretForCounter returns a secret that forces Heads against a known
// counter value. Used by tests of the accepting side's exposure.
func SecretForCounter(counter uint16) uint16 {
	return counter ^ 1
}
