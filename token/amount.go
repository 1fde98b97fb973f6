package token

import "github.com/holiman/uint256"

// Native-currency amounts are 256-bit integers denominated in wei.
// All arithmetic goes through holiman/uint256; there is no float or
// big.Int path anywhere in the engine.

var weiPerEther = uint256.NewInt(1_000_000_000_000_000_000)

// Ether returns n ether expressed in wei.
func Ether(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), weiPerEther)
}

// MilliEther returns n/1000 ether expressed in wei.
func MilliEther(n uint64) *uint256.Int {
	milli := new(uint256.Int).Div(weiPerEther, uint256.NewInt(1000))
	return new(uint256.Int).Mul(uint256.NewInt(n), milli)
}

// ZeroWei returns a fresh zero amount.
func ZeroWei() *uint256.Int {
	return new(uint256.Int)
}
