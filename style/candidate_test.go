package style_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/styleprobe/styleprobe/style"
)

func TestCompareOrdersByDistanceThenCardinalityThenFingerprint(t *testing.T) {
	as := require.New(t)

	lowDistance := style.Candidate{Style: style.New("LLVM"), Distance: 1}
	highDistance := style.Candidate{Style: style.New("LLVM"), Distance: 2}
	as.True(style.Less(lowDistance, highDistance))

	fewerOptions := style.Candidate{Style: style.New("LLVM"), Distance: 1}
	moreOptions := style.Candidate{
		Style:    style.New("LLVM").With("IndentWidth", int64(2)),
		Distance: 1,
	}
	as.True(style.Less(fewerOptions, moreOptions))

	a := style.Candidate{Style: style.New("").With("Alpha", true), Distance: 0}
	b := style.Candidate{Style: style.New("").With("Beta", true), Distance: 0}
	as.True(style.Less(a, b), "tie-break must fall back to fingerprint order")
}

func TestInfiniteDistanceAlwaysLoses(t *testing.T) {
	as := require.New(t)

	finite := style.Candidate{Style: style.New("LLVM"), Distance: 1_000_000}
	infinite := style.Candidate{Style: style.New("Google"), Distance: style.Infinite}

	as.True(style.Less(finite, infinite))
}
