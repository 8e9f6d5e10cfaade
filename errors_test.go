package regfhive_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	regfhive "github.com/joshuapare/regfhive"
)

func TestDecodeErrorIsIgnoresOffsetAndDetail(t *testing.T) {
	a := &regfhive.DecodeError{Kind: regfhive.InvalidSignature, Offset: 10, Detail: "x"}
	b := &regfhive.DecodeError{Kind: regfhive.InvalidSignature, Offset: 99, Detail: "y"}
	require.True(t, errors.Is(a, b))

	c := &regfhive.DecodeError{Kind: regfhive.InvalidChecksum}
	require.False(t, errors.Is(a, c))
}

func TestDecodeErrorMessageIncludesOffset(t *testing.T) {
	err := &regfhive.DecodeError{Kind: regfhive.InvalidBinSignature, Offset: 0x1000, Detail: "got \"xxxx\""}
	require.Contains(t, err.Error(), "0x1000")
	require.Contains(t, err.Error(), "InvalidBinSignature")
}
