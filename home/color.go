package home

import (
	"fmt"
	"strconv"
	"strings"
)

type RGB struct {
	R, G, B uint8
}

// Hex returns the colour as "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// HexToRGB converts "#rrggbb" (the leading # is optional) to its channels.
// The digits are read as one integer, so short inputs land in the low channels.
func HexToRGB(hex string) (RGB, error) {
	hex = strings.TrimPrefix(hex, "#")
	v, err := strconv.ParseUint(hex, 16, 64)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex colour %q: %w", hex, err)
	}
	return RGB{
		R: uint8((v >> 16) & 0xff),
		G: uint8((v >> 8) & 0xff),
		B: uint8(v & 0xff),
	}, nil
}
