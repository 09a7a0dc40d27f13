package normalmap

import (
	"fmt"
	"strings"
)

// Channel selects which component of a pixel is read as height.
type Channel int

const (
	ChannelRed Channel = iota
	ChannelGreen
	ChannelBlue
	ChannelAlpha
	ChannelLuma
)

var channelNames = [...]string{"red", "green", "blue", "alpha", "luma"}

func (c Channel) String() string {
	if c < 0 || int(c) >= len(channelNames) {
		return fmt.Sprintf("Channel(%d)", int(c))
	}
	return channelNames[c]
}

// ParseChannel parses a channel name such as "red" or "luma".
func ParseChannel(s string) (Channel, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range channelNames {
		if n == name {
			return Channel(i), nil
		}
	}
	return ChannelRed, fmt.Errorf("unknown channel %q", s)
}

// pick returns the selected component of a non-premultiplied pixel.
func (c Channel) pick(r, g, b, a uint8) uint8 {
	switch c {
	case ChannelGreen:
		return g
	case ChannelBlue:
		return b
	case ChannelAlpha:
		return a
	case ChannelLuma:
		// Rec. 601 weights, rounded.
		return uint8((299*uint32(r) + 587*uint32(g) + 114*uint32(b) + 500) / 1000)
	default:
		return r
	}
}
