package sensor

import "fmt"

// Source provides raw ADC samples for numbered channels.
type Source interface {
	ReadRaw(channel int) (uint16, error)
}

var (
	_ Source = (*Bounded)(nil)
	_ Source = (*Serial)(nil)
	_ Source = (*Mock)(nil)
)

// Bounded clamps samples from another source to [0, resolution-1].
type Bounded struct {
	src        Source
	resolution int
}

// NewBounded wraps src so that it never yields more than resolution-1.
func NewBounded(src Source, resolution int) *Bounded {
	return &Bounded{src: src, resolution: resolution}
}

// ReadRaw reads from the wrapped source and clamps the value.
func (b *Bounded) ReadRaw(channel int) (uint16, error) {
	raw, err := b.src.ReadRaw(channel)
	if err != nil {
		return 0, err
	}
	return Clamp(raw, b.resolution), nil
}

// Clamp limits raw to the range of an ADC with the given resolution.
func Clamp(raw uint16, resolution int) uint16 {
	if resolution <= 0 {
		return 0
	}
	if int(raw) >= resolution {
		return uint16(resolution - 1)
	}
	return raw
}

func checkChannel(channel, count int) error {
	if channel < 0 || channel >= count {
		return fmt.Errorf("invalid channel %d: expected 0..%d", channel, count-1)
	}
	return nil
}
