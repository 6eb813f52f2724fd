package dotosu

import (
	"fmt"
	"slices"
)

type ObjectKind uint8

const (
	KindCircle ObjectKind = iota
	KindSlider
	KindSpinner
)

func (k ObjectKind) String() string {
	switch k {
	case KindCircle:
		return "circle"
	case KindSlider:
		return "slider"
	case KindSpinner:
		return "spinner"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

type HitObjectTypeFlags int

const (
	TypeCircle     HitObjectTypeFlags = 1 << iota // 1
	TypeSlider                                    // 2
	TypeNewCombo                                  // 4
	TypeSpinner                                   // 8
	TypeComboSkip1                                // 16
	TypeComboSkip2                                // 32
	TypeComboSkip3                                // 64
)

// Kind classifies a type bitmask. The slider bit wins over the spinner bit.
func (f HitObjectTypeFlags) Kind() ObjectKind {
	switch {
	case f&TypeSlider != 0:
		return KindSlider
	case f&TypeSpinner != 0:
		return KindSpinner
	default:
		return KindCircle
	}
}

// HitEvent is one playable event. StartTimeMs already includes the map's
// audio lead-in.
type HitEvent struct {
	Kind        ObjectKind
	StartTimeMs int
	DurationMs  int
}

func (e HitEvent) EndTimeMs() int { return e.StartTimeMs + e.DurationMs }

func (e HitEvent) String() string {
	return fmt.Sprintf("%s@%d+%d", e.Kind, e.StartTimeMs, e.DurationMs)
}

// Beatmap is the decoded timeline of one .osu file. It is not modified after
// decoding.
type Beatmap struct {
	formatVersion int
	leadIn        int
	events        []HitEvent
}

// NewBeatmap builds a Beatmap from already resolved events. events is copied.
func NewBeatmap(formatVersion, leadIn int, events []HitEvent) *Beatmap {
	return &Beatmap{formatVersion: formatVersion, leadIn: leadIn, events: slices.Clone(events)}
}

// FormatVersion is the N of an "osu file format vN" header, or 0 if absent.
func (b *Beatmap) FormatVersion() int { return b.formatVersion }

func (b *Beatmap) LeadIn() int { return b.leadIn }

func (b *Beatmap) Len() int { return len(b.events) }

// Events returns the events in file order. The slice is a copy.
func (b *Beatmap) Events() []HitEvent { return slices.Clone(b.events) }

// EndTimeMs is the end of the last event in file order.
func (b *Beatmap) EndTimeMs() (int, error) {
	if len(b.events) == 0 {
		return 0, ErrEmptyBeatmap
	}
	return b.events[len(b.events)-1].EndTimeMs(), nil
}
