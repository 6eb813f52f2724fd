package dotosu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

const (
	SECTION_GENERAL       = "General"
	SECTION_DIFFICULTY    = "Difficulty"
	SECTION_TIMING_POINTS = "TimingPoints"
	SECTION_HIT_OBJECTS   = "HitObjects"

	FIELD_DELIMITER = ","
	HEADER_PREFIX   = "osu file format v"
)

// Minimum field counts per record kind (index of the last consumed field + 1).
const (
	timingPointFields = 7
	circleFields      = 4
	spinnerFields     = 6
	sliderFields      = 8
)

// timingState is the running slider timing of one decode. It starts at the
// neutral 1.0 values so a slider before any timing point still resolves.
type timingState struct {
	beatLength               float64
	sliderVelocityMultiplier float64
	sliderMultiplier         float64
}

func newTimingState() timingState {
	return timingState{beatLength: 1, sliderVelocityMultiplier: 1, sliderMultiplier: 1}
}

// ---------- Public API ----------

// DecodeFile opens path, decodes it and closes it again on every return path.
// Open and read failures are reported as *IOError.
func DecodeFile(path string) (*Beatmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	defer f.Close()
	b, err := Decode(f)
	var ioErr *IOError
	if errors.As(err, &ioErr) && ioErr.Path == "" {
		ioErr.Path = path
	}
	return b, err
}

// Decode reads a beatmap line by line. Unknown sections and unknown keys are
// skipped; a record inside a known section that cannot be interpreted aborts
// the whole decode with a *MalformedLineError.
func Decode(r io.Reader) (*Beatmap, error) {
	sc := bufio.NewScanner(r)
	const maxLine = 1024 * 1024
	buf := make([]byte, 64*1024)
	sc.Buffer(buf, maxLine)

	d := decoder{b: &Beatmap{}, timing: newTimingState()}
	for sc.Scan() {
		d.lineNo++
		if err := d.line(sc.Text()); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, &IOError{Err: err}
	}
	return d.b, nil
}

// ---------- decoder ----------

type decoder struct {
	b       *Beatmap
	timing  timingState
	section string
	lineNo  int
	text    string
}

func (d *decoder) line(raw string) error {
	if d.lineNo == 1 {
		raw = strings.TrimPrefix(raw, "\ufeff")
	}
	line := strings.TrimSuffix(raw, "\r")
	if len(line) == 0 {
		return nil
	}
	d.text = line

	if line[0] == '[' {
		d.section = sectionName(line)
		return nil
	}

	switch d.section {
	case "":
		if strings.HasPrefix(line, HEADER_PREFIX) {
			// the header is informational; a garbled version is not fatal
			if v, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, HEADER_PREFIX))); err == nil {
				d.b.formatVersion = v
			}
		}
	case SECTION_GENERAL:
		k, v := splitKeyVal(line)
		if k == "AudioLeadIn" {
			leadIn, err := strconv.Atoi(v)
			if err != nil {
				return d.malformed("AudioLeadIn is not an integer", err)
			}
			d.b.leadIn = leadIn
		}
	case SECTION_DIFFICULTY:
		k, v := splitKeyVal(line)
		if k == "SliderMultiplier" {
			sm, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return d.malformed("SliderMultiplier is not a number", err)
			}
			d.timing.sliderMultiplier = sm
		}
	case SECTION_TIMING_POINTS:
		return d.timingPoint(line)
	case SECTION_HIT_OBJECTS:
		return d.hitObject(line)
	}
	return nil
}

// timingPoint applies "time,beatLength,meter,sampleSet,sampleIndex,volume,uninherited,effects".
// An uninherited point sets the base beat length. An inherited point derives
// the velocity from the beat length already in effect, not from its own
// (negative) beat length field.
func (d *decoder) timingPoint(line string) error {
	parts := Split(line, FIELD_DELIMITER)
	if len(parts) < timingPointFields {
		return d.malformed(fmt.Sprintf("timing point needs %d fields, got %d", timingPointFields, len(parts)), nil)
	}
	beatLen, err := d.parseFloat(parts[1], "beat length")
	if err != nil {
		return err
	}
	uninherited, err := d.parseInt(parts[6], "uninherited flag")
	if err != nil {
		return err
	}
	if uninherited != 0 {
		d.timing.beatLength = beatLen
	} else {
		d.timing.sliderVelocityMultiplier = -100.0 / d.timing.beatLength
	}
	return nil
}

// hitObject emits one event for "x,y,time,type,hitSound,objectParams...".
func (d *decoder) hitObject(line string) error {
	parts := Split(line, FIELD_DELIMITER)
	if len(parts) < circleFields {
		return d.malformed(fmt.Sprintf("hit object needs at least %d fields, got %d", circleFields, len(parts)), nil)
	}
	t, err := d.parseInt(parts[2], "time")
	if err != nil {
		return err
	}
	flags, err := d.parseInt(parts[3], "type")
	if err != nil {
		return err
	}

	ev := HitEvent{
		Kind:        HitObjectTypeFlags(flags).Kind(),
		StartTimeMs: t + d.b.leadIn,
	}
	switch ev.Kind {
	case KindSlider:
		if ev.DurationMs, err = d.sliderDuration(parts); err != nil {
			return err
		}
	case KindSpinner:
		if len(parts) < spinnerFields {
			return d.malformed(fmt.Sprintf("spinner needs %d fields, got %d", spinnerFields, len(parts)), nil)
		}
		end, err := d.parseInt(parts[5], "spinner end time")
		if err != nil {
			return err
		}
		// end time is taken raw while the start carries the lead-in
		ev.DurationMs = end - ev.StartTimeMs
	}
	d.b.events = append(d.b.events, ev)
	return nil
}

func (d *decoder) sliderDuration(parts []string) (int, error) {
	if len(parts) < sliderFields {
		return 0, d.malformed(fmt.Sprintf("slider needs %d fields, got %d", sliderFields, len(parts)), nil)
	}
	slides, err := d.parseInt(parts[6], "slides")
	if err != nil {
		return 0, err
	}
	length, err := d.parseFloat(parts[7], "length")
	if err != nil {
		return 0, err
	}
	ts := d.timing
	velocity := ts.sliderMultiplier * 100 * ts.sliderVelocityMultiplier
	if velocity == 0 {
		return 0, d.malformed("slider velocity is zero", nil)
	}
	ms := length / velocity * ts.beatLength * float64(slides)
	if math.IsNaN(ms) || math.IsInf(ms, 0) || ms >= math.MaxInt || ms <= math.MinInt {
		return 0, d.malformed(fmt.Sprintf("slider duration %v does not fit an int", ms), nil)
	}
	return int(ms), nil
}

// ---------- parsing helpers ----------

func (d *decoder) malformed(reason string, err error) error {
	return &MalformedLineError{Line: d.lineNo, Text: d.text, Section: d.section, Reason: reason, Err: err}
}

func (d *decoder) parseInt(s, field string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, d.malformed(field+" is not an integer", err)
	}
	return v, nil
}

func (d *decoder) parseFloat(s, field string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, d.malformed(field+" is not a number", err)
	}
	return v, nil
}

// sectionName returns the text between '[' and the last ']'. A header with no
// closing bracket names everything after '['.
func sectionName(line string) string {
	end := strings.LastIndexByte(line, ']')
	if end < 1 {
		return line[1:]
	}
	return line[1:end]
}

func splitKeyVal(line string) (key, val string) {
	i := strings.Index(line, ":")
	if i < 0 {
		return strings.TrimSpace(line), ""
	}
	return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:])
}
