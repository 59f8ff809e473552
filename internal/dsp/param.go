package dsp

import (
	"math"
	"sort"
)

// MinRampValue is the floor applied to both ends of an exponential ramp.
// An exponential curve cannot reach or start from zero.
const MinRampValue = 1e-4

type rampKind int

const (
	holdValue rampKind = iota
	linearRamp
	exponentialRamp
)

type paramEvent struct {
	kind  rampKind
	time  float64
	value float64
}

// Param is a value automated against the shared audio clock. Each event
// defines the value at its time; a ramp event interpolates from the
// preceding event to itself. Methods return the Param for chaining.
type Param struct {
	initial float64
	events  []paramEvent
}

func NewParam(value float64) *Param {
	return &Param{initial: value}
}

// SetValueAtTime holds value from t onward.
func (p *Param) SetValueAtTime(value, t float64) *Param {
	p.insert(paramEvent{kind: holdValue, time: t, value: value})
	return p
}

// LinearRampToValueAtTime ramps linearly from the previous event to value at t.
func (p *Param) LinearRampToValueAtTime(value, t float64) *Param {
	p.insert(paramEvent{kind: linearRamp, time: t, value: value})
	return p
}

// ExponentialRampToValueAtTime ramps geometrically from the previous event
// to value at t. Values below MinRampValue are raised to it.
func (p *Param) ExponentialRampToValueAtTime(value, t float64) *Param {
	p.insert(paramEvent{kind: exponentialRamp, time: t, value: math.Max(value, MinRampValue)})
	return p
}

func (p *Param) insert(ev paramEvent) {
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].time > ev.time })
	p.events = append(p.events, paramEvent{})
	copy(p.events[i+1:], p.events[i:])
	p.events[i] = ev
}

// ValueAt evaluates the automation at clock time t.
func (p *Param) ValueAt(t float64) float64 {
	if len(p.events) == 0 {
		return p.initial
	}
	prevTime, prevValue, havePrev := 0.0, p.initial, false
	for _, ev := range p.events {
		if ev.time <= t {
			prevTime, prevValue, havePrev = ev.time, ev.value, true
			continue
		}
		if !havePrev || ev.kind == holdValue {
			return prevValue
		}
		frac := (t - prevTime) / (ev.time - prevTime)
		if ev.kind == linearRamp {
			return prevValue + (ev.value-prevValue)*frac
		}
		from := math.Max(prevValue, MinRampValue)
		return from * math.Pow(ev.value/from, frac)
	}
	return prevValue
}
