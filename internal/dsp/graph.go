package dsp

import "math"

// VoiceState is the lifecycle of one scheduled sound.
type VoiceState int

const (
	Idle      VoiceState = iota // built, no source started
	Scheduled                   // start time is in the future
	Sounding
	Silent // every source has stopped; terminal
)

func (s VoiceState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Scheduled:
		return "scheduled"
	case Sounding:
		return "sounding"
	default:
		return "silent"
	}
}

// Path sums its sources and runs the result through Chain in order.
type Path struct {
	Sources []Source
	Chain   []Processor
}

// Graph is one self-contained sound: parallel paths mixed and scaled by a
// volume. A graph is rendered once and never restarted.
type Graph struct {
	paths  []Path
	volume float64
}

func NewGraph(volume float64) *Graph {
	return &Graph{volume: volume}
}

// Connect adds a path and returns the graph.
func (g *Graph) Connect(p Path) *Graph {
	g.paths = append(g.paths, p)
	return g
}

// Sources lists every source so a caller can stop the sound early.
func (g *Graph) Sources() []Source {
	var out []Source
	for _, p := range g.paths {
		out = append(out, p.Sources...)
	}
	return out
}

// Start is the earliest source start time, +Inf when nothing was started.
func (g *Graph) Start() float64 {
	start := math.Inf(1)
	for _, p := range g.paths {
		for _, s := range p.Sources {
			if s.StopTime() != 0 {
				start = math.Min(start, s.StartTime())
			}
		}
	}
	return start
}

// End is the latest source stop time.
func (g *Graph) End() float64 {
	end := 0.0
	for _, p := range g.paths {
		for _, s := range p.Sources {
			end = math.Max(end, s.StopTime())
		}
	}
	return end
}

func (g *Graph) State(t float64) VoiceState {
	start := g.Start()
	switch {
	case math.IsInf(start, 1):
		return Idle
	case t < start:
		return Scheduled
	case t < g.End():
		return Sounding
	default:
		return Silent
	}
}

// Render produces the graph's output at clock time t. Calls must use
// increasing t; filters and oscillators carry state between calls.
func (g *Graph) Render(t float64) float64 {
	var out float64
	for _, p := range g.paths {
		var x float64
		for _, s := range p.Sources {
			x += s.Sample(t)
		}
		for _, proc := range p.Chain {
			x = proc.Process(t, x)
		}
		out += x
	}
	return out * g.volume
}
