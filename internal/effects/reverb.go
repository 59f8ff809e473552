package effects

// ReverbParams configures a Reverb.
type ReverbParams struct {
	Size    float32 // 0..1, scales the delay lines
	Decay   float32 // comb feedback, 0..0.95
	Damping float32 // lowpass in the comb feedback path, 0..1
	Mix     float32 // wet amount, 0..1
}

// Reverb is a small Schroeder room: four damped comb filters in parallel
// feeding two allpass diffusers. The right channel reads its combs with a
// fixed offset for width.
type Reverb struct {
	combs   [4]comb
	diffuse [2]allpass
	spread  int
	mix     float32
}

type comb struct {
	buf      []float32
	pos      int
	feedback float32
	damp     float32
	store    float32
}

type allpass struct {
	buf []float32
	pos int
}

var combRatios = [4]float32{1, 1.117, 1.271, 1.437}

func NewReverb(sampleRate int, p ReverbParams) *Reverb {
	base := int(float32(sampleRate) * clamp(p.Size, 0, 1) * 0.05)
	if base < 16 {
		base = 16
	}
	r := &Reverb{
		mix:    clamp(p.Mix, 0, 1),
		spread: base / 40,
	}
	for i := range r.combs {
		r.combs[i] = comb{
			buf:      make([]float32, int(float32(base)*combRatios[i])+r.spread+1),
			feedback: clamp(p.Decay, 0, 0.95),
			damp:     clamp(p.Damping, 0, 1),
		}
	}
	r.diffuse[0] = allpass{buf: make([]float32, max(base*347/1000, 1))}
	r.diffuse[1] = allpass{buf: make([]float32, max(base*213/1000, 1))}
	return r
}

func (r *Reverb) Process(l, rt float32) (float32, float32) {
	in := (l + rt) * 0.5
	var wetL, wetR float32
	for i := range r.combs {
		c := &r.combs[i]
		wetL += c.process(in)
		wetR += c.tap(r.spread)
	}
	wetL *= 0.25
	wetR *= 0.25
	for i := range r.diffuse {
		wetL = r.diffuse[i].process(wetL)
	}
	dry := 1 - r.mix
	return l*dry + wetL*r.mix, rt*dry + wetR*r.mix
}

func (r *Reverb) Reset() {
	for i := range r.combs {
		clear(r.combs[i].buf)
		r.combs[i].pos = 0
		r.combs[i].store = 0
	}
	for i := range r.diffuse {
		clear(r.diffuse[i].buf)
		r.diffuse[i].pos = 0
	}
}

func (c *comb) process(in float32) float32 {
	out := c.buf[c.pos]
	c.store = out*(1-c.damp) + c.store*c.damp
	c.buf[c.pos] = in + c.store*c.feedback
	c.pos++
	if c.pos == len(c.buf) {
		c.pos = 0
	}
	return out
}

// tap reads the comb line offset samples behind the write head.
func (c *comb) tap(offset int) float32 {
	i := c.pos - 1 - offset
	for i < 0 {
		i += len(c.buf)
	}
	return c.buf[i]
}

func (a *allpass) process(in float32) float32 {
	delayed := a.buf[a.pos]
	a.buf[a.pos] = in + delayed*0.5
	a.pos++
	if a.pos == len(a.buf) {
		a.pos = 0
	}
	return delayed - in
}
