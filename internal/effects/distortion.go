package effects

import "math"

// Curve selects the waveshaping transfer function.
type Curve int

const (
	CurveTanh Curve = iota // smooth saturation
	CurveHard              // hard clip at ±1
	CurveAsym              // tube-like, softer on the negative half
)

// DistortionParams configures a Distortion.
type DistortionParams struct {
	Curve  Curve
	Drive  float32 // input gain before shaping, >= 1
	Level  float32 // output gain
	ToneHz float32 // one-pole lowpass after shaping, 0 disables
}

// Distortion is a waveshaper with drive, output level and a tone filter.
// Tanh and asymmetric curves are normalised so a full-scale input maps to
// roughly full-scale output regardless of drive.
type Distortion struct {
	curve Curve
	drive float64
	norm  float64
	level float32
	alpha float32
	toneL float32
	toneR float32
}

func NewDistortion(sampleRate int, p DistortionParams) *Distortion {
	if p.Drive < 1 {
		p.Drive = 1
	}
	d := &Distortion{
		curve: p.Curve,
		drive: float64(p.Drive),
		level: p.Level,
		norm:  1,
	}
	if p.Curve != CurveHard {
		d.norm = 1 / math.Tanh(d.drive)
	}
	if p.ToneHz > 0 && p.ToneHz < float32(sampleRate)/2 {
		rc := 1 / (2 * math.Pi * float64(p.ToneHz))
		dt := 1 / float64(sampleRate)
		d.alpha = float32(dt / (rc + dt))
	}
	return d
}

func (d *Distortion) shape(x float32) float32 {
	v := float64(x) * d.drive
	switch d.curve {
	case CurveHard:
		v = math.Max(-1, math.Min(1, v))
	case CurveAsym:
		if v < 0 {
			v = math.Tanh(v * 0.6)
		} else {
			v = math.Tanh(v)
		}
		v *= d.norm
	default:
		v = math.Tanh(v) * d.norm
	}
	return float32(v) * d.level
}

func (d *Distortion) Process(l, r float32) (float32, float32) {
	l, r = d.shape(l), d.shape(r)
	if d.alpha > 0 {
		d.toneL += d.alpha * (l - d.toneL)
		d.toneR += d.alpha * (r - d.toneR)
		l, r = d.toneL, d.toneR
	}
	return l, r
}

func (d *Distortion) Reset() {
	d.toneL = 0
	d.toneR = 0
}
