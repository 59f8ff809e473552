package effects

import "math"

// CompressorParams configures a Compressor.
type CompressorParams struct {
	ThresholdDB float32 // level where reduction starts, e.g. -20
	Ratio       float32 // 4 means 4:1
	AttackMs    float32
	ReleaseMs   float32
	MakeupDB    float32
}

// Compressor is a feed-forward compressor with one envelope follower shared
// by both channels, so the stereo image does not shift under reduction.
type Compressor struct {
	threshold float32
	slope     float64 // 1/ratio - 1
	attack    float32
	release   float32
	makeup    float32
	env       float32
}

func NewCompressor(sampleRate int, p CompressorParams) *Compressor {
	if p.Ratio < 1 {
		p.Ratio = 1
	}
	return &Compressor{
		threshold: dbToGain(p.ThresholdDB),
		slope:     1/float64(p.Ratio) - 1,
		attack:    followerCoeff(sampleRate, p.AttackMs),
		release:   followerCoeff(sampleRate, p.ReleaseMs),
		makeup:    dbToGain(p.MakeupDB),
	}
}

// NewLimiter returns a fast, high-ratio compressor used at the end of the
// master bus to keep summed voices out of hard clipping.
func NewLimiter(sampleRate int) *Compressor {
	return NewCompressor(sampleRate, CompressorParams{
		ThresholdDB: -1,
		Ratio:       20,
		AttackMs:    0.5,
		ReleaseMs:   80,
	})
}

func followerCoeff(sampleRate int, ms float32) float32 {
	if ms <= 0 {
		return 1
	}
	return float32(1 - math.Exp(-1/(float64(ms)*float64(sampleRate)/1000)))
}

func (c *Compressor) Process(l, r float32) (float32, float32) {
	level := float32(math.Max(math.Abs(float64(l)), math.Abs(float64(r))))
	coeff := c.release
	if level > c.env {
		coeff = c.attack
	}
	c.env += coeff * (level - c.env)
	g := c.Gain() * c.makeup
	return l * g, r * g
}

// Gain returns the current gain reduction factor, 1 when below threshold.
func (c *Compressor) Gain() float32 {
	if c.env <= c.threshold || c.threshold <= 0 {
		return 1
	}
	return float32(math.Pow(float64(c.env/c.threshold), c.slope))
}

func (c *Compressor) Reset() {
	c.env = 0
}
