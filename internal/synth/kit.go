package synth

// MaxVolume is the upper bound of a channel volume.
const MaxVolume = 1.2

// Kit is the preset selection and per-channel volume the engine plays with.
// It is a plain value: the scheduler side holds a snapshot, and a change is
// applied by handing over a new Kit.
type Kit struct {
	Bass  BassSound
	Kick  KickSound
	Snare SnareSound
	HiHat HiHatSound
	Clap  ClapSound
	Tom   TomSound

	Volumes [ChannelCount]float64
}

func DefaultKit() Kit {
	k := Kit{
		Bass:  Electric,
		Kick:  KickAcoustic,
		Snare: SnareAcoustic,
		HiHat: HiHatAcoustic,
		Clap:  ClapAcoustic,
		Tom:   TomLow,
	}
	for i := range k.Volumes {
		k.Volumes[i] = 1
	}
	return k
}

// SetVolume clamps v to [0, MaxVolume]. Unknown channels are ignored.
func (k *Kit) SetVolume(c Channel, v float64) {
	if c < 0 || c >= ChannelCount {
		return
	}
	k.Volumes[c] = min(max(v, 0), MaxVolume)
}

func (k Kit) Volume(c Channel) float64 {
	if c < 0 || c >= ChannelCount {
		return 0
	}
	return k.Volumes[c]
}

// Voice resolves the channel's preset. An unset or unknown preset yields the
// channel default, so a Voice is always returned.
func (k Kit) Voice(c Channel) Voice {
	switch c {
	case Kick:
		return kickVoices[ParseKickSound(string(k.Kick))]
	case Snare:
		return snareVoices[ParseSnareSound(string(k.Snare))]
	case HiHat:
		return hihatVoices[ParseHiHatSound(string(k.HiHat))]
	case Clap:
		return clapVoices[ParseClapSound(string(k.Clap))]
	case Tom:
		return tomVoices[ParseTomSound(string(k.Tom))]
	default:
		return bassVoices[ParseBassSound(string(k.Bass))]
	}
}

// SetPreset selects a preset by name; unknown names select the default.
func (k *Kit) SetPreset(c Channel, name string) {
	switch c {
	case Bass:
		k.Bass = ParseBassSound(name)
	case Kick:
		k.Kick = ParseKickSound(name)
	case Snare:
		k.Snare = ParseSnareSound(name)
	case HiHat:
		k.HiHat = ParseHiHatSound(name)
	case Clap:
		k.Clap = ParseClapSound(name)
	case Tom:
		k.Tom = ParseTomSound(name)
	}
}

// Preset returns the channel's current preset name.
func (k Kit) Preset(c Channel) string {
	switch c {
	case Kick:
		return string(ParseKickSound(string(k.Kick)))
	case Snare:
		return string(ParseSnareSound(string(k.Snare)))
	case HiHat:
		return string(ParseHiHatSound(string(k.HiHat)))
	case Clap:
		return string(ParseClapSound(string(k.Clap)))
	case Tom:
		return string(ParseTomSound(string(k.Tom)))
	default:
		return string(ParseBassSound(string(k.Bass)))
	}
}
