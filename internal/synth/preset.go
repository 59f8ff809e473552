package synth

import (
	"fmt"
	"strings"

	"github.com/cbegin/basslab-go/internal/lick"
)

// Channel is one mixer strip of the kit: the bass plus one per drum voice.
type Channel int

const (
	Bass Channel = iota
	Kick
	Snare
	HiHat
	Clap
	Tom
	ChannelCount
)

var channelNames = [ChannelCount]string{"bass", "kick", "snare", "hihat", "clap", "tom"}

func (c Channel) String() string {
	if c < 0 || c >= ChannelCount {
		return fmt.Sprintf("channel(%d)", int(c))
	}
	return channelNames[c]
}

func ParseChannel(name string) (Channel, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range channelNames {
		if n == name {
			return Channel(i), true
		}
	}
	return 0, false
}

// DrumChannel maps a pattern column to its kit channel.
func DrumChannel(d lick.Drum) Channel {
	return Channel(d) + Kick
}

type BassSound string

const (
	PBass     BassSound = "P-Bass"
	JBass     BassSound = "J-Bass"
	MutedPick BassSound = "Muted Pick"
	SubSynth  BassSound = "Sub Synth"
	Classic   BassSound = "Classic"
	SynthBass BassSound = "Synth"
	Electric  BassSound = "Electric"
)

var BassSounds = []BassSound{PBass, JBass, MutedPick, SubSynth, Classic, SynthBass, Electric}

type KickSound string

const (
	KickAcoustic KickSound = "Acoustic"
	Kick808      KickSound = "808"
	KickRock     KickSound = "Rock"
	KickThump    KickSound = "Thump"
)

var KickSounds = []KickSound{KickAcoustic, Kick808, KickRock, KickThump}

type SnareSound string

const (
	SnareAcoustic SnareSound = "Acoustic"
	Snare808      SnareSound = "808"
	SnareBrush    SnareSound = "Brush"
	SnareTight    SnareSound = "Tight"
)

var SnareSounds = []SnareSound{SnareAcoustic, Snare808, SnareBrush, SnareTight}

type HiHatSound string

const (
	HiHatAcoustic HiHatSound = "Acoustic"
	HiHat808      HiHatSound = "808"
	HiHatBright   HiHatSound = "Bright"
)

var HiHatSounds = []HiHatSound{HiHatAcoustic, HiHat808, HiHatBright}

type ClapSound string

const (
	ClapAcoustic ClapSound = "Acoustic"
	Clap808      ClapSound = "808"
)

var ClapSounds = []ClapSound{ClapAcoustic, Clap808}

type TomSound string

const (
	TomLow     TomSound = "Acoustic Low"
	TomMid     TomSound = "Acoustic Mid"
	TomHigh    TomSound = "Acoustic High"
	TomElectro TomSound = "Electro"
)

var TomSounds = []TomSound{TomLow, TomMid, TomHigh, TomElectro}

var (
	bassVoices = map[BassSound]Voice{
		PBass:     pBass{},
		JBass:     jBass{},
		MutedPick: mutedPick{},
		SubSynth:  subSynth{},
		Classic:   classicBass{},
		SynthBass: synthBass{},
		Electric:  electricBass{},
	}
	kickVoices = map[KickSound]Voice{
		KickAcoustic: acousticKick{},
		Kick808:      kick808{},
		KickRock:     rockKick{},
		KickThump:    thumpKick{},
	}
	snareVoices = map[SnareSound]Voice{
		SnareAcoustic: acousticSnare{},
		Snare808:      snare808{},
		SnareBrush:    brushSnare{},
		SnareTight:    tightSnare{},
	}
	hihatVoices = map[HiHatSound]Voice{
		HiHatAcoustic: acousticHiHat{},
		HiHat808:      hihat808{},
		HiHatBright:   brightHiHat{},
	}
	clapVoices = map[ClapSound]Voice{
		ClapAcoustic: acousticClap{},
		Clap808:      clap808{},
	}
	tomVoices = map[TomSound]Voice{
		TomLow:     lowTom{},
		TomMid:     midTom{},
		TomHigh:    highTom{},
		TomElectro: electroTom{},
	}
)

// ParseBassSound returns the named preset, or Electric for anything unknown.
func ParseBassSound(name string) BassSound {
	if _, ok := bassVoices[BassSound(name)]; ok {
		return BassSound(name)
	}
	return Electric
}

func ParseKickSound(name string) KickSound {
	if _, ok := kickVoices[KickSound(name)]; ok {
		return KickSound(name)
	}
	return KickAcoustic
}

func ParseSnareSound(name string) SnareSound {
	if _, ok := snareVoices[SnareSound(name)]; ok {
		return SnareSound(name)
	}
	return SnareAcoustic
}

func ParseHiHatSound(name string) HiHatSound {
	if _, ok := hihatVoices[HiHatSound(name)]; ok {
		return HiHatSound(name)
	}
	return HiHatAcoustic
}

func ParseClapSound(name string) ClapSound {
	if _, ok := clapVoices[ClapSound(name)]; ok {
		return ClapSound(name)
	}
	return ClapAcoustic
}

func ParseTomSound(name string) TomSound {
	if _, ok := tomVoices[TomSound(name)]; ok {
		return TomSound(name)
	}
	return TomLow
}

// Presets lists the selectable preset names for a channel.
func Presets(c Channel) []string {
	var out []string
	switch c {
	case Bass:
		for _, s := range BassSounds {
			out = append(out, string(s))
		}
	case Kick:
		for _, s := range KickSounds {
			out = append(out, string(s))
		}
	case Snare:
		for _, s := range SnareSounds {
			out = append(out, string(s))
		}
	case HiHat:
		for _, s := range HiHatSounds {
			out = append(out, string(s))
		}
	case Clap:
		for _, s := range ClapSounds {
			out = append(out, string(s))
		}
	case Tom:
		for _, s := range TomSounds {
			out = append(out, string(s))
		}
	}
	return out
}
