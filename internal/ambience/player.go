// Package ambience plays a rain soundscape that follows the on-screen
// rain intensity.
package ambience

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"

	"github.com/iburimskiy/rain-visualization/internal/config"
)

// levelWindow is the number of recent samples the level meter averages.
const levelWindow = 2048

// Player owns the audio chain: noise (+ sample loop) -> tap -> volume -> ctrl.
type Player struct {
	format beep.Format
	noise  *Noise
	tap    *levelTap
	volume *effects.Volume
	ctrl   *beep.Ctrl

	sample      beep.StreamSeekCloser
	currentFile *os.File

	level   float64
	started bool
	logger  *slog.Logger
}

// NewPlayer builds the chain described by cfg. Nothing is audible until
// Start. A sample that cannot be opened is an error.
func NewPlayer(cfg config.AudioConfig, logger *slog.Logger) (*Player, error) {
	if logger == nil {
		logger = slog.Default()
	}
	sr := beep.SampleRate(cfg.SampleRate)
	p := &Player{
		format: beep.Format{SampleRate: sr, NumChannels: 2, Precision: 2},
		noise:  NewNoise(sr, 0),
		logger: logger,
	}

	var src beep.Streamer = p.noise
	if cfg.Sample != "" {
		loop, err := p.openSample(cfg.Sample)
		if err != nil {
			return nil, err
		}
		src = beep.Mix(p.noise, loop)
	}

	p.tap = newLevelTap(src, config.VisualRingSize)
	p.volume = &effects.Volume{Streamer: p.tap, Base: 2, Volume: cfg.Volume}
	p.ctrl = &beep.Ctrl{Streamer: p.volume, Paused: false}
	return p, nil
}

// openSample decodes a looping background sample, resampled to the
// player's rate when needed.
func (p *Player) openSample(path string) (beep.Streamer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening sample: %w", err)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	default:
		_ = f.Close()
		return nil, errors.New("unsupported sample type: " + ext)
	}
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("decoding sample %s: %w", path, err)
	}

	p.currentFile = f
	p.sample = streamer
	p.logger.Info("ambience sample loaded", "path", path, "rate", int(format.SampleRate))

	var loop beep.Streamer = beep.Loop(-1, streamer)
	if format.SampleRate != p.format.SampleRate {
		loop = beep.Resample(4, format.SampleRate, p.format.SampleRate, loop)
	}
	return loop, nil
}

// Start opens the audio device and begins playback.
func (p *Player) Start() error {
	if p.started {
		return nil
	}
	bufferSize := p.format.SampleRate.N(time.Second / 20)
	if err := speaker.Init(p.format.SampleRate, bufferSize); err != nil {
		return fmt.Errorf("initializing speaker: %w", err)
	}
	p.started = true
	speaker.Play(p.ctrl)
	return nil
}

// SetIntensity sets how heavy the rain sounds, in [0,1].
func (p *Player) SetIntensity(v float64) {
	p.noise.SetIntensity(v)
}

// SetPaused pauses or resumes the whole chain.
func (p *Player) SetPaused(paused bool) {
	p.lock()
	p.ctrl.Paused = paused
	p.unlock()
}

// ToggleMute silences or restores output and returns whether it is muted.
func (p *Player) ToggleMute() bool {
	p.lock()
	defer p.unlock()
	p.volume.Silent = !p.volume.Silent
	return p.volume.Silent
}

// Level returns the smoothed loudness of what was played recently, for
// a meter. Call it once per frame.
func (p *Player) Level() float64 {
	mag := clamp01(p.tap.rms(levelWindow) * 2)
	p.level = config.SmoothingFactor*p.level + (1-config.SmoothingFactor)*mag
	return p.level
}

// Close stops playback and releases the sample file.
func (p *Player) Close() {
	if p.started {
		speaker.Lock()
		speaker.Clear()
		speaker.Unlock()
	}
	if p.sample != nil {
		_ = p.sample.Close()
		p.sample = nil
	}
	if p.currentFile != nil {
		_ = p.currentFile.Close()
		p.currentFile = nil
	}
}

// The speaker lock only exists once the device is open.
func (p *Player) lock() {
	if p.started {
		speaker.Lock()
	}
}

func (p *Player) unlock() {
	if p.started {
		speaker.Unlock()
	}
}
