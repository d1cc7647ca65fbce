package playback

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/gen2brain/malgo"
)

// PullFunc fills an interleaved float32 block. It is called from the audio
// rendering thread and must not block.
type PullFunc func(out []float32)

// OutputDevice abstracts the platform playback device so sessions can be
// driven by a manual pump in tests.
type OutputDevice interface {
	Start(sampleRate, channels int, pull PullFunc) error
	Stop() error
	Close() error
}

// MalgoDevice plays through the default output device via miniaudio.
type MalgoDevice struct {
	mu     sync.Mutex
	ctx    *malgo.AllocatedContext
	device *malgo.Device
	block  []float32
}

// NewMalgoDevice returns an uninitialized device; the underlying context is
// created on Start.
func NewMalgoDevice() *MalgoDevice {
	return &MalgoDevice{}
}

// Start opens the default playback device and begins pulling audio.
func (d *MalgoDevice) Start(sampleRate, channels int, pull PullFunc) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.device != nil {
		return fmt.Errorf("device already started")
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("initialize audio context: %w", err)
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatF32
	cfg.Playback.Channels = uint32(channels)
	cfg.SampleRate = uint32(sampleRate)

	callbacks := malgo.DeviceCallbacks{
		Data: func(pOutput, pInput []byte, frameCount uint32) {
			n := int(frameCount) * channels
			if cap(d.block) < n {
				d.block = make([]float32, n)
			}
			block := d.block[:n]
			for i := range block {
				block[i] = 0
			}
			pull(block)
			for i, v := range block {
				binary.LittleEndian.PutUint32(pOutput[i*4:], math.Float32bits(v))
			}
		},
	}

	device, err := malgo.InitDevice(ctx.Context, cfg, callbacks)
	if err != nil {
		uninitContext(ctx)
		return fmt.Errorf("initialize playback device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		uninitContext(ctx)
		return fmt.Errorf("start playback device: %w", err)
	}

	d.ctx = ctx
	d.device = device
	return nil
}

// Stop halts playback. Stopping an idle device is a no-op.
func (d *MalgoDevice) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.device == nil {
		return nil
	}
	return d.device.Stop()
}

// Close releases the device and its context. Best-effort: a failing uninit
// never prevents the rest of the teardown.
func (d *MalgoDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.device != nil {
		d.device.Uninit()
		d.device = nil
	}
	if d.ctx != nil {
		uninitContext(d.ctx)
		d.ctx = nil
	}
	return nil
}

func uninitContext(ctx *malgo.AllocatedContext) {
	_ = ctx.Uninit()
	ctx.Free()
}
