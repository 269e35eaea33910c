// Package record captures meeting audio with an ffmpeg subprocess.
package record

import (
	"fmt"
	"log"
	"os/exec"
	"runtime"
	"sync"
	"syscall"
	"time"
)

// Recorder wraps a single ffmpeg capture process. Start and Stop may be
// called from different goroutines.
type Recorder struct {
	outputPath string
	bitRate    string

	mu      sync.Mutex
	cmd     *exec.Cmd
	started bool
}

// NewRecorder creates a recorder writing opus audio to outputPath.
func NewRecorder(outputPath, bitRate string) *Recorder {
	if bitRate == "" {
		bitRate = "256k"
	}
	return &Recorder{outputPath: outputPath, bitRate: bitRate}
}

// OutputPath returns the audio file path.
func (r *Recorder) OutputPath() string {
	return r.outputPath
}

// Start launches ffmpeg against the platform's loopback audio device.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return fmt.Errorf("recording already started")
	}

	var args []string
	switch runtime.GOOS {
	case "darwin":
		args = []string{
			"-f", "avfoundation",
			"-i", ":0",
			"-acodec", "libopus",
			"-b:a", "128k",
			"-ac", "1",
			"-ar", "48000",
			r.outputPath,
		}
	case "linux":
		args = []string{
			"-f", "pulse",
			"-i", "virtual-sink.monitor",
			"-af", "aresample=async=1000", // Keep audio in sync over long captures
			"-acodec", "libopus",
			"-application", "audio",
			"-b:a", r.bitRate,
			"-vbr", "on",
			"-frame_duration", "60",
			"-ac", "1",
			"-ar", "48000",
			r.outputPath,
		}
	default:
		return fmt.Errorf("unsupported operating system for recording: %s", runtime.GOOS)
	}

	r.cmd = exec.Command("ffmpeg", args...)
	if err := r.cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %v", err)
	}

	r.started = true
	log.Printf("Recording started. Output will be saved to %s", r.outputPath)
	return nil
}

// Stop terminates ffmpeg, escalating to a kill if it does not exit.
func (r *Recorder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started || r.cmd == nil || r.cmd.Process == nil {
		log.Println("No recording was started, nothing to stop.")
		return
	}

	log.Println("Stopping audio recording...")
	if err := r.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		log.Printf("Failed to signal ffmpeg: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- r.cmd.Wait() }()

	select {
	case <-done:
		log.Println("Recording stopped.")
	case <-time.After(10 * time.Second):
		log.Println("Recording process did not terminate in time. Forcibly killing it.")
		if err := r.cmd.Process.Kill(); err != nil {
			log.Printf("Failed to kill ffmpeg: %v", err)
		}
		<-done
	}
	r.started = false
}

// Started reports whether a capture is in progress.
func (r *Recorder) Started() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started
}
