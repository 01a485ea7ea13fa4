// Package peakcache resolves the on-disk peakfile cache path for a
// source, generates peakfiles synchronously or via a worker job, and
// sweeps entries older than 90 days. Grounded on
// original_source/wf/peakgen.c's get_cache_dir/maintain_file_cache and
// the teacher's per-OS cache-dir resolution in logging.go, generalized
// to the XDG Base Directory default spec.md §6 names. See spec.md
// §4.3, §6.
package peakcache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ayyi/libwaveform-sub000/internal/decoder"
	"github.com/ayyi/libwaveform-sub000/internal/peakfile"
)

// PeakRatio is the number of source frames folded into one output
// (max,min) pair.
const PeakRatio = 256

// chunkFrames is the number of source frames streamed per decode call,
// WF_PEAK_RATIO × 8 per spec.md §4.3.
const chunkFrames = PeakRatio * 8

// Expiry is how long a peakfile may sit unused before Sweep deletes it.
const Expiry = 90 * 24 * time.Hour

// Dir returns (creating if needed) the peak cache directory under
// $XDG_CACHE_HOME (default $HOME/.cache).
func Dir() (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("peakcache: resolving home directory: %w", err)
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, "peak")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("peakcache: creating cache dir: %w", err)
	}
	return dir, nil
}

// PathFor returns the cache path for audioPath: $XDG_CACHE_HOME/peak/<md5(file_uri)>.peak.
func PathFor(audioPath string) (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(audioPath)
	if err != nil {
		abs = audioPath
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	sum := md5.Sum([]byte(u.String()))
	return filepath.Join(dir, hex.EncodeToString(sum[:])+".peak"), nil
}

// IsFresh reports whether peakPath exists, is no older than audioPath,
// and opens cleanly as a peakfile, per spec.md §4.2's freshness rule.
func IsFresh(audioPath, peakPath string) bool {
	srcInfo, err := os.Stat(audioPath)
	if err != nil {
		return false
	}
	peakInfo, err := os.Stat(peakPath)
	if err != nil {
		return false
	}
	if peakInfo.ModTime().Before(srcInfo.ModTime()) {
		return false
	}
	f, err := peakfile.Open(peakPath)
	if err != nil {
		return false
	}
	return f.NumPeaks() > 0
}

// Generator produces peakfiles from decoded audio.
type Generator struct {
	Decoder *decoder.Facade
}

// NewGenerator builds a Generator using the given decoder facade.
func NewGenerator(d *decoder.Facade) *Generator {
	return &Generator{Decoder: d}
}

// GenerateSync implements peakgen_sync: stream audioPath in
// chunkFrames-frame windows, fold each 256-frame window into a
// (max,min) pair per channel, and atomically publish the result at
// peakPath via a temp-file-then-rename.
func (g *Generator) GenerateSync(audioPath, peakPath string) error {
	h, err := g.Decoder.Open(audioPath)
	if err != nil {
		return fmt.Errorf("peakcache: opening %q: %w", audioPath, err)
	}
	defer h.Close()

	info := h.Info()
	channels := info.Channels
	if channels < 1 || channels > 2 {
		return fmt.Errorf("peakcache: %q has %d channels, want 1 or 2", audioPath, channels)
	}

	peaks := make([][]peakfile.Pair, channels)

	buf := make([][]int16, channels)
	for c := range buf {
		buf[c] = make([]int16, chunkFrames)
	}

	for {
		n, err := h.ReadShort(buf)
		if err != nil {
			return fmt.Errorf("peakcache: decoding %q: %w", audioPath, err)
		}
		if n == 0 {
			break
		}
		for start := 0; start < n; start += PeakRatio {
			end := start + PeakRatio
			if end > n {
				end = n
			}
			for c := 0; c < channels; c++ {
				peaks[c] = append(peaks[c], foldWindow(buf[c][start:end]))
			}
		}
		if n < chunkFrames {
			break
		}
	}

	return writeAtomic(peakPath, &peakfile.File{Channels: channels, Peaks: peaks}, info.SampleRate)
}

func foldWindow(samples []int16) peakfile.Pair {
	if len(samples) == 0 {
		return peakfile.Pair{}
	}
	max := math.MinInt16
	min := math.MaxInt16
	for _, s := range samples {
		if int(s) > max {
			max = int(s)
		}
		if int(s) < min {
			min = int(s)
		}
	}
	return peakfile.Pair{Max: int16(max), Min: peakfile.ClampMin(int32(min))}
}

// writeAtomic writes f to a temp file in peakPath's directory, then
// renames it into place, per spec.md §4.3.
func writeAtomic(peakPath string, f *peakfile.File, sampleRate int) (err error) {
	dir := filepath.Dir(peakPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("peakcache: creating %q: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".peakgen-*.tmp")
	if err != nil {
		return fmt.Errorf("peakcache: creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpPath)
		}
	}()

	if err = peakfile.Write(tmp, f, sampleRate); err != nil {
		tmp.Close()
		return fmt.Errorf("peakcache: writing %q: %w", tmpPath, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("peakcache: closing %q: %w", tmpPath, err)
	}
	if err = os.Rename(tmpPath, peakPath); err != nil {
		return fmt.Errorf("peakcache: renaming into %q: %w", peakPath, err)
	}
	return nil
}

// GenerateSplitStereoSync generates a peakfile from two independently
// decoded mono sources, reading both concurrently via errgroup and
// interleaving output channel-side, per spec.md §4.3's "a second
// decoder is opened in parallel" note.
func (g *Generator) GenerateSplitStereoSync(leftPath, rightPath, peakPath string) error {
	left, err := g.Decoder.Open(leftPath)
	if err != nil {
		return fmt.Errorf("peakcache: opening left %q: %w", leftPath, err)
	}
	defer left.Close()
	right, err := g.Decoder.Open(rightPath)
	if err != nil {
		return fmt.Errorf("peakcache: opening right %q: %w", rightPath, err)
	}
	defer right.Close()

	li, ri := left.Info(), right.Info()
	if li.SampleRate != ri.SampleRate {
		return fmt.Errorf("peakcache: split-stereo sample rate mismatch %d/%d", li.SampleRate, ri.SampleRate)
	}

	var leftPeaks, rightPeaks []peakfile.Pair
	for {
		var ln, rn int
		lbuf := make([][]int16, 1)
		lbuf[0] = make([]int16, chunkFrames)
		rbuf := make([][]int16, 1)
		rbuf[0] = make([]int16, chunkFrames)

		g2, _ := errgroup.WithContext(context.Background())
		g2.Go(func() error {
			n, err := left.ReadShort(lbuf)
			ln = n
			return err
		})
		g2.Go(func() error {
			n, err := right.ReadShort(rbuf)
			rn = n
			return err
		})
		if err := g2.Wait(); err != nil {
			return fmt.Errorf("peakcache: split-stereo decode: %w", err)
		}
		if ln == 0 && rn == 0 {
			break
		}
		for start := 0; start < ln; start += PeakRatio {
			end := min(start+PeakRatio, ln)
			leftPeaks = append(leftPeaks, foldWindow(lbuf[0][start:end]))
		}
		for start := 0; start < rn; start += PeakRatio {
			end := min(start+PeakRatio, rn)
			rightPeaks = append(rightPeaks, foldWindow(rbuf[0][start:end]))
		}
		if ln < chunkFrames && rn < chunkFrames {
			break
		}
	}

	return writeAtomic(peakPath, &peakfile.File{
		Channels: 2,
		Peaks:    [][]peakfile.Pair{leftPeaks, rightPeaks},
	}, li.SampleRate)
}

// Sweep deletes cache entries whose mtime is older than Expiry. It is
// debounced by callers via needCheck; force bypasses the debounce, per
// spec.md §4.3's post-generation background sweep and §9's
// need_file_cache_check debounce.
func Sweep(force bool, needCheck *bool) error {
	if !force && !*needCheck {
		return nil
	}
	*needCheck = false

	dir, err := Dir()
	if err != nil {
		return err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("peakcache: reading cache dir: %w", err)
	}
	cutoff := time.Now().Add(-Expiry)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			os.Remove(filepath.Join(dir, e.Name()))
		}
	}
	return nil
}
