// Package decoder provides a uniform open/info/seek/read façade over
// multiple codec backends, selecting a backend by a per-file eval score.
// See spec.md §4.1. The audio codec itself is an external collaborator;
// this package only defines the contract and two concrete backends drawn
// from the example corpus (WAV via go-audio/wav, MP3 via
// hajimehoshi/go-mp3).
package decoder

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrDecodeFailed means a backend rejected a source it claimed to be able
// to open. Callers map this to the root package's ErrDecodeFailed.
var ErrDecodeFailed = errors.New("decoder: decode failed")

// MetadataEntry is one key/value pair in a Handle's ordered metadata.
type MetadataEntry struct {
	Key   string
	Value string
}

// Metadata is an ordered mapping of tag name to value, with
// artist/title/album/track/date promoted to the head when present, per
// spec.md §4.1.
type Metadata []MetadataEntry

var promotedKeys = []string{"artist", "title", "album", "track", "date"}

// Promote reorders m so any of promotedKeys present appear first, in the
// order listed, preserving the relative order of everything else.
func (m Metadata) Promote() Metadata {
	head := make(Metadata, 0, len(m))
	rest := make(Metadata, 0, len(m))
	used := make(map[int]bool, len(m))
	for _, want := range promotedKeys {
		for i, e := range m {
			if used[i] {
				continue
			}
			if strings.EqualFold(e.Key, want) {
				head = append(head, e)
				used[i] = true
				break
			}
		}
	}
	for i, e := range m {
		if !used[i] {
			rest = append(rest, e)
		}
	}
	return append(head, rest...)
}

// Get returns the first value for key (case-insensitive), if present.
func (m Metadata) Get(key string) (string, bool) {
	for _, e := range m {
		if strings.EqualFold(e.Key, key) {
			return e.Value, true
		}
	}
	return "", false
}

// Info describes a decoded source's static properties.
type Info struct {
	SampleRate int
	Channels   int
	Frames     int64 // often an estimate until fully decoded
	BitDepth   int
	BitRate    int
	Metadata   Metadata
}

// Handle is an open decode session for one source file.
type Handle interface {
	Info() Info
	// Seek positions the next ReadShort/ReadFloat at frame, returning the
	// frame actually seeked to, or -1 on failure.
	Seek(frame int64) (int64, error)
	// ReadShort decodes into out[channel][0:n], returning frames read.
	ReadShort(out [][]int16) (int, error)
	// ReadFloat decodes interleaved samples into out, returning samples
	// (not frames) read.
	ReadFloat(out []float32) (int, error)
	// Thumbnail returns embedded picture bytes, if any.
	Thumbnail() ([]byte, bool)
	Close() error
}

// Backend is one codec implementation, self-scoring its fitness for a
// given filename.
type Backend interface {
	// Eval scores this backend's ability to open filename, 0 (cannot) to
	// 100 (certain).
	Eval(filename string) int
	Open(path string) (Handle, error)
}

// Facade dispatches Open to whichever registered Backend scores highest
// for a given filename, and recognizes the split-stereo naming
// convention (spec.md §4.1, §6).
type Facade struct {
	backends []Backend
}

// New builds a Facade trying backends in the order given; ties are broken
// by registration order (first registered wins).
func New(backends ...Backend) *Facade {
	return &Facade{backends: backends}
}

func (f *Facade) pick(filename string) (Backend, error) {
	type scored struct {
		b     Backend
		score int
		order int
	}
	var candidates []scored
	for i, b := range f.backends {
		if s := b.Eval(filename); s > 0 {
			candidates = append(candidates, scored{b, s, i})
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("decoder: no backend can open %q", filename)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].order < candidates[j].order
	})
	return candidates[0].b, nil
}

// Open selects a backend and opens path, transparently handling the
// split-stereo %L/%R convention: a filename containing "%L" or "-L" is
// the left channel of a pair; the sibling "%R"/"-R" file supplies the
// right channel, and the resulting Handle reports 2 channels regardless
// of either file's own channel count.
func (f *Facade) Open(path string) (Handle, error) {
	if sibling, ok := splitStereoSibling(path); ok {
		return f.openSplitStereo(path, sibling)
	}

	b, err := f.pick(path)
	if err != nil {
		return nil, err
	}
	h, err := b.Open(path)
	if err != nil {
		return nil, fmt.Errorf("decoder: opening %q: %w", path, err)
	}
	return h, nil
}

// splitStereoSibling returns the right-channel path for a left-channel
// split-stereo filename, and whether path matched the convention.
func splitStereoSibling(path string) (string, bool) {
	for _, tok := range []struct{ l, r string }{{"%L", "%R"}, {"-L", "-R"}} {
		if i := strings.LastIndex(path, tok.l); i >= 0 {
			return path[:i] + tok.r + path[i+len(tok.l):], true
		}
	}
	return "", false
}

func (f *Facade) openSplitStereo(leftPath, rightPath string) (Handle, error) {
	lb, err := f.pick(leftPath)
	if err != nil {
		return nil, err
	}
	left, err := lb.Open(leftPath)
	if err != nil {
		return nil, fmt.Errorf("decoder: opening left channel %q: %w", leftPath, err)
	}

	rb, err := f.pick(rightPath)
	if err != nil {
		left.Close()
		return nil, err
	}
	right, err := rb.Open(rightPath)
	if err != nil {
		left.Close()
		return nil, fmt.Errorf("decoder: opening right channel %q: %w", rightPath, err)
	}

	li, ri := left.Info(), right.Info()
	if li.SampleRate != ri.SampleRate || li.Frames != ri.Frames {
		left.Close()
		right.Close()
		return nil, fmt.Errorf("decoder: split-stereo pair %q/%q mismatch: rate %d/%d frames %d/%d",
			leftPath, rightPath, li.SampleRate, ri.SampleRate, li.Frames, ri.Frames)
	}

	return &splitStereoHandle{left: left, right: right}, nil
}
