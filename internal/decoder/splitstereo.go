package decoder

import "fmt"

// splitStereoHandle combines two mono Handles into one stereo Handle,
// per spec.md §4.1's "%L/%R" convention. Each side is read through a
// one-channel buffer, so a side whose Handle has more than one channel
// fails to read.
type splitStereoHandle struct {
	left, right Handle
}

func (h *splitStereoHandle) Info() Info {
	info := h.left.Info()
	info.Channels = 2
	return info
}

func (h *splitStereoHandle) Seek(frame int64) (int64, error) {
	lf, err := h.left.Seek(frame)
	if err != nil {
		return -1, err
	}
	rf, err := h.right.Seek(frame)
	if err != nil {
		return -1, err
	}
	if lf != rf {
		return -1, fmt.Errorf("decoder: split-stereo seek mismatch: left=%d right=%d", lf, rf)
	}
	return lf, nil
}

func (h *splitStereoHandle) ReadShort(out [][]int16) (int, error) {
	if len(out) != 2 {
		return 0, fmt.Errorf("decoder: split-stereo ReadShort requires a 2-channel buffer, got %d", len(out))
	}
	nl, err := h.left.ReadShort(out[:1])
	if err != nil {
		return 0, err
	}
	nr, err := h.right.ReadShort(out[1:2])
	if err != nil {
		return 0, err
	}
	if nl < nr {
		return nl, nil
	}
	return nr, nil
}

func (h *splitStereoHandle) ReadFloat(out []float32) (int, error) {
	left := make([]float32, len(out)/2)
	right := make([]float32, len(out)/2)
	nl, err := h.left.ReadFloat(left)
	if err != nil {
		return 0, err
	}
	nr, err := h.right.ReadFloat(right)
	if err != nil {
		return 0, err
	}
	n := nl
	if nr < n {
		n = nr
	}
	for i := 0; i < n; i++ {
		out[i*2] = left[i]
		out[i*2+1] = right[i]
	}
	return n * 2, nil
}

func (h *splitStereoHandle) Thumbnail() ([]byte, bool) {
	return h.left.Thumbnail()
}

func (h *splitStereoHandle) Close() error {
	errL := h.left.Close()
	errR := h.right.Close()
	if errL != nil {
		return errL
	}
	return errR
}
