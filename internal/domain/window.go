package domain

// DefaultWindowSize is the number of readings averaged when none is configured.
const DefaultWindowSize = 15

// WindowAverager keeps the most recent lux readings and reports their mean.
// It is owned by a single sampling loop and is not safe for concurrent use.
type WindowAverager struct {
	values   []float64
	capacity int
}

// NewWindowAverager creates an empty window holding at most capacity readings
func NewWindowAverager(capacity int) (*WindowAverager, error) {
	if capacity <= 0 {
		return nil, ErrInvalidWindowSize
	}
	return &WindowAverager{
		values:   make([]float64, 0, capacity+1),
		capacity: capacity,
	}, nil
}

// Update appends lux to the window and returns the new average.
// A missed reading (ok == false) leaves the window untouched and yields no average.
func (w *WindowAverager) Update(lux float64, ok bool) (float64, bool) {
	if !ok {
		return 0, false
	}

	w.values = append(w.values, lux)
	if len(w.values) > w.capacity {
		copy(w.values, w.values[1:])
		w.values = w.values[:len(w.values)-1]
	}
	return w.Average()
}

// Average returns the mean of the current window, absent before the first reading.
func (w *WindowAverager) Average() (float64, bool) {
	if len(w.values) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range w.values {
		sum += v
	}
	return sum / float64(len(w.values)), true
}

// Values returns a copy of the window, oldest first.
func (w *WindowAverager) Values() []float64 {
	out := make([]float64, len(w.values))
	copy(out, w.values)
	return out
}

// Len returns the number of readings currently held.
func (w *WindowAverager) Len() int { return len(w.values) }

// Capacity returns the maximum number of readings held.
func (w *WindowAverager) Capacity() int { return w.capacity }
