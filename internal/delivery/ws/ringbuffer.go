package ws

// RingBuffer is a fixed-size circular buffer of encoded events.
// It is not safe for concurrent use; the hub guards it with its mutex.
type RingBuffer struct {
	data [][]byte
	head int // next write position
	size int
	cap  int
}

// NewRingBuffer creates a ring buffer with the given capacity
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &RingBuffer{
		data: make([][]byte, capacity),
		cap:  capacity,
	}
}

// Add appends an event, overwriting the oldest when full
func (rb *RingBuffer) Add(event []byte) {
	copied := make([]byte, len(event))
	copy(copied, event)

	rb.data[rb.head] = copied
	rb.head = (rb.head + 1) % rb.cap
	if rb.size < rb.cap {
		rb.size++
	}
}

// GetAll returns the buffered events oldest first
func (rb *RingBuffer) GetAll() [][]byte {
	if rb.size == 0 {
		return nil
	}
	result := make([][]byte, rb.size)
	if rb.size < rb.cap {
		copy(result, rb.data[:rb.size])
		return result
	}
	n := copy(result, rb.data[rb.head:])
	copy(result[n:], rb.data[:rb.head])
	return result
}

// Len returns the number of buffered events
func (rb *RingBuffer) Len() int {
	return rb.size
}
