package resock

// outboundQueue buffers encoded payloads issued while the connection is
// not open. FIFO, unbounded; entries are dropped only on successful send.
type outboundQueue struct {
	items []string
}

func (q *outboundQueue) Enqueue(payload string) {
	q.items = append(q.items, payload)
}

func (q *outboundQueue) Len() int {
	return len(q.items)
}

// Flush sends queued payloads in order while the queue is non-empty and
// ready still holds. Readiness is re-checked before every send since it
// may change mid-flush. A send error leaves the failed entry queued.
func (q *outboundQueue) Flush(send func(string) error, ready func() bool) error {
	for len(q.items) > 0 && ready() {
		if err := send(q.items[0]); err != nil {
			return err
		}
		q.items = q.items[1:]
	}
	return nil
}
