package docipc

import (
	"google.golang.org/protobuf/types/known/structpb"
)

// PendingMessage is a message received before the destination context
// became ready. The message owns its arguments.
type PendingMessage struct {
	Arguments *structpb.Value
	// Transfer is set instead of Arguments for messages received via
	// ReceivePostMessage.
	Transfer *TransferableMessage
	Channel  string
	SenderID int32
	Internal bool
}

// pendingQueue is an unbounded FIFO of messages awaiting readiness.
// It is only accessed from the service's execution unit.
type pendingQueue struct {
	items []PendingMessage
}

func (q *pendingQueue) enqueue(msg PendingMessage) {
	q.items = append(q.items, msg)
}

// drain removes and returns every buffered message, oldest first.
func (q *pendingQueue) drain() []PendingMessage {
	items := q.items
	q.items = nil
	return items
}

func (q *pendingQueue) len() int {
	return len(q.items)
}

// discard drops every buffered message, releasing transferred ports.
func (q *pendingQueue) discard() {
	for _, msg := range q.drain() {
		msg.Transfer.Discard()
	}
}
