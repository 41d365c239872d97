package docipc

import (
	"google.golang.org/protobuf/types/known/structpb"
)

// Message implements [Receiver]. Before the readiness transition, the
// message is buffered, and no delivery is attempted.
func (x *Service) Message(internal bool, channel string, arguments *structpb.Value, senderID int32) {
	if x.closed {
		return
	}
	if !x.gate.ready() || x.draining {
		x.queue.enqueue(PendingMessage{
			Internal:  internal,
			Channel:   channel,
			Arguments: arguments,
			SenderID:  senderID,
		})
		return
	}
	x.deliverMessage(internal, channel, arguments, senderID)
}

// ReceivePostMessage implements [Receiver]. The message is ordered with
// respect to direct messages, and buffered in the same way.
func (x *Service) ReceivePostMessage(channel string, message *TransferableMessage) {
	if message == nil {
		x.logDrop(categoryBridge, channel, errNilTransfer, `dropping post message`)
		return
	}
	if x.closed {
		message.Discard()
		return
	}
	if !x.gate.ready() || x.draining {
		x.queue.enqueue(PendingMessage{
			Channel:  channel,
			Transfer: message,
		})
		return
	}
	x.deliverTransfer(channel, message)
}

// NotifyUserActivation implements [Receiver].
func (x *Service) NotifyUserActivation() {
	if x.closed {
		return
	}
	if frame, ok := x.frames.Frame(); ok {
		frame.NotifyUserActivation()
	}
}

// processPendingMessages delivers buffered messages, oldest first. Messages
// that arrive while draining, e.g. from within the dispatch callback, are
// appended, and delivered by the same loop.
func (x *Service) processPendingMessages() {
	x.draining = true
	defer func() { x.draining = false }()
	for !x.closed {
		batch := x.queue.drain()
		if len(batch) == 0 {
			return
		}
		for i, msg := range batch {
			if x.closed {
				for _, rest := range batch[i:] {
					rest.Transfer.Discard()
				}
				return
			}
			if msg.Transfer != nil {
				x.deliverTransfer(msg.Channel, msg.Transfer)
			} else {
				x.deliverMessage(msg.Internal, msg.Channel, msg.Arguments, msg.SenderID)
			}
		}
	}
}

func (x *Service) deliverMessage(internal bool, channel string, arguments *structpb.Value, senderID int32) {
	sc, ok := x.scriptContext(channel)
	if !ok {
		return
	}
	exit := sc.Enter()
	defer exit()

	args, err := sc.ImportValue(arguments)
	if err != nil {
		x.logDrop(categoryDispatch, channel, err, `failed to convert message arguments`)
		return
	}
	x.emit(sc, internal, channel, []any{}, args, senderID)
}

// deliverTransfer delivers message with sender id 0, which marks it as not
// attributable to a window sender.
func (x *Service) deliverTransfer(channel string, message *TransferableMessage) {
	sc, ok := x.scriptContext(channel)
	if !ok {
		message.Discard()
		return
	}
	exit := sc.Enter()
	defer exit()

	payload, ports, err := buildTransferArgs(message, sc)
	if err != nil {
		x.logDrop(categoryBridge, channel, err, `failed to build post message arguments`)
		return
	}
	x.emit(sc, false, channel, ports, payload, 0)
}

// scriptContext resolves the destination context. A missing frame is an
// expected race, and is not logged above debug.
func (x *Service) scriptContext(channel string) (ScriptContext, bool) {
	frame, ok := x.frames.Frame()
	if !ok {
		x.logger.Debug().
			Str(`category`, categoryDispatch).
			Str(`channel`, channel).
			Err(ErrFrameDetached).
			Log(`dropping message`)
		return nil, false
	}
	sc, ok := frame.ScriptContext()
	if !ok {
		x.logDrop(categoryDispatch, channel, ErrContextUnavailable, `dropping message`)
		return nil, false
	}
	return sc, true
}

// emit invokes the dispatch callback. Must be called within a scope of sc.
func (x *Service) emit(sc ScriptContext, internal bool, channel string, ports []any, arguments any, senderID int32) {
	callback, ok := sc.DispatchCallback()
	if !ok || callback == nil {
		x.logDrop(categoryDispatch, channel, ErrNoDispatchCallback, `attempted to get the dispatch callback but it was missing`)
		return
	}
	if err := callback(internal, channel, ports, arguments, senderID); err != nil {
		x.logger.Err().
			Str(`category`, categoryDispatch).
			Str(`channel`, channel).
			Err(err).
			Log(`dispatch callback failed`)
	}
}

func (x *Service) logDrop(category, channel string, err error, msg string) {
	if _, ok := x.dropLimiter.Allow(channel); !ok {
		return
	}
	x.logger.Err().
		Str(`category`, category).
		Str(`channel`, channel).
		Err(err).
		Log(msg)
}
