package docipc

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// TransferableMessage is a serialized structured value, plus the ports
// transferred alongside it. Like [Port], it is move-only: see
// [TransferableMessage.Take].
type TransferableMessage struct {
	// Payload is a proto-encoded [structpb.Value].
	Payload []byte
	// Ports are delivered to the destination in order.
	Ports    []*Port
	consumed bool
}

// NewTransferableMessage serializes v, and takes ownership of ports.
func NewTransferableMessage(v *structpb.Value, ports ...*Port) (*TransferableMessage, error) {
	if v == nil {
		v = structpb.NewNullValue()
	}
	seen := make(map[*Port]struct{}, len(ports))
	for i, p := range ports {
		if p.Consumed() {
			return nil, fmt.Errorf("docipc: port %d: %w", i, ErrPortConsumed)
		}
		if _, ok := seen[p]; ok {
			return nil, fmt.Errorf("docipc: port %d: transferred twice: %w", i, ErrPortConsumed)
		}
		seen[p] = struct{}{}
	}
	payload, err := proto.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("docipc: marshal payload: %w", err)
	}
	moved := make([]*Port, len(ports))
	for i, p := range ports {
		moved[i], _ = p.Take()
	}
	return &TransferableMessage{Payload: payload, Ports: moved}, nil
}

// Consumed reports whether the message has been transferred or delivered.
func (x *TransferableMessage) Consumed() bool {
	return x == nil || x.consumed
}

// Take transfers ownership of the message, including its ports.
func (x *TransferableMessage) Take() (*TransferableMessage, error) {
	if x.Consumed() {
		return nil, ErrPortConsumed
	}
	x.consumed = true
	out := &TransferableMessage{
		Payload: append([]byte(nil), x.Payload...),
		Ports:   make([]*Port, len(x.Ports)),
	}
	for i, p := range x.Ports {
		var err error
		if out.Ports[i], err = p.Take(); err != nil {
			out.Discard()
			return nil, fmt.Errorf("docipc: port %d: %w", i, err)
		}
	}
	x.Ports = nil
	return out, nil
}

// Value decodes the payload.
func (x *TransferableMessage) Value() (*structpb.Value, error) {
	var v structpb.Value
	if err := proto.Unmarshal(x.Payload, &v); err != nil {
		return nil, fmt.Errorf("docipc: unmarshal payload: %w", err)
	}
	return &v, nil
}

// Discard consumes the message without delivering it, closing its ports.
func (x *TransferableMessage) Discard() {
	if x.Consumed() {
		return
	}
	x.consumed = true
	for _, p := range x.Ports {
		if !p.Consumed() {
			_ = p.Close()
		}
	}
	x.Ports = nil
}

// buildTransferArgs converts message into context-native values, entangling
// each port with sc, in order. The message is consumed in all cases.
func buildTransferArgs(message *TransferableMessage, sc ScriptContext) (payload any, ports []any, err error) {
	defer message.Discard()

	value, err := message.Value()
	if err != nil {
		return nil, nil, err
	}
	if payload, err = sc.ImportValue(value); err != nil {
		return nil, nil, fmt.Errorf("docipc: import payload: %w", err)
	}

	portsIn := message.Ports
	message.Ports = nil
	message.consumed = true
	defer func() {
		if err != nil {
			for _, p := range portsIn {
				if !p.Consumed() {
					_ = p.Close()
				}
			}
		}
	}()

	ports = make([]any, 0, len(portsIn))
	for i, p := range portsIn {
		handle, entangleErr := sc.Entangle(p)
		if entangleErr != nil {
			return nil, nil, fmt.Errorf("docipc: entangle port %d: %w", i, entangleErr)
		}
		ports = append(ports, handle)
	}
	return payload, ports, nil
}
