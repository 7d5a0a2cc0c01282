package anthropic

import (
	"encoding/json"
	"errors"
	"strings"
)

// Accumulator errors.
var (
	ErrNoMessage   = errors.New("anthropic: event before message_start")
	ErrNoOpenBlock = errors.New("anthropic: delta for a block that was never started")
	ErrDone        = errors.New("anthropic: stream already finished")
)

// MessageAccumulator folds an ordered sequence of streaming events into the
// finished message the stream describes. Feeding the full event sequence of
// a turn yields a message equal to decoding the equivalent non-streaming
// response.
//
// The zero value is ready to use. An accumulator is good for one message;
// discard it afterwards.
type MessageAccumulator struct {
	message *MessagesResponse
	open    map[int]*openBlock
	done    bool
}

// openBlock is a content block that has been started but not yet stopped.
// Each delta kind accumulates into its own buffer; the block is finalized
// into a single Content on content_block_stop.
type openBlock struct {
	content   Content
	text      strings.Builder
	inputJSON strings.Builder
	thinking  strings.Builder
	signature strings.Builder
}

// Push folds one event into the accumulator, in receipt order. It returns
// true once message_stop was seen, at which point Message returns the
// finished message.
//
// An error event aborts with the stream's typed *APIError. Events with an
// unrecognized type are skipped; callers that want to log them can check
// ev.Known before pushing.
func (a *MessageAccumulator) Push(ev StreamEvent) (bool, error) {
	if a.done {
		return false, ErrDone
	}
	if !ev.Known() || ev.Type == EventPing {
		return false, nil
	}

	switch ev.Type {
	case EventError:
		if ev.Error != nil {
			return false, ev.Error
		}
		return false, &APIError{Type: ErrAPI}

	case EventMessageStart:
		if ev.Message == nil {
			return false, errors.New("anthropic: message_start without message")
		}
		msg := *ev.Message
		a.message = &msg
		a.open = make(map[int]*openBlock)
		return false, nil
	}

	if a.message == nil {
		return false, ErrNoMessage
	}

	switch ev.Type {
	case EventContentBlockStart:
		blk := &openBlock{}
		if ev.ContentBlock != nil {
			blk.content = *ev.ContentBlock
		}
		// Initial fragments count towards the accumulated value so that
		// deltas append rather than clobber.
		blk.text.WriteString(blk.content.Text)
		blk.thinking.WriteString(blk.content.Thinking)
		a.open[ev.Index] = blk

	case EventContentBlockDelta:
		blk, ok := a.open[ev.Index]
		if !ok {
			return false, ErrNoOpenBlock
		}
		if ev.Delta == nil {
			break
		}
		switch ev.Delta.Type {
		case DeltaText:
			blk.text.WriteString(ev.Delta.Text)
		case DeltaInputJSON:
			blk.inputJSON.WriteString(ev.Delta.PartialJSON)
		case DeltaThinking:
			blk.thinking.WriteString(ev.Delta.Thinking)
		case DeltaSignature:
			blk.signature.WriteString(ev.Delta.Signature)
		default:
			// Unknown delta kinds are skipped, same as unknown events.
		}

	case EventContentBlockStop:
		blk, ok := a.open[ev.Index]
		if !ok {
			return false, ErrNoOpenBlock
		}
		a.message.Content = append(a.message.Content, blk.finalize())
		delete(a.open, ev.Index)

	case EventMessageDelta:
		if ev.Delta != nil {
			if ev.Delta.StopReason != nil {
				a.message.StopReason = *ev.Delta.StopReason
			}
			if ev.Delta.StopSequence != nil {
				a.message.StopSequence = *ev.Delta.StopSequence
			}
		}
		if ev.Usage != nil {
			if ev.Usage.InputTokens != 0 {
				a.message.Usage.InputTokens = ev.Usage.InputTokens
			}
			if ev.Usage.OutputTokens != 0 {
				a.message.Usage.OutputTokens = ev.Usage.OutputTokens
			}
		}

	case EventMessageStop:
		a.done = true
		return true, nil
	}

	return false, nil
}

// Message returns the finished message, or nil while the stream is still in
// progress.
func (a *MessageAccumulator) Message() *MessagesResponse {
	if !a.done {
		return nil
	}
	return a.message
}

func (b *openBlock) finalize() Content {
	c := b.content
	switch c.Type {
	case TypeText:
		c.Text = b.text.String()
	case TypeToolUse:
		if b.inputJSON.Len() > 0 {
			c.Input = json.RawMessage(b.inputJSON.String())
		}
	case TypeThinking:
		c.Thinking = b.thinking.String()
		if b.signature.Len() > 0 {
			c.Signature = b.signature.String()
		}
	}
	return c
}
