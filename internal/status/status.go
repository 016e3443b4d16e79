// Package status implements the transient status banner.
package status

import (
	"sync"
	"time"

	"github.com/oukeidos/panetrans/internal/clock"
)

type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

// DismissAfter is how long a success message stays visible.
const DismissAfter = 3 * time.Second

// Message is the banner state. Seq increases with every Show.
type Message struct {
	Text    string `json:"text"`
	Kind    Kind   `json:"kind"`
	Visible bool   `json:"visible"`
	Seq     uint64 `json:"seq"`
}

// Board holds the current message and fans changes out to subscribers.
// Success messages hide themselves after DismissAfter; everything else stays
// until the next Show.
type Board struct {
	mu        sync.Mutex
	current   Message
	stop      func() bool
	afterFunc clock.AfterFunc
	subs      map[int]chan Message
	nextSub   int
}

// NewBoard returns a board on the real clock.
func NewBoard() *Board {
	return NewBoardWithClock(clock.Real)
}

// NewBoardWithClock is NewBoard with an injectable scheduler.
func NewBoardWithClock(afterFunc clock.AfterFunc) *Board {
	return &Board{
		afterFunc: afterFunc,
		subs:      make(map[int]chan Message),
	}
}

// Show replaces the current message.
func (b *Board) Show(text string, kind Kind) {
	b.mu.Lock()
	if b.stop != nil {
		b.stop()
		b.stop = nil
	}
	b.current = Message{
		Text:    text,
		Kind:    kind,
		Visible: true,
		Seq:     b.current.Seq + 1,
	}
	msg := b.current
	if kind == KindSuccess {
		seq := msg.Seq
		b.stop = b.afterFunc(DismissAfter, func() { b.dismiss(seq) })
	}
	b.mu.Unlock()

	b.publish(msg)
}

func (b *Board) dismiss(seq uint64) {
	b.mu.Lock()
	if b.current.Seq != seq || !b.current.Visible {
		b.mu.Unlock()
		return
	}
	b.current.Visible = false
	b.stop = nil
	msg := b.current
	b.mu.Unlock()

	b.publish(msg)
}

// Current returns the latest message.
func (b *Board) Current() Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// Subscribe returns a channel of banner changes and a function to cancel the
// subscription. Slow subscribers miss updates rather than block the board.
func (b *Board) Subscribe() (<-chan Message, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextSub
	b.nextSub++
	ch := make(chan Message, 16)
	b.subs[id] = ch
	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if c, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(c)
		}
	}
}

func (b *Board) publish(msg Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- msg:
		default:
		}
	}
}
