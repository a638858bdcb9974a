package content

import "math/rand"

// Deck is a shuffled, drawable copy of a pool. It is not safe for concurrent
// use; callers guard it with the owning game's lock.
type Deck[T any] struct {
	items []T
}

// NewDeck copies items and shuffles the copy with rng.
func NewDeck[T any](items []T, rng *rand.Rand) *Deck[T] {
	d := &Deck[T]{items: cloneSlice(items)}
	rng.Shuffle(len(d.items), func(i, j int) {
		d.items[i], d.items[j] = d.items[j], d.items[i]
	})
	return d
}

// Draw removes and returns the top item. ok is false when the deck is empty.
func (d *Deck[T]) Draw() (item T, ok bool) {
	if len(d.items) == 0 {
		return item, false
	}
	last := len(d.items) - 1
	item = d.items[last]
	d.items = d.items[:last]
	return item, true
}

// Len reports how many items remain.
func (d *Deck[T]) Len() int { return len(d.items) }
