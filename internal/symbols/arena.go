package symbols

import (
	"fortio.org/safecast"
	"github.com/cockroachdb/errors"
)

// Symbols is the append-only store behind the table. Slot 0 is the
// NoSymbolID sentinel, so a zero ID never resolves.
type Symbols struct {
	slots []Symbol
}

func NewSymbols(capacity uint32) *Symbols {
	if capacity == 0 {
		capacity = 64
	}
	return &Symbols{slots: make([]Symbol, 1, capacity+1)}
}

// New copies sym into the store.
func (s *Symbols) New(sym *Symbol) SymbolID {
	if sym == nil {
		panic("symbols: nil symbol")
	}
	n, err := safecast.Conv[uint32](len(s.slots))
	if err != nil {
		panic(errors.Wrap(err, "symbol store overflow"))
	}
	s.slots = append(s.slots, *sym)
	return SymbolID(n)
}

// Get returns the stored symbol; mutations through it are visible to the
// table until Freeze.
func (s *Symbols) Get(id SymbolID) *Symbol {
	if !id.IsValid() || int(id) >= len(s.slots) {
		return nil
	}
	return &s.slots[id]
}

func (s *Symbols) Len() int { return len(s.slots) - 1 }

// Data returns every symbol in declaration order.
func (s *Symbols) Data() []Symbol { return s.slots[1:] }
