package strategy

import (
	"fmt"
	"slices"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
)

const (
	HumanName  = "Human"
	RandomName = "Random"
)

// Factory builds a fresh strategy for one seat.
type Factory func(seat entity.Mark) entity.Strategy

type Entry struct {
	Name    string
	Factory Factory
}

// Registry maps display names to factories. It is read-only after construction.
type Registry struct {
	names     []string
	factories map[string]Factory
}

func NewRegistry(entries ...Entry) *Registry {
	registry := &Registry{
		names:     make([]string, 0, len(entries)),
		factories: make(map[string]Factory, len(entries)),
	}

	for _, entry := range entries {
		if _, exists := registry.factories[entry.Name]; !exists {
			registry.names = append(registry.names, entry.Name)
		}
		registry.factories[entry.Name] = entry.Factory
	}

	return registry
}

// Default registers the human placeholder first and the built-in strategies after it.
func Default() *Registry {
	return NewRegistry(
		Entry{Name: HumanName, Factory: func(seat entity.Mark) entity.Strategy { return NewHuman(seat) }},
		Entry{Name: RandomName, Factory: func(seat entity.Mark) entity.Strategy { return NewRandom(seat) }},
	)
}

// Names returns the display names in registration order.
func (that *Registry) Names() []string {
	return slices.Clone(that.names)
}

func (that *Registry) New(name string, seat entity.Mark) (entity.Binding, error) {
	factory, ok := that.factories[name]
	if !ok {
		return entity.Binding{}, fmt.Errorf("%w: %s", apperror.ErrUnknownStrategy, name)
	}

	return entity.Binding{Name: name, Strategy: factory(seat)}, nil
}
