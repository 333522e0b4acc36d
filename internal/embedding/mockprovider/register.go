package mockprovider

import "github.com/codecontext/codecontext/internal/embedding"

func init() {
	embedding.Register("mock", factory)
}

func factory(settings map[string]any) (embedding.Provider, error) {
	dimension, _ := settings["dimension"].(int)
	if dimension <= 0 {
		dimension = 384
	}
	return New(dimension), nil
}
