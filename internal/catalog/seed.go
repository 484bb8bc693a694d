package catalog

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

var (
	seedOnce     sync.Once
	seedProducts []Product
	seedErr      error
)

// Seed returns a fresh copy of the embedded fallback catalog.
func Seed() []Product {
	products, err := loadSeed()
	if err != nil {
		// The seed is compiled in; a decode failure is a build defect.
		panic(err)
	}
	return CloneProducts(products)
}

func loadSeed() ([]Product, error) {
	seedOnce.Do(func() {
		var products []Product
		if err := yaml.Unmarshal(seedYAML, &products); err != nil {
			seedErr = fmt.Errorf("catalog: decode seed: %w", err)
			return
		}
		seedProducts = products
	})
	return seedProducts, seedErr
}
