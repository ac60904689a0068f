package testutils

import (
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// TestDataGenerator provides methods to create test data for integration tests
type TestDataGenerator struct {
	faker *gofakeit.Faker
}

// NewTestDataGenerator creates a new test data generator with optional seed
func NewTestDataGenerator(seed ...int64) *TestDataGenerator {
	s := time.Now().UnixNano()
	if len(seed) > 0 {
		s = seed[0]
	}
	return &TestDataGenerator{faker: gofakeit.New(uint64(s))}
}

func (g *TestDataGenerator) SponsorName() string {
	return g.faker.Company()
}

func (g *TestDataGenerator) PageTitle() string {
	return g.faker.Sentence(3)
}

func (g *TestDataGenerator) PersonName() string {
	return g.faker.Name()
}

func (g *TestDataGenerator) Tags(n int) []string {
	tags := make([]string, n)
	for i := range tags {
		tags[i] = g.faker.Word()
	}
	return tags
}

// PNG returns a small random PNG image.
func (g *TestDataGenerator) PNG() []byte {
	return g.faker.ImagePng(g.faker.Number(4, 16), g.faker.Number(4, 16))
}
