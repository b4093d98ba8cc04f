package state

import (
	"math/rand/v2"

	"github.com/google/uuid"
)

// ConnectionDetails is a named catalog endpoint.
type ConnectionDetails struct {
	ID   uuid.UUID
	Name string
	URI  string
}

// NewConnection creates connection details with a fresh id.
func NewConnection(name, uri string) ConnectionDetails {
	return ConnectionDetails{
		ID:   uuid.New(),
		Name: name,
		URI:  uri,
	}
}

// NewAnonConnection creates connection details for a uri given on the
// command line, with a generated name.
func NewAnonConnection(uri string) ConnectionDetails {
	return NewConnection(randomName(), uri)
}

// Equal reports whether two connections target the same catalog. Only the
// uri is compared.
func (c ConnectionDetails) Equal(other ConnectionDetails) bool {
	return c.URI == other.URI
}

// IsZero reports whether c is unset.
func (c ConnectionDetails) IsZero() bool {
	return c.URI == "" && c.ID == uuid.Nil
}

func (c ConnectionDetails) String() string {
	if c.Name == "" {
		return c.URI
	}
	return c.Name + " (" + c.URI + ")"
}

var (
	nameAdjectives = []string{
		"amber", "brisk", "calm", "dusty", "eager", "frosty", "gentle", "hollow",
		"icy", "jolly", "keen", "lucky", "misty", "nimble", "odd", "proud",
		"quiet", "rapid", "shy", "tidy", "vivid", "wild", "young", "zesty",
	}
	nameNouns = []string{
		"anchor", "badger", "canyon", "delta", "ember", "falcon", "glacier", "harbor",
		"island", "jetty", "kelp", "lagoon", "meadow", "narwhal", "orca", "pebble",
		"quarry", "reef", "shoal", "tide", "urchin", "valley", "walrus", "yarrow",
	}
)

// randomName returns an "adjective-noun" label for anonymous connections.
func randomName() string {
	return nameAdjectives[rand.IntN(len(nameAdjectives))] + "-" + nameNouns[rand.IntN(len(nameNouns))]
}
