package di

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greeter interface{ Greet() string }

type english struct{ calls int }

func (e *english) Greet() string { return "hello" }

func TestRegisterToken_BuildsOnce(t *testing.T) {
	c := NewContainer()
	tok := NewToken[greeter]("test:greeter")

	builds := 0
	RegisterToken(c, tok, func(sr ServiceRegistry) greeter {
		builds++
		return &english{}
	})

	first := GetToken(c, tok)
	second := GetToken(c, tok)

	assert.Equal(t, "hello", first.Greet())
	assert.Same(t, first, second)
	assert.Equal(t, 1, builds)
}

func TestRegister_ResolvesDependencies(t *testing.T) {
	c := NewContainer()
	c.Register("prefix", "p2p")

	tok := NewToken[string]("test:name")
	RegisterToken(c, tok, func(sr ServiceRegistry) string {
		return sr.Get("prefix").(string) + "-arbitrage"
	})

	assert.Equal(t, "p2p-arbitrage", GetToken(c, tok))
}

func TestGet_UnknownPanics(t *testing.T) {
	c := NewContainer()
	require.Panics(t, func() { c.Get("missing") })
}

func TestGetToken_WrongTypePanics(t *testing.T) {
	c := NewContainer()
	c.Register("n", 42)
	require.Panics(t, func() { GetToken(c, NewToken[string]("n")) })
}
