package narrator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubEmbellisher struct {
	out string
	err error
}

func (s *stubEmbellisher) Embellish(ctx context.Context, line string, speaker string) (string, error) {
	return s.out, s.err
}

func TestDecorate_NilEmbellisherReturnsVerbatim(t *testing.T) {
	out := Decorate(context.Background(), nil, "Hello.", "Toriel", nil)
	assert.Equal(t, "Hello.", out)
}

func TestDecorate_UsesEmbellishedLine(t *testing.T) {
	e := &stubEmbellisher{out: "Greetings, little one."}
	out := Decorate(context.Background(), e, "Hello.", "Toriel", nil)
	assert.Equal(t, "Greetings, little one.", out)
}

func TestDecorate_FallsBackOnError(t *testing.T) {
	e := &stubEmbellisher{err: errors.New("api down")}
	out := Decorate(context.Background(), e, "Hello.", "Toriel", nil)
	assert.Equal(t, "Hello.", out)
}

func TestDecorate_FallsBackOnEmptyOutput(t *testing.T) {
	e := &stubEmbellisher{out: "   "}
	out := Decorate(context.Background(), e, "Hello.", "Toriel", nil)
	assert.Equal(t, "Hello.", out)
}

func TestDecorate_EmptyLinePassesThrough(t *testing.T) {
	e := &stubEmbellisher{out: "should not be used"}
	out := Decorate(context.Background(), e, "", "Toriel", nil)
	assert.Equal(t, "", out)
}
