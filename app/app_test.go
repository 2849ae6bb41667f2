package app

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeCloser struct {
	err    error
	closed int
}

func (f *fakeCloser) Close() error {
	f.closed++
	return f.err
}

func TestCloseAllClosesEveryStore(t *testing.T) {
	first := &fakeCloser{err: errors.New("first")}
	second := &fakeCloser{err: errors.New("second")}

	err := closeAll(first, second)
	assert.EqualError(t, err, "first")
	assert.Equal(t, 1, first.closed)
	assert.Equal(t, 1, second.closed)

	assert.NoError(t, closeAll([]io.Closer{&fakeCloser{}}...))
}

func TestCloseStoresSkipsUnopened(t *testing.T) {
	a := &App{}
	assert.NotPanics(t, func() {
		assert.NoError(t, a.closeStores())
	})
}
