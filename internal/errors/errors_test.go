package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildDefaults(t *testing.T) {
	SetReporter(nil)

	ee := New(fmt.Errorf("boom")).Build()

	assert.Equal(t, "boom", ee.Error())
	assert.Equal(t, ComponentUnknown, ee.Component)
	assert.Equal(t, CategoryGeneric, ee.Category)
	assert.False(t, ee.IsReported())
}

func TestBuildWithContext(t *testing.T) {
	ee := Newf("bad window %d", -1).
		Component("orchestrator").
		Category(CategoryValidation).
		Context("window", -1).
		Build()

	assert.Equal(t, "orchestrator", ee.Component)
	assert.Equal(t, CategoryValidation, ee.Category)
	assert.Equal(t, -1, ee.GetContext()["window"])
}

type fakeReporter struct{ calls int }

func (f *fakeReporter) ReportError(*EnhancedError) { f.calls++ }

func TestSetReporterIsInvoked(t *testing.T) {
	fr := &fakeReporter{}
	SetReporter(fr)
	t.Cleanup(func() { SetReporter(nil) })

	New(fmt.Errorf("x")).Build()

	assert.Equal(t, 1, fr.calls)
}

func TestIsMatchesByCategory(t *testing.T) {
	a := New(fmt.Errorf("a")).Category(CategoryAdapter).Build()
	b := New(fmt.Errorf("b")).Category(CategoryAdapter).Build()
	c := New(fmt.Errorf("c")).Category(CategoryState).Build()

	assert.True(t, a.Is(b))
	assert.False(t, a.Is(c))
}
