package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/isomorph/internal/dispatch"
	"github.com/roach88/isomorph/internal/errs"
	"github.com/roach88/isomorph/internal/value"
)

func newTestContext(t *testing.T) *Context {
	t.Helper()
	return New(WithIDGenerator(NewSequenceGenerator("ctx")))
}

// echoAction returns its params.
func echoAction(_ context.Context, _ *Context, params value.Value) (value.Value, error) {
	return params, nil
}

// setFoo stores the action result under "foo".
func setFoo(s *dispatch.Store, payload value.Value) error {
	s.Set("foo", payload)
	return nil
}

func TestChildStoreIsolation(t *testing.T) {
	root := newTestContext(t)
	root.CreateStore("test", value.Object{"foo": value.String("bar")})

	child := root.GetChild()
	child.GetStore("test").Set("foo", value.Int(42))

	parentFoo, _ := root.GetStore("test").Get("foo")
	childFoo, _ := child.GetStore("test").Get("foo")
	assert.Equal(t, value.String("bar"), parentFoo)
	assert.Equal(t, value.Int(42), childFoo)

	root.GetStore("test").Set("foo", value.String("changed"))
	childFoo, _ = child.GetStore("test").Get("foo")
	assert.Equal(t, value.Int(42), childFoo, "parent writes must not reach the child")
}

func TestActionOnChildOnlyTouchesChild(t *testing.T) {
	root := newTestContext(t)
	root.CreateStore("test", value.Object{"foo": value.String("bar")}).
		Handle(dispatch.Succeeded("test:go"), setFoo)
	root.CreateAction("test:go", echoAction)

	child := root.GetChild()
	result, err := child.PerformAction(context.Background(), "test:go", value.String("baz"))
	require.NoError(t, err)
	assert.Equal(t, value.String("baz"), result)

	childFoo, _ := child.GetStore("test").Get("foo")
	parentFoo, _ := root.GetStore("test").Get("foo")
	assert.Equal(t, value.String("baz"), childFoo)
	assert.Equal(t, value.String("bar"), parentFoo)
}

func TestSiblingsAreIsolated(t *testing.T) {
	root := newTestContext(t)
	root.CreateStore("test", value.Object{"foo": value.String("bar")})

	a := root.GetChild()
	b := root.GetChild()
	a.GetStore("test").Set("foo", value.String("a"))

	bFoo, _ := b.GetStore("test").Get("foo")
	assert.Equal(t, value.String("bar"), bFoo)
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, root.ID(), a.ParentID())
}

func TestChildSeededFromParentCurrentData(t *testing.T) {
	root := newTestContext(t)
	root.CreateStore("test", value.Object{"foo": value.String("initial")})
	root.GetStore("test").Set("foo", value.String("current"))
	root.GetStore("test").Set("extra", value.Int(1))

	child := root.GetChild()
	assert.True(t, value.Equal(
		value.Object{"foo": value.String("current"), "extra": value.Int(1)},
		child.GetStore("test").ToObject(),
	))
}

func TestChildKeySetsMatchParentAtCloneTime(t *testing.T) {
	root := newTestContext(t)
	root.CreateStore("a", nil)
	root.CreateAction("x", echoAction)

	child := root.GetChild()

	root.CreateStore("b", nil)
	root.CreateAction("y", echoAction)

	assert.Equal(t, []string{"a"}, child.StoreNames())
	assert.Equal(t, []string{"x"}, child.ActionNames())
	assert.Nil(t, child.GetStore("b"))
	assert.Equal(t, []string{"a", "b"}, root.StoreNames())

	_, err := child.PerformAction(context.Background(), "y", nil)
	require.Error(t, err)
	assert.True(t, errs.IsActionNotFound(err))
}

func TestGrandchildReplay(t *testing.T) {
	root := newTestContext(t)
	root.CreateStore("test", value.Object{"foo": value.String("bar")}).
		Handle(dispatch.Succeeded("test:go"), setFoo)
	root.CreateAction("test:go", echoAction)

	child := root.GetChild()
	child.GetStore("test").Set("foo", value.String("child"))
	grandchild := child.GetChild()

	assert.Equal(t, root.Steps(), child.Steps())
	assert.Equal(t, child.Steps(), grandchild.Steps())

	foo, _ := grandchild.GetStore("test").Get("foo")
	assert.Equal(t, value.String("child"), foo, "grandchild seeds from its own parent")

	_, err := grandchild.PerformAction(context.Background(), "test:go", value.Int(7))
	require.NoError(t, err)
	foo, _ = grandchild.GetStore("test").Get("foo")
	assert.Equal(t, value.Int(7), foo)
	foo, _ = child.GetStore("test").Get("foo")
	assert.Equal(t, value.String("child"), foo)
}

func TestReplayDeterminism(t *testing.T) {
	setup := func() *Context {
		c := newTestContext(t)
		c.CreateStore("user", nil).Handle(dispatch.Succeeded("user:load"), setFoo)
		c.CreateAction("user:load", echoAction)
		c.CreateStore("session", value.Object{"id": value.Null{}})
		c.CreateAction("session:end", echoAction)
		return c
	}

	a := setup().GetChild()
	b := setup().GetChild()

	assert.Equal(t, a.StoreNames(), b.StoreNames())
	assert.Equal(t, a.ActionNames(), b.ActionNames())
	assert.Equal(t, a.Steps(), b.Steps())
	assert.Equal(t, []StepRecord{
		{Seq: 1, Kind: StepCreateStore, Name: "user"},
		{Seq: 2, Kind: StepHandle, Name: "user", Event: "user:load:succeeded"},
		{Seq: 3, Kind: StepCreateAction, Name: "user:load"},
		{Seq: 4, Kind: StepCreateStore, Name: "session"},
		{Seq: 5, Kind: StepCreateAction, Name: "session:end"},
	}, a.Steps())
}

func TestActionBoundToPerformingContext(t *testing.T) {
	root := newTestContext(t)
	root.CreateStore("seen", nil)
	root.CreateAction("mark", func(_ context.Context, c *Context, _ value.Value) (value.Value, error) {
		c.GetStore("seen").Set("id", value.String(c.ID()))
		return nil, nil
	})

	child := root.GetChild()
	_, err := child.PerformAction(context.Background(), "mark", nil)
	require.NoError(t, err)

	id, _ := child.GetStore("seen").Get("id")
	assert.Equal(t, value.String(child.ID()), id)
	assert.False(t, root.GetStore("seen").Has("id"))
}

func TestPerformActionErrors(t *testing.T) {
	root := newTestContext(t)
	boom := errors.New("boom")
	root.CreateAction("fail", func(context.Context, *Context, value.Value) (value.Value, error) {
		return nil, boom
	})

	_, err := root.PerformAction(context.Background(), "missing", nil)
	require.Error(t, err)
	assert.True(t, errs.IsActionNotFound(err))

	_, err = root.PerformAction(context.Background(), "fail", nil)
	require.Error(t, err)
	assert.True(t, errs.IsActionExecution(err))
	assert.ErrorIs(t, err, boom)
}

func TestCreateActionOverwrites(t *testing.T) {
	root := newTestContext(t)
	root.CreateAction("v", func(context.Context, *Context, value.Value) (value.Value, error) {
		return value.Int(1), nil
	})
	root.CreateAction("v", func(context.Context, *Context, value.Value) (value.Value, error) {
		return value.Int(2), nil
	})

	got, err := root.GetChild().PerformAction(context.Background(), "v", nil)
	require.NoError(t, err)
	assert.Equal(t, value.Int(2), got)
	assert.Equal(t, []string{"v"}, root.ActionNames())
}

func TestGetStoreMissing(t *testing.T) {
	root := newTestContext(t)
	assert.Nil(t, root.GetStore("nope"))
	assert.Nil(t, root.Bind("nope"))
}

func TestConcurrentGetChild(t *testing.T) {
	root := newTestContext(t)
	root.CreateStore("test", value.Object{"n": value.Int(0)}).
		Handle(dispatch.Succeeded("inc"), func(s *dispatch.Store, payload value.Value) error {
			s.Set("n", payload)
			return nil
		})
	root.CreateAction("inc", echoAction)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			child := root.GetChild()
			_, err := child.PerformAction(context.Background(), "inc", value.Int(int64(i)))
			assert.NoError(t, err)
			n, _ := child.GetStore("test").Get("n")
			assert.Equal(t, value.Int(int64(i)), n)
		}(i)
	}
	wg.Wait()

	n, _ := root.GetStore("test").Get("n")
	assert.Equal(t, value.Int(0), n)
}
