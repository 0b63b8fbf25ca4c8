package fake

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestFakeEncoder(t *testing.T) {
	ctx := context.Background()
	e := &Encoder{}

	pos, err := e.Position(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pos, test.ShouldEqual, 0)

	e.SetPosition(2.5)
	e.Advance(0.5)
	pos, err = e.Position(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pos, test.ShouldEqual, 3.0)

	test.That(t, e.ResetPosition(ctx), test.ShouldBeNil)
	pos, err = e.Position(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pos, test.ShouldEqual, 0)
}

func TestFakeEncoderErrors(t *testing.T) {
	ctx := context.Background()
	e := &Encoder{}

	readErr := errors.New("i2c bus flaked")
	e.SetPositionError(readErr)
	_, err := e.Position(ctx)
	test.That(t, err, test.ShouldEqual, readErr)

	e.SetPositionError(nil)
	_, err = e.Position(ctx)
	test.That(t, err, test.ShouldBeNil)

	e.SetResetError(errors.New("no reset for you"))
	test.That(t, e.ResetPosition(ctx), test.ShouldNotBeNil)
}
