package dispatch

import (
	"context"
	"errors"
	"strconv"

	"github.com/andaru/netctrl/message"
	"github.com/andaru/netctrl/ncerr"
	"go.uber.org/zap"
)

// Registry contract errors. Registry implementations wrap these so the
// Dispatcher can classify a failure with errors.Is.
var (
	ErrOperationNotFound = errors.New("operation not found")
	ErrInvalidArguments  = errors.New("invalid arguments")
)

// InvalidParameterMessage is the error text a peer receives for request
// parameters of the wrong type
const InvalidParameterMessage = "Invalid type for RPC parameter."

// Registry invokes operations by name
type Registry interface {
	Invoke(ctx context.Context, operation string, kwargs map[string]interface{}) (interface{}, error)
}

// Dispatcher routes inbound envelopes to a Registry
type Dispatcher struct {
	Registry Registry
	Logger   *zap.Logger
}

// New returns a new Dispatcher for r
func New(r Registry, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{Registry: r, Logger: log}
}

func (d *Dispatcher) log() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// DispatchRequest invokes method with the keyword arguments in params
// and returns the operation's result.
//
// An argument type failure is returned as an invalid-parameter protocol
// error. Other failures are returned as they are.
func (d *Dispatcher) DispatchRequest(ctx context.Context, method string, params message.Params) (interface{}, error) {
	if d.Registry == nil {
		return nil, ErrOperationNotFound
	}
	result, err := d.Registry.Invoke(ctx, method, params.Kwargs())
	if err != nil {
		if errors.Is(err, ErrInvalidArguments) {
			return nil, ncerr.InvalidParameter(ncerr.WithMessage(InvalidParameterMessage), ncerr.WithCause(err))
		}
		return nil, err
	}
	return result, nil
}

// DispatchNotification invokes method like DispatchRequest, but only
// logs the outcome since notifications have no reply.
func (d *Dispatcher) DispatchNotification(ctx context.Context, method string, params message.Params) {
	if _, err := d.DispatchRequest(ctx, method, params); err != nil {
		d.log().Warn("notification failed", zap.String("method", method), zap.Error(err))
		return
	}
	d.log().Debug("notification handled", zap.String("method", method))
}

// DispatchResponse rejects r. The channel never issues requests of its
// own, so every inbound response is unexpected.
func (d *Dispatcher) DispatchResponse(r *message.Response) error {
	return ncerr.UnexpectedResponse(ncerr.WithMessage("unexpected response to request " + strconv.FormatUint(r.ID, 10)))
}
