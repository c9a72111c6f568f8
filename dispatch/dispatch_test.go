package dispatch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/andaru/netctrl/message"
	"github.com/andaru/netctrl/ncerr"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type call struct {
	operation string
	kwargs    map[string]interface{}
}

type fakeRegistry struct {
	calls  []call
	result interface{}
	err    error
}

func (r *fakeRegistry) Invoke(_ context.Context, operation string, kwargs map[string]interface{}) (interface{}, error) {
	r.calls = append(r.calls, call{operation, kwargs})
	return r.result, r.err
}

func TestDispatchRequest(t *testing.T) {
	ctx := context.Background()
	for _, tc := range []struct {
		name       string
		params     message.Params
		result     interface{}
		err        error
		wantKwargs map[string]interface{}
		wantResult interface{}
		wantErr    error
		wantDesc   string
	}{
		{
			name:       "success",
			params:     message.Params{{"route_dist": "65000:100"}, {"ignored": true}},
			result:     "ok",
			wantKwargs: map[string]interface{}{"route_dist": "65000:100"},
			wantResult: "ok",
		},
		{
			name:       "no params",
			result:     true,
			wantKwargs: map[string]interface{}{},
			wantResult: true,
		},
		{
			name:       "invalid arguments",
			params:     message.Params{{"remote_as": []interface{}{}}},
			err:        fmt.Errorf("remote_as: %w", ErrInvalidArguments),
			wantKwargs: map[string]interface{}{"remote_as": []interface{}{}},
			wantErr:    ncerr.ErrInvalidParameter,
			wantDesc:   "Invalid type for RPC parameter.",
		},
		{
			name:       "operation failure",
			err:        errors.New("neighbor 10.0.0.2 not found"),
			wantKwargs: map[string]interface{}{},
			wantDesc:   "neighbor 10.0.0.2 not found",
		},
		{
			name:       "not found",
			err:        fmt.Errorf("bogus.op: %w", ErrOperationNotFound),
			wantKwargs: map[string]interface{}{},
			wantErr:    ErrOperationNotFound,
			wantDesc:   "bogus.op: operation not found",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			check := assert.New(t)
			r := &fakeRegistry{result: tc.result, err: tc.err}
			d := New(r, nil)
			result, err := d.DispatchRequest(ctx, "neighbor.create", tc.params)
			if check.Len(r.calls, 1) {
				check.Equal("neighbor.create", r.calls[0].operation)
				check.Equal(tc.wantKwargs, r.calls[0].kwargs)
			}
			if tc.wantDesc == "" {
				check.NoError(err)
				check.Equal(tc.wantResult, result)
				return
			}
			check.Error(err)
			check.Nil(result)
			if tc.wantErr != nil {
				check.True(errors.Is(err, tc.wantErr), "got %v", err)
			}
			check.Equal(tc.wantDesc, ncerr.Description(err))
		})
	}
}

func TestDispatchInvalidParameterIsProtocolError(t *testing.T) {
	d := New(&fakeRegistry{err: ErrInvalidArguments}, nil)
	_, err := d.DispatchRequest(context.Background(), "vrf.create", nil)
	assert.True(t, ncerr.IsType(err, ncerr.TypeProtocol))
	assert.True(t, errors.Is(err, ErrInvalidArguments))
}

func TestDispatchNotification(t *testing.T) {
	check := assert.New(t)
	core, logs := observer.New(zapcore.DebugLevel)
	r := &fakeRegistry{err: errors.New("boom")}
	d := New(r, zap.New(core))

	d.DispatchNotification(context.Background(), "core.ping", message.Params{{"a": "b"}})
	check.Len(r.calls, 1)
	check.Equal(1, logs.FilterMessage("notification failed").Len())

	r.err, r.result = nil, "ignored"
	d.DispatchNotification(context.Background(), "core.ping", nil)
	check.Len(r.calls, 2)
	check.Equal(1, logs.FilterMessage("notification handled").Len())
}

func TestDispatchResponse(t *testing.T) {
	check := assert.New(t)
	var d Dispatcher
	err := d.DispatchResponse(&message.Response{ID: 42, Result: "x"})
	check.True(ncerr.IsType(err, ncerr.TypeLogic))
	check.Contains(err.Error(), "unexpected-response")
	check.Contains(err.Error(), "42")
}

func TestDispatchNoRegistry(t *testing.T) {
	var d Dispatcher
	_, err := d.DispatchRequest(context.Background(), "x", nil)
	assert.True(t, errors.Is(err, ErrOperationNotFound))
}
