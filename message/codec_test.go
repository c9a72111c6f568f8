package message

import (
	"errors"
	"fmt"
	"testing"

	"github.com/andaru/netctrl/ncerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/multierr"
)

func TestRequestRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		method string
		params Params
	}{
		{method: "neighbor.create", params: Params{{"ip_address": "10.0.0.2", "remote_as": "65001", "enabled": true}}},
		{method: "core.start", params: Params{}},
		{method: "vrf.create", params: Params{{"route_dist": "65000:100"}, {"ignored": "x"}}},
		{method: "", params: nil},
	} {
		t.Run(tc.method, func(t *testing.T) {
			a := assert.New(t)
			var enc Encoder
			var dec Decoder
			b, id, err := enc.EncodeRequest(tc.method, tc.params)
			require.NoError(t, err)
			envs, err := dec.Feed(b)
			require.NoError(t, err)
			require.Len(t, envs, 1)
			req, ok := envs[0].(*Request)
			require.True(t, ok, "got %T", envs[0])
			a.Equal(TypeRequest, req.Type())
			a.Equal(id, req.ID)
			a.Equal(tc.method, req.Method)
			a.Equal(nonNil(tc.params), req.Params)
		})
	}
}

func TestRequestIDSequence(t *testing.T) {
	a := assert.New(t)
	var enc Encoder
	var dec Decoder
	const n = 200
	for want := uint64(0); want < n; want++ {
		b, id, err := enc.EncodeRequest("ping", nil)
		a.NoError(err)
		a.Equal(want, id)
		envs, err := dec.Feed(b)
		a.NoError(err)
		if a.Len(envs, 1) {
			a.Equal(want, envs[0].(*Request).ID)
		}
	}
	a.Equal(uint64(n), enc.NextID())
}

func TestEmptyResponseRejected(t *testing.T) {
	a := assert.New(t)
	var enc Encoder

	b, err := enc.EncodeSuccessResponse(1, nil)
	a.Nil(b)
	a.True(errors.Is(err, ncerr.ErrEmptyResponse))
	a.True(ncerr.IsType(err, ncerr.TypeProtocol))

	b, err = enc.EncodeErrorResponse(1, "")
	a.Nil(b)
	a.True(errors.Is(err, ncerr.ErrEmptyResponse))

	_, err = enc.Encode(&Response{ID: 3})
	a.True(errors.Is(err, ncerr.ErrEmptyResponse))
}

func TestResponseRoundTrip(t *testing.T) {
	a := assert.New(t)
	var enc Encoder
	var dec Decoder

	ok, err := enc.EncodeSuccessResponse(7, map[string]interface{}{"status": "up"})
	require.NoError(t, err)
	failed, err := enc.EncodeErrorResponse(8, "Invalid type for RPC parameter.")
	require.NoError(t, err)

	envs, err := dec.Feed(append(ok, failed...))
	require.NoError(t, err)
	require.Len(t, envs, 2)

	r := envs[0].(*Response)
	a.Equal(uint64(7), r.ID)
	a.False(r.IsError())
	a.Equal(map[string]interface{}{"status": "up"}, r.Result)

	r = envs[1].(*Response)
	a.Equal(uint64(8), r.ID)
	a.True(r.IsError())
	a.Equal("Invalid type for RPC parameter.", r.Error)
	a.Nil(r.Result)
}

func TestNotificationEncoding(t *testing.T) {
	a := assert.New(t)
	var enc Encoder
	b, err := enc.EncodeNotification("prefix.add_remote", Params{{"prefix": "10.0.0.0/24", "vpn_label": 100}})
	require.NoError(t, err)

	// check the raw wire shape independently of our Decoder
	var raw []interface{}
	require.NoError(t, msgpack.Unmarshal(b, &raw))
	require.Len(t, raw, 3)
	a.EqualValues(2, raw[0])
	a.Equal("prefix.add_remote", raw[1])
	params := raw[2].([]interface{})
	require.Len(t, params, 1)
	kw := params[0].(map[string]interface{})
	a.Equal("10.0.0.0/24", kw["prefix"])
	a.EqualValues(100, kw["vpn_label"])

	// encoding is deterministic
	again, err := enc.EncodeNotification("prefix.add_remote", Params{{"vpn_label": 100, "prefix": "10.0.0.0/24"}})
	require.NoError(t, err)
	a.Equal(b, again)
}

func TestFeedAnySplit(t *testing.T) {
	var enc Encoder
	whole, _, err := enc.EncodeRequest("vrf.create", Params{{"route_dist": "65000:100", "import_rts": []interface{}{"65000:1"}}})
	require.NoError(t, err)

	var ref Decoder
	want, err := ref.Feed(whole)
	require.NoError(t, err)
	require.Len(t, want, 1)

	for i := 0; i <= len(whole); i++ {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			a := assert.New(t)
			var dec Decoder
			first, err := dec.Feed(whole[:i])
			a.NoError(err)
			second, err := dec.Feed(whole[i:])
			a.NoError(err)
			a.Equal(want, append(first, second...))
			a.Equal(0, dec.Buffered())
		})
	}
}

func TestFeedPartialIsBuffered(t *testing.T) {
	a := assert.New(t)
	var enc Encoder
	var dec Decoder
	one, _ := enc.EncodeNotification("logging", Params{{"msg": "one"}})
	two, _ := enc.EncodeNotification("logging", Params{{"msg": "two"}})
	stream := append(append([]byte{}, one...), two...)

	envs, err := dec.Feed(stream[:len(one)+2])
	a.NoError(err)
	a.Len(envs, 1)
	a.Equal(2, dec.Buffered())

	envs, err = dec.Feed(stream[len(one)+2:])
	a.NoError(err)
	if a.Len(envs, 1) {
		a.Equal("two", envs[0].(*Notification).Params[0]["msg"])
	}
}

func packRaw(t *testing.T, v interface{}) []byte {
	b, err := msgpack.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestFeedRejectsShapes(t *testing.T) {
	for _, tc := range []struct {
		name string
		raw  interface{}
	}{
		{name: "not an array", raw: map[string]interface{}{"id": 1}},
		{name: "short array", raw: []interface{}{0, 1}},
		{name: "bad tag", raw: []interface{}{3, 1, "m", []interface{}{}}},
		{name: "negative tag", raw: []interface{}{-1, 1, "m", []interface{}{}}},
		{name: "string tag", raw: []interface{}{"0", 1, "m", []interface{}{}}},
		{name: "request arity", raw: []interface{}{0, 1, "m"}},
		{name: "notification arity", raw: []interface{}{2, "m", []interface{}{}, 1}},
		{name: "request id", raw: []interface{}{0, "1", "m", []interface{}{}}},
		{name: "request method", raw: []interface{}{0, 1, 5, []interface{}{}}},
		{name: "params not array", raw: []interface{}{0, 1, "m", map[string]interface{}{}}},
		{name: "params element", raw: []interface{}{2, "m", []interface{}{"x"}}},
		{name: "response both", raw: []interface{}{1, 1, "failed", "result"}},
		{name: "response neither", raw: []interface{}{1, 1, nil, nil}},
		{name: "response error type", raw: []interface{}{1, 1, 42, nil}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			a := assert.New(t)
			var dec Decoder
			var enc Encoder
			good, err := enc.EncodeNotification("after", nil)
			require.NoError(t, err)

			envs, err := dec.Feed(append(packRaw(t, tc.raw), good...))
			a.True(errors.Is(err, ncerr.ErrMalformedMessage), "got %v", err)
			a.Len(multierr.Errors(err), 1)
			// the stream continues after the rejected message
			if a.Len(envs, 1) {
				a.Equal("after", envs[0].(*Notification).Method)
			}
		})
	}
}

func TestFeedUndecodable(t *testing.T) {
	a := assert.New(t)
	var dec Decoder
	envs, err := dec.Feed([]byte{0xc1, 0x01, 0x02})
	a.Empty(envs)
	a.True(errors.Is(err, ncerr.ErrMalformedMessage))
	a.Equal(0, dec.Buffered())

	var enc Encoder
	b, _ := enc.EncodeNotification("logging", nil)
	envs, err = dec.Feed(b)
	a.NoError(err)
	a.Len(envs, 1)
}

func TestFeedBinaryMethod(t *testing.T) {
	a := assert.New(t)
	var dec Decoder
	envs, err := dec.Feed(packRaw(t, []interface{}{2, []byte("logging"), []interface{}{}}))
	a.NoError(err)
	if a.Len(envs, 1) {
		a.Equal("logging", envs[0].(*Notification).Method)
	}
}

func TestParamsKwargs(t *testing.T) {
	a := assert.New(t)
	a.Equal(map[string]interface{}{}, Params(nil).Kwargs())
	a.Equal(map[string]interface{}{}, Params{nil}.Kwargs())
	a.Equal(map[string]interface{}{"a": "b"}, Params{{"a": "b"}, {"c": "d"}}.Kwargs())
}
