package chart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"candleChart/internal/domain"
	"candleChart/internal/ports"
)

func TestDecodePayload_ScenarioWithBuy(t *testing.T) {
	payload := `{"candles":[[0,10,12,9,11,100],[60000,11,13,10,12,150]],"trades":[{"timestamp":0,"price":10.5,"action":"BUY"}]}`

	p, err := DecodePayload([]byte(payload))
	require.NoError(t, err)
	require.Len(t, p.Candles, 2)

	first := p.Candles[0]
	assert.Equal(t, time.Unix(0, 0).UTC(), first.OpenTime)
	assert.Equal(t, 10.0, first.Open)
	assert.Equal(t, 12.0, first.High)
	assert.Equal(t, 9.0, first.Low)
	assert.Equal(t, 11.0, first.Close)
	assert.Equal(t, 100.0, first.Volume)
	assert.Equal(t, time.UnixMilli(60000).UTC(), p.Candles[1].OpenTime)

	require.Len(t, p.Trades, 1)
	assert.Equal(t, domain.ActionBuy, p.Trades[0].Action)
	assert.Equal(t, 10.5, p.Trades[0].Price)
	assert.True(t, p.Trades[0].Timestamp.Equal(time.Unix(0, 0)))
}

func TestDecodePayload_PreservesOrderAndCount(t *testing.T) {
	payload := `{"candles":[[3000,1,2,1,2,5],[1000,1,2,1,2,5],[2000,1,2,1,2,5]]}`

	p, err := DecodePayload([]byte(payload))
	require.NoError(t, err)
	require.Len(t, p.Candles, 3)
	assert.Equal(t, int64(3000), p.Candles[0].OpenTime.UnixMilli())
	assert.Equal(t, int64(1000), p.Candles[1].OpenTime.UnixMilli())
	assert.Equal(t, int64(2000), p.Candles[2].OpenTime.UnixMilli())
	assert.Empty(t, p.Trades)
}

func TestDecodePayload_NumericStrings(t *testing.T) {
	payload := `{"candles":[["1700000000000","10.5","11","10","10.8","42.25"]],"trades":[{"timestamp":"2023-11-14T22:13:20Z","price":"10.7","action":"sell"}]}`

	p, err := DecodePayload([]byte(payload))
	require.NoError(t, err)
	assert.Equal(t, 10.5, p.Candles[0].Open)
	assert.Equal(t, 42.25, p.Candles[0].Volume)
	assert.Equal(t, 10.7, p.Trades[0].Price)
	assert.Equal(t, domain.ActionSell, p.Trades[0].Action)
}

func TestDecodePayload_EmptyCandlesDecodes(t *testing.T) {
	p, err := DecodePayload([]byte(`{"candles":[]}`))
	require.NoError(t, err)
	assert.Empty(t, p.Candles)
}

func TestDecodePayload_UnknownActionKept(t *testing.T) {
	p, err := DecodePayload([]byte(`{"candles":[[0,1,1,1,1,1]],"trades":[{"timestamp":0,"price":1,"action":"Hold"}]}`))
	require.NoError(t, err)
	require.Len(t, p.Trades, 1)
	assert.Equal(t, domain.TradeAction("hold"), p.Trades[0].Action)
}

func TestDecodePayload_Errors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr error
	}{
		{name: "not json", payload: `{candles:`, wantErr: ports.ErrDecode},
		{name: "missing candles", payload: `{"trades":[]}`, wantErr: ports.ErrDecode},
		{name: "null candles", payload: `{"candles":null}`, wantErr: ports.ErrDecode},
		{name: "candles not array", payload: `{"candles":{"a":1}}`, wantErr: ports.ErrDecode},
		{name: "short row", payload: `{"candles":[[0,1,2,3,4]]}`, wantErr: ports.ErrDecode},
		{name: "long row", payload: `{"candles":[[0,1,2,3,4,5,6]]}`, wantErr: ports.ErrDecode},
		{name: "non numeric field", payload: `{"candles":[[0,"abc",2,3,4,5]]}`, wantErr: ports.ErrDecode},
		{name: "null field", payload: `{"candles":[[0,1,null,3,4,5]]}`, wantErr: ports.ErrDecode},
		{name: "bool field", payload: `{"candles":[[0,1,true,3,4,5]]}`, wantErr: ports.ErrDecode},
		{name: "nan string", payload: `{"candles":[[0,"NaN",2,3,4,5]]}`, wantErr: ports.ErrDecode},
		{name: "trade missing price", payload: `{"candles":[[0,1,2,1,2,5]],"trades":[{"timestamp":0,"action":"buy"}]}`, wantErr: ports.ErrDecode},
		{name: "trade missing action", payload: `{"candles":[[0,1,2,1,2,5]],"trades":[{"timestamp":0,"price":1}]}`, wantErr: ports.ErrDecode},
		{name: "trade missing timestamp", payload: `{"candles":[[0,1,2,1,2,5]],"trades":[{"price":1,"action":"buy"}]}`, wantErr: ports.ErrDecode},
		{name: "trade action not string", payload: `{"candles":[[0,1,2,1,2,5]],"trades":[{"timestamp":0,"price":1,"action":1}]}`, wantErr: ports.ErrDecode},
		{name: "trade not object", payload: `{"candles":[[0,1,2,1,2,5]],"trades":[[0,1,"buy"]]}`, wantErr: ports.ErrDecode},
		{name: "trade bad timestamp", payload: `{"candles":[[0,1,2,1,2,5]],"trades":[{"timestamp":"yesterday","price":1,"action":"buy"}]}`, wantErr: ports.ErrTradeConversion},
		{name: "trade bad price", payload: `{"candles":[[0,1,2,1,2,5]],"trades":[{"timestamp":0,"price":"cheap","action":"buy"}]}`, wantErr: ports.ErrTradeConversion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := DecodePayload([]byte(tt.payload))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, p)
		})
	}
}
