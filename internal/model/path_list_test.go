package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathList_NilIsEmptyArray(t *testing.T) {
	var p PathList

	v, err := p.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	b, err := json.Marshal(struct {
		Photos PathList `json:"photos"`
	}{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"photos":[]}`, string(b))
}

func TestPathList_KeepsCommasAndOrder(t *testing.T) {
	in := PathList{"b/2,x.png", "a/1.jpg"}

	v, err := in.Value()
	require.NoError(t, err)

	var out PathList
	require.NoError(t, out.Scan(v))
	assert.Equal(t, in, out)

	require.NoError(t, out.Scan([]byte(v.(string))))
	assert.Equal(t, in, out)
}

func TestPathList_ScanEmpty(t *testing.T) {
	for _, v := range []any{nil, "", []byte{}, "null"} {
		var p PathList
		require.NoError(t, p.Scan(v))
		assert.NotNil(t, p)
		assert.Empty(t, p)
	}
}

func TestPathList_ScanInvalid(t *testing.T) {
	var p PathList
	assert.Error(t, p.Scan(42))
	assert.Error(t, p.Scan("{not json"))
}
