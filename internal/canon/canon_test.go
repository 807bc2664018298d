package canon

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarshalSortsKeys(t *testing.T) {
	a, err := Payload{"b": 1, "a": 2, "c": 3}.Bytes()
	require.NoError(t, err)
	require.Equal(t, `{"a":2,"b":1,"c":3}`, string(a))
}

func TestMarshalIsDeterministicAcrossInsertionOrder(t *testing.T) {
	first, err := Payload{"z": "1", "a": "2"}.Bytes()
	require.NoError(t, err)
	second, err := Payload{"a": "2", "z": "1"}.Bytes()
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestMarshalPreservesArrayOrder(t *testing.T) {
	b, err := Payload{"list": []interface{}{3, 1, 2}}.Bytes()
	require.NoError(t, err)
	require.Equal(t, `{"list":[3,1,2]}`, string(b))
}
