package lens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type codecItem struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestJSONCodec_Unmarshal(t *testing.T) {
	var env Envelope[codecItem]

	err := JSONCodec{}.Unmarshal([]byte(`{"code":200,"status":"Ok","data":{"total":1,"results":[{"id":7,"name":"Wolverine"}]}}`), &env)

	require.NoError(t, err)
	require.NotNil(t, env.Data)
	assert.Equal(t, 200, env.Code)
	assert.Equal(t, []codecItem{{ID: 7, Name: "Wolverine"}}, env.Data.Results)
}

func TestJSONCodec_UnmarshalInvalid(t *testing.T) {
	var env Envelope[codecItem]
	assert.Error(t, JSONCodec{}.Unmarshal([]byte(`{not valid json}`), &env))
}

func TestJSONCodec_ContentType(t *testing.T) {
	assert.Equal(t, "application/json", JSONCodec{}.ContentType())
}
