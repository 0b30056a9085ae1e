package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildOpenAPI(t *testing.T) {
	doc, err := BuildOpenAPI()
	require.NoError(t, err)

	paths := doc.Paths.Map()
	require.Contains(t, paths, "/api/predict/crop")
	require.Contains(t, paths, "/api/predict/fertilizer")

	crop := paths["/api/predict/crop"].Post
	schema := crop.RequestBody.Value.Content.Get("application/json").Schema.Value
	assert.Len(t, schema.Properties, 7)

	temp := schema.Properties["crop_temp"].Value
	require.NotNil(t, temp.Min)
	require.NotNil(t, temp.Max)
	assert.Equal(t, 0.0, *temp.Min)
	assert.Equal(t, 50.0, *temp.Max)

	ph := schema.Properties["crop_ph"].Value
	assert.Equal(t, 7.0, *ph.Min, "accepted range covers the default")

	fert := paths["/api/predict/fertilizer"].Post.RequestBody.Value.Content.Get("application/json").Schema.Value
	assert.Len(t, fert.Properties, 8)
	assert.Nil(t, fert.Properties["fert_n"].Value.Min)
}
