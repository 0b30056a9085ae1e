package http

import (
	"context"

	"github.com/getkin/kin-openapi/openapi3"

	"smartfarm/recommend"
)

// BuildOpenAPI describes the JSON prediction API. Request schemas are derived
// from the form fields so the document cannot drift from the widgets.
func BuildOpenAPI() (*openapi3.T, error) {
	result := openapi3.NewObjectSchema().
		WithProperty("flow", openapi3.NewStringSchema().WithEnum(string(recommend.FlowCrop), string(recommend.FlowFertilizer))).
		WithProperty("ok", openapi3.NewBoolSchema()).
		WithProperty("message", openapi3.NewStringSchema()).
		WithProperty("label", openapi3.NewStringSchema()).
		WithProperty("index", openapi3.NewIntegerSchema()).
		WithProperty("known", openapi3.NewBoolSchema()).
		WithProperty("error", openapi3.NewStringSchema()).
		WithProperty("field_errors", openapi3.NewObjectSchema().WithAdditionalProperties(openapi3.NewStringSchema()))

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       "Smart Farming Assistant",
			Description: "Crop and fertilizer recommendations from soil and weather measurements.",
			Version:     "1.0.0",
		},
		Paths: openapi3.NewPaths(
			openapi3.WithPath("/api/predict/crop", predictPath("predictCrop", "Recommend a crop", recommend.CropFields, result)),
			openapi3.WithPath("/api/predict/fertilizer", predictPath("predictFertilizer", "Recommend a fertilizer", recommend.FertilizerFields, result)),
		),
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, err
	}
	return doc, nil
}

func predictPath(operationID, summary string, fields []recommend.Field, result *openapi3.Schema) *openapi3.PathItem {
	op := openapi3.NewOperation()
	op.OperationID = operationID
	op.Summary = summary
	op.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().WithJSONSchema(inputSchema(fields)),
	}
	op.Responses = openapi3.NewResponses(
		openapi3.WithStatus(200, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription("Recommendation or prediction failure").WithJSONSchema(result),
		}),
		openapi3.WithStatus(400, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription("Malformed body or unknown field"),
		}),
		openapi3.WithStatus(422, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription("Value outside the widget range").WithJSONSchema(result),
		}),
	)
	return &openapi3.PathItem{Post: op}
}

func inputSchema(fields []recommend.Field) *openapi3.Schema {
	schema := openapi3.NewObjectSchema()
	for _, f := range fields {
		prop := openapi3.NewFloat64Schema().WithDefault(f.Default)
		prop.Title = f.Label
		if f.Bounded {
			lo, hi := f.Range()
			prop = prop.WithMin(lo).WithMax(hi)
		}
		schema = schema.WithProperty(f.Key, prop)
	}
	return schema
}
