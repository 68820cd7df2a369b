package ingress

import "github.com/xeipuuv/gojsonschema"

// NewSourceRequestSchema is the inbound notification payload's JSON
// schema, compiled once at init time following handlers/json_schema.go's
// pattern in the teacher.
const NewSourceRequestSchema = `{
	"type": "object",
	"properties": {
		"source_key": {"type": "string", "minLength": 1}
	},
	"required": ["source_key"]
}`

var compiledNewSourceSchema = mustCompile(NewSourceRequestSchema)

func mustCompile(text string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(text))
	if err != nil {
		panic(err)
	}
	return schema
}
