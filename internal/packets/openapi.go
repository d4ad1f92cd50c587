package packets

import "github.com/JaimeStill/intake/pkg/openapi"

var schemas = map[string]*openapi.Schema{
	"Packet": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"transaction_id": {Type: "string"},
			"url":            {Type: "string", Description: "Signed URL or API download path"},
			"filename":       {Type: "string"},
			"storage_key":    {Type: "string"},
			"page_count":     {Type: "integer"},
			"sources":        {Type: "integer", Description: "Number of merged documents"},
			"generated_at":   {Type: "string", Format: "date-time"},
		},
	},
}
