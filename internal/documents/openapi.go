package documents

import "github.com/JaimeStill/intake/pkg/openapi"

var schemas = map[string]*openapi.Schema{
	"Document": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"id":           {Type: "string", Format: "uuid"},
			"name":         {Type: "string"},
			"type":         {Type: "string"},
			"url":          {Type: "string"},
			"storage_key":  {Type: "string"},
			"entity_type":  {Type: "string", Enum: []any{EntityEmployee, EntityCustomer, EntityVehicle, EntityTransaction, EntityNone}},
			"entity_id":    {Type: "string"},
			"content_type": {Type: "string"},
			"size_bytes":   {Type: "integer"},
			"page_count":   {Type: "integer"},
			"hash":         {Type: "string", Description: "SHA-256 of the stored bytes"},
			"status":       {Type: "string", Enum: []any{StatusPending, StatusApproved, StatusRejected}},
			"uploaded_at":  {Type: "string", Format: "date-time"},
			"updated_at":   {Type: "string", Format: "date-time"},
		},
	},
	"DocumentPage": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"data":        {Type: "array", Items: openapi.SchemaRef("Document")},
			"total":       {Type: "integer"},
			"page":        {Type: "integer"},
			"page_size":   {Type: "integer"},
			"total_pages": {Type: "integer"},
		},
	},
	"DocumentSearch": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"page":        {Type: "integer"},
			"page_size":   {Type: "integer"},
			"search":      {Type: "string"},
			"sort":        {Type: "array", Items: &openapi.Schema{Type: "object"}},
			"status":      {Type: "string"},
			"entity_type": {Type: "string"},
			"entity_id":   {Type: "string"},
			"type":        {Type: "string"},
			"name":        {Type: "string"},
		},
	},
	"SignatureResult": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"document_id": {Type: "string", Format: "uuid"},
			"valid":       {Type: "boolean"},
		},
	},
}
