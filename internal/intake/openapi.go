package intake

import "github.com/JaimeStill/intake/pkg/openapi"

var schemas = map[string]*openapi.Schema{
	"IntakeTarget": {
		Type:     "object",
		Required: []string{"transaction_id"},
		Properties: map[string]*openapi.Schema{
			"transaction_id": {Type: "string"},
			"entity_type":    {Type: "string", Description: "Defaults to transaction"},
			"entity_id":      {Type: "string", Description: "Defaults to the transaction id"},
		},
	},
	"IntakeConfirm": {
		Type:     "object",
		Required: []string{"valid"},
		Properties: map[string]*openapi.Schema{
			"valid": {Type: "boolean"},
		},
	},
	"IntakeNotification": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"id":         {Type: "integer"},
			"kind":       {Type: "string", Enum: []any{KindSuccess, KindError, KindInfo}},
			"message":    {Type: "string"},
			"created_at": {Type: "string", Format: "date-time"},
		},
	},
	"IntakeSession": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"id":             {Type: "string", Format: "uuid"},
			"transaction_id": {Type: "string"},
			"entity_type":    {Type: "string"},
			"entity_id":      {Type: "string"},
			"phase": {Type: "string", Enum: []any{
				PhaseIdle, PhaseUploading, PhaseAwaitingSignature, PhasePersisting,
				PhaseRegenerating, PhaseSucceeded, PhaseFailed, PhaseBlocked, PhaseClosed,
			}},
			"stage":          {Type: "string", Enum: []any{StageUpload, StageSignature}},
			"attempts":       {Type: "integer"},
			"max_attempts":   {Type: "integer"},
			"can_regenerate": {Type: "boolean"},
			"documents":      {Type: "array", Items: openapi.SchemaRef("Document")},
			"packet":         openapi.SchemaRef("Packet"),
			"notifications":  {Type: "array", Items: openapi.SchemaRef("IntakeNotification")},
			"banner":         {Type: "string", Description: "Persistent limit warning"},
			"error":          {Type: "string"},
			"completed":      {Type: "boolean"},
			"created_at":     {Type: "string", Format: "date-time"},
			"updated_at":     {Type: "string", Format: "date-time"},
		},
	},
}
