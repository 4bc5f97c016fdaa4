// Package registry provides the built-in node type catalog.
package registry

import (
	"github.com/dukex/flowlint/pkg/models"
	"github.com/dukex/flowlint/pkg/schema"
)

// RegisterBuiltins registers the snapshot of commonly used platform node
// types. The external node registry remains authoritative; additional or
// newer schemas are loaded with LoadSchemaDir.
func (r *Registry) RegisterBuiltins() {
	for _, nodeType := range builtinTypes() {
		r.Register(nodeType)
	}
}

func builtinTypes() []*schema.NodeType {
	return []*schema.NodeType{
		manualTriggerType(),
		webhookType(),
		scheduleTriggerType(),
		httpRequestType(),
		slackType(),
		setType(),
		codeType(),
		ifType(),
		mergeType(),
		respondToWebhookType(),
		noOpType(),
		emailSendType(),
		postgresType(),
		agentType(),
		lmChatOpenAiType(),
		toolHTTPRequestType(),
		memoryBufferWindowType(),
		outputParserStructuredType(),
	}
}

func manualTriggerType() *schema.NodeType {
	return &schema.NodeType{
		Name:        models.NodeTypePrefixBase + "manualTrigger",
		DisplayName: "Manual Trigger",
		Trigger:     true,
		Inputs:      []*schema.PortSpec{},
		Outputs:     []*schema.PortSpec{{Name: "main", Type: models.ConnectionTypeMain}},
	}
}

func webhookType() *schema.NodeType {
	return &schema.NodeType{
		Name:        models.NodeTypePrefixBase + "webhook",
		DisplayName: "Webhook",
		Trigger:     true,
		Inputs:      []*schema.PortSpec{},
		Outputs:     []*schema.PortSpec{{Name: "main", Type: models.ConnectionTypeMain}},
		Properties: []*schema.Property{
			{Name: "path", Type: schema.PropertyTypeString, Required: true},
			{
				Name: "httpMethod", Type: schema.PropertyTypeOptions, Default: "GET",
				Options: []any{"DELETE", "GET", "HEAD", "PATCH", "POST", "PUT"},
			},
			{
				Name: "responseMode", Type: schema.PropertyTypeOptions, Default: "onReceived",
				Options: []any{"onReceived", "lastNode", "responseNode"},
			},
		},
	}
}

func scheduleTriggerType() *schema.NodeType {
	return &schema.NodeType{
		Name:        models.NodeTypePrefixBase + "scheduleTrigger",
		DisplayName: "Schedule Trigger",
		Trigger:     true,
		Inputs:      []*schema.PortSpec{},
		Outputs:     []*schema.PortSpec{{Name: "main", Type: models.ConnectionTypeMain}},
		Properties: []*schema.Property{
			{Name: "rule", Type: schema.PropertyTypeCollection},
		},
	}
}

func httpRequestType() *schema.NodeType {
	return &schema.NodeType{
		Name:        models.NodeTypePrefixBase + "httpRequest",
		DisplayName: "HTTP Request",
		Properties: []*schema.Property{
			{Name: "url", Type: schema.PropertyTypeString, Required: true},
			{
				Name: "method", Type: schema.PropertyTypeOptions, Default: "GET",
				Options: []any{"DELETE", "GET", "HEAD", "OPTIONS", "PATCH", "POST", "PUT"},
			},
			{
				Name: "authentication", Type: schema.PropertyTypeOptions, Default: "none",
				Options: []any{"none", "predefinedCredentialType", "genericCredentialType"},
			},
			{Name: "sendBody", Type: schema.PropertyTypeBoolean, Default: false},
			{
				Name: "contentType", Type: schema.PropertyTypeOptions, Default: "json",
				Options:        []any{"json", "form-urlencoded", "multipart-form-data", "raw"},
				DisplayOptions: &schema.DisplayOptions{Show: map[string][]any{"sendBody": {true}}},
			},
			{
				Name: "jsonBody", Type: schema.PropertyTypeJSON,
				DisplayOptions: &schema.DisplayOptions{
					Show: map[string][]any{"sendBody": {true}, "contentType": {"json"}},
				},
			},
			{Name: "timeout", Type: schema.PropertyTypeNumber, Default: float64(10000)},
		},
	}
}

// slackType carries the dependency-chain example the validator exists for:
// channelId only becomes required once operation=post and select=channel.
func slackType() *schema.NodeType {
	return &schema.NodeType{
		Name:        models.NodeTypePrefixBase + "slack",
		DisplayName: "Slack",
		Credentials: []*schema.CredentialSpec{{Type: "slackApi", Required: true}},
		Properties: []*schema.Property{
			{
				Name: "resource", Type: schema.PropertyTypeOptions, Default: "message",
				Options: []any{"channel", "message", "user"},
			},
			{
				Name: "operation", Type: schema.PropertyTypeOptions, Default: "post",
				Options:        []any{"delete", "post", "update"},
				DisplayOptions: &schema.DisplayOptions{Show: map[string][]any{"resource": {"message"}}},
			},
			{
				Name: "select", Type: schema.PropertyTypeOptions, Default: "channel",
				Options: []any{"channel", "user"},
				DisplayOptions: &schema.DisplayOptions{
					Show: map[string][]any{"resource": {"message"}, "operation": {"post"}},
				},
			},
			{
				Name: "channelId", Type: schema.PropertyTypeString, Required: true,
				DisplayOptions: &schema.DisplayOptions{
					Show: map[string][]any{"operation": {"post"}, "select": {"channel"}},
				},
			},
			{
				Name: "user", Type: schema.PropertyTypeString, Required: true,
				DisplayOptions: &schema.DisplayOptions{
					Show: map[string][]any{"operation": {"post"}, "select": {"user"}},
				},
			},
			{
				Name: "text", Type: schema.PropertyTypeString,
				DisplayOptions: &schema.DisplayOptions{
					Show: map[string][]any{"resource": {"message"}, "operation": {"post"}},
				},
			},
		},
	}
}

func setType() *schema.NodeType {
	return &schema.NodeType{
		Name:        models.NodeTypePrefixBase + "set",
		DisplayName: "Edit Fields",
		Properties: []*schema.Property{
			{
				Name: "mode", Type: schema.PropertyTypeOptions, Default: "manual",
				Options: []any{"manual", "raw"},
			},
			{
				Name: "assignments", Type: schema.PropertyTypeCollection,
				DisplayOptions: &schema.DisplayOptions{Show: map[string][]any{"mode": {"manual"}}},
			},
			{
				Name: "jsonOutput", Type: schema.PropertyTypeJSON,
				DisplayOptions: &schema.DisplayOptions{Show: map[string][]any{"mode": {"raw"}}},
			},
		},
	}
}

func codeType() *schema.NodeType {
	return &schema.NodeType{
		Name:        models.NodeTypePrefixBase + "code",
		DisplayName: "Code",
		Properties: []*schema.Property{
			{
				Name: "mode", Type: schema.PropertyTypeOptions, Default: "runOnceForAllItems",
				Options: []any{"runOnceForAllItems", "runOnceForEachItem"},
			},
			{
				Name: "language", Type: schema.PropertyTypeOptions, Default: "javaScript",
				Options: []any{"javaScript", "python"},
			},
			{
				Name: "jsCode", Type: schema.PropertyTypeString, Required: true,
				DisplayOptions: &schema.DisplayOptions{Show: map[string][]any{"language": {"javaScript"}}},
			},
			{
				Name: "pythonCode", Type: schema.PropertyTypeString, Required: true,
				DisplayOptions: &schema.DisplayOptions{Show: map[string][]any{"language": {"python"}}},
			},
		},
	}
}

func ifType() *schema.NodeType {
	return &schema.NodeType{
		Name:        models.NodeTypePrefixBase + "if",
		DisplayName: "If",
		Properties: []*schema.Property{
			{Name: "conditions", Type: schema.PropertyTypeCollection, Required: true},
		},
		Outputs: []*schema.PortSpec{
			{Name: "main", Type: models.ConnectionTypeMain},  // true branch
			{Name: "main1", Type: models.ConnectionTypeMain}, // false branch
		},
	}
}

func mergeType() *schema.NodeType {
	return &schema.NodeType{
		Name:        models.NodeTypePrefixBase + "merge",
		DisplayName: "Merge",
		Properties: []*schema.Property{
			{
				Name: "mode", Type: schema.PropertyTypeOptions, Default: "append",
				Options: []any{"append", "combine", "chooseBranch"},
			},
		},
		Inputs: []*schema.PortSpec{
			{Name: "main", Type: models.ConnectionTypeMain},
			{Name: "main1", Type: models.ConnectionTypeMain},
		},
	}
}

func respondToWebhookType() *schema.NodeType {
	return &schema.NodeType{
		Name:        models.NodeTypePrefixBase + "respondToWebhook",
		DisplayName: "Respond to Webhook",
		Properties: []*schema.Property{
			{
				Name: "respondWith", Type: schema.PropertyTypeOptions, Default: "firstIncomingItem",
				Options: []any{"firstIncomingItem", "json", "text", "noData"},
			},
			{
				Name: "responseBody", Type: schema.PropertyTypeString,
				DisplayOptions: &schema.DisplayOptions{Show: map[string][]any{"respondWith": {"text"}}},
			},
			{
				Name: "responseBodyJson", Type: schema.PropertyTypeJSON,
				DisplayOptions: &schema.DisplayOptions{Show: map[string][]any{"respondWith": {"json"}}},
			},
		},
	}
}

func noOpType() *schema.NodeType {
	return &schema.NodeType{
		Name:        models.NodeTypePrefixBase + "noOp",
		DisplayName: "No Operation",
	}
}

func emailSendType() *schema.NodeType {
	return &schema.NodeType{
		Name:        models.NodeTypePrefixBase + "emailSend",
		DisplayName: "Send Email",
		Credentials: []*schema.CredentialSpec{{Type: "smtp", Required: true}},
		Properties: []*schema.Property{
			{Name: "fromEmail", Type: schema.PropertyTypeString, Required: true},
			{Name: "toEmail", Type: schema.PropertyTypeString, Required: true},
			{Name: "subject", Type: schema.PropertyTypeString},
			{Name: "text", Type: schema.PropertyTypeString},
		},
	}
}

func postgresType() *schema.NodeType {
	return &schema.NodeType{
		Name:        models.NodeTypePrefixBase + "postgres",
		DisplayName: "Postgres",
		Credentials: []*schema.CredentialSpec{{Type: "postgres", Required: true}},
		Properties: []*schema.Property{
			{
				Name: "operation", Type: schema.PropertyTypeOptions, Default: "executeQuery",
				Options: []any{"executeQuery", "insert", "update", "delete"},
			},
			{
				Name: "query", Type: schema.PropertyTypeString, Required: true,
				DisplayOptions: &schema.DisplayOptions{Show: map[string][]any{"operation": {"executeQuery"}}},
			},
			{
				Name: "table", Type: schema.PropertyTypeString, Required: true,
				DisplayOptions: &schema.DisplayOptions{
					Show: map[string][]any{"operation": {"insert", "update", "delete"}},
				},
			},
		},
	}
}

func agentType() *schema.NodeType {
	return &schema.NodeType{
		Name:        models.NodeTypePrefixLangChain + "agent",
		DisplayName: "AI Agent",
		Inputs: []*schema.PortSpec{
			{Name: "main", Type: models.ConnectionTypeMain},
			{Name: "ai_languageModel", Type: models.ConnectionTypeAILanguageModel},
			{Name: "ai_memory", Type: models.ConnectionTypeAIMemory},
			{Name: "ai_tool", Type: models.ConnectionTypeAITool},
			{Name: "ai_outputParser", Type: models.ConnectionTypeAIOutputParser},
		},
		Properties: []*schema.Property{
			{
				Name: "promptType", Type: schema.PropertyTypeOptions, Default: "auto",
				Options: []any{"auto", "define"},
			},
			{
				Name: "text", Type: schema.PropertyTypeString, Required: true,
				DisplayOptions: &schema.DisplayOptions{Show: map[string][]any{"promptType": {"define"}}},
			},
			{Name: "hasOutputParser", Type: schema.PropertyTypeBoolean, Default: false},
		},
	}
}

func lmChatOpenAiType() *schema.NodeType {
	return &schema.NodeType{
		Name:        models.NodeTypePrefixLangChain + "lmChatOpenAi",
		DisplayName: "OpenAI Chat Model",
		Credentials: []*schema.CredentialSpec{{Type: "openAiApi", Required: true}},
		Outputs:     []*schema.PortSpec{{Name: "ai_languageModel", Type: models.ConnectionTypeAILanguageModel}},
		Properties: []*schema.Property{
			{Name: "model", Type: schema.PropertyTypeString, Default: "gpt-4o-mini"},
			{Name: "options", Type: schema.PropertyTypeCollection},
		},
	}
}

func toolHTTPRequestType() *schema.NodeType {
	return &schema.NodeType{
		Name:        models.NodeTypePrefixLangChain + "toolHttpRequest",
		DisplayName: "HTTP Request Tool",
		Outputs:     []*schema.PortSpec{{Name: "ai_tool", Type: models.ConnectionTypeAITool}},
		Properties: []*schema.Property{
			{Name: "toolDescription", Type: schema.PropertyTypeString, Required: true},
			{Name: "url", Type: schema.PropertyTypeString, Required: true},
			{
				Name: "method", Type: schema.PropertyTypeOptions, Default: "GET",
				Options: []any{"DELETE", "GET", "PATCH", "POST", "PUT"},
			},
		},
	}
}

func memoryBufferWindowType() *schema.NodeType {
	return &schema.NodeType{
		Name:        models.NodeTypePrefixLangChain + "memoryBufferWindow",
		DisplayName: "Window Buffer Memory",
		Outputs:     []*schema.PortSpec{{Name: "ai_memory", Type: models.ConnectionTypeAIMemory}},
		Properties: []*schema.Property{
			{Name: "contextWindowLength", Type: schema.PropertyTypeNumber, Default: float64(5)},
		},
	}
}

func outputParserStructuredType() *schema.NodeType {
	return &schema.NodeType{
		Name:        models.NodeTypePrefixLangChain + "outputParserStructured",
		DisplayName: "Structured Output Parser",
		Outputs:     []*schema.PortSpec{{Name: "ai_outputParser", Type: models.ConnectionTypeAIOutputParser}},
		Properties: []*schema.Property{
			{
				Name: "schemaType", Type: schema.PropertyTypeOptions, Default: "fromJson",
				Options: []any{"fromJson", "manual"},
			},
			{
				Name: "jsonSchemaExample", Type: schema.PropertyTypeJSON,
				DisplayOptions: &schema.DisplayOptions{Show: map[string][]any{"schemaType": {"fromJson"}}},
			},
			{
				Name: "inputSchema", Type: schema.PropertyTypeJSON,
				DisplayOptions: &schema.DisplayOptions{Show: map[string][]any{"schemaType": {"manual"}}},
			},
		},
	}
}
