package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/invopop/jsonschema"
)

var systemToolPrompt = `
You have access to the following tools. Each tool has specific capabilities and parameters that you must understand to use them correctly.
<tools>
{{tools}}
</tools>
Tools Usage Instructions
When using tools, follow these guidelines:

1.Tool Selection: Choose the most appropriate tool based on the user's request.
2.Parameter Formatting: When calling a tool, ensure all required parameters are provided in the correct format.
3.Tool Invocation Format: Use the following format to invoke a tool and do not write a final answer in the same message:

<tool_call>
  <tool_name>name_of_the_tool</tool_name>
  <parameters>
    {"param1": "value1", "param2": "value2"}
  </parameters>
</tool_call>

4.Response Handling: Tool results are returned to you inside <tool_result></tool_result> tags. Incorporate them into your final answer.
5.Error Handling: If a tool call fails, try an alternative approach or answer with the information you already have.
6.Multiple Tool Calls: You can make multiple tool calls in one message or in sequence when necessary.
`

var outputContractPrompt = `
You must deliver your final answer as a single JSON document that matches this JSON schema:
<output_schema>
{{output_schema}}
</output_schema>
Wrap the final JSON document in <response></response> tags and write nothing outside the tags.
`

type ToolDescriptor struct {
	Name        string          `json:"name"`
	ServerName  string          `json:"server,omitempty"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
	Inbuilt     bool            `json:"inbuilt"`
}

// ToolCall represents a parsed tool call from the model output
type ToolCall struct {
	ToolName   string
	Parameters map[string]interface{}
}

type ToolResult struct {
	ToolName string `json:"tool_name"`
	Output   string `json:"output"`
}

func GetToolPrompt(tools []ToolDescriptor) string {
	var toolsStr = []byte("[]")
	if len(tools) > 0 {
		b, err := json.Marshal(tools)
		if err == nil {
			toolsStr = b
		}
	}
	return ReplaceLabels(systemToolPrompt, map[string]string{"tools": string(toolsStr)})
}

// GetOutputPrompt describes the response contract for the output type of v.
func GetOutputPrompt(v any) (string, error) {
	schema, err := StructToJSONSchema(v)
	if err != nil {
		return "", err
	}
	return ReplaceLabels(outputContractPrompt, map[string]string{"output_schema": string(schema)}), nil
}

func ReplaceLabels(template string, replacements map[string]string) string {
	for key, value := range replacements {
		placeholder := "{{" + key + "}}"
		template = strings.ReplaceAll(template, placeholder, value)
	}
	return template
}

var toolPattern = `(?s)<tool_call>\s*<tool_name>(.*?)</tool_name>\s*<parameters>\s*(.*?)\s*</parameters>\s*</tool_call>`
var toolRegEx = regexp.MustCompile(toolPattern)

// ExtractToolCalls extracts tool calls from the given content
func ExtractToolCalls(content string) ([]ToolCall, error) {
	var toolCalls []ToolCall

	matches := toolRegEx.FindAllStringSubmatch(content, -1)
	for _, match := range matches {
		if len(match) != 3 {
			continue
		}

		toolName := strings.TrimSpace(match[1])
		paramsJSON := strings.TrimSpace(match[2])

		params := map[string]interface{}{}
		if paramsJSON != "" {
			if err := json.Unmarshal([]byte(paramsJSON), &params); err != nil {
				return nil, fmt.Errorf("failed to parse parameters for tool %s: %w", toolName, err)
			}
		}

		toolCalls = append(toolCalls, ToolCall{
			ToolName:   toolName,
			Parameters: params,
		})
	}

	return toolCalls, nil
}

// extractTagContent returns the inner text of every <tag> element joined by
// newlines, and whether any was found.
func extractTagContent(text, tag string) (string, bool) {
	var results []string
	openTag := fmt.Sprintf("<%s>", tag)
	closeTag := fmt.Sprintf("</%s>", tag)

	for {
		start := strings.Index(text, openTag)
		if start == -1 {
			break
		}
		end := strings.Index(text[start:], closeTag)
		if end == -1 {
			break
		}
		results = append(results, text[start+len(openTag):start+end])
		text = text[start+end+len(closeTag):]
	}
	return strings.Join(results, "\n"), len(results) > 0
}

var schemaReflector = &jsonschema.Reflector{
	DoNotReference: true,
	ExpandedStruct: true,
}

// valueReflector handles list and scalar outputs, which have no struct
// definition to expand.
var valueReflector = &jsonschema.Reflector{
	DoNotReference: true,
}

func StructToJSONSchema(v interface{}) ([]byte, error) {
	t := reflect.TypeOf(v)
	if t == nil {
		return nil, errors.New("cannot reflect a nil value")
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	reflector := schemaReflector
	if t.Kind() != reflect.Struct {
		reflector = valueReflector
	}
	return json.MarshalIndent(reflector.ReflectFromType(t), "", "  ")
}

// GetSchema reflects the parameter schema of a tool input struct.
func GetSchema(obj interface{}) (interface{}, error) {
	if reflect.ValueOf(obj).Kind() != reflect.Ptr {
		return nil, errors.New("object must be a pointer")
	}

	pointsToValue := reflect.Indirect(reflect.ValueOf(obj))
	if pointsToValue.Kind() == reflect.Slice {
		return nil, errors.New("slice not supported as an input")
	}
	return schemaReflector.Reflect(obj), nil
}
