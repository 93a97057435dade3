// Package prompts holds the role instructions of the content agents. The
// output contract is appended by the runner, so these only describe the task
// and the input format.
package prompts

import (
	"polycode/content-agent/core"
)

var fromFileTemplate = `Your job is to repurpose one or more texts into a new text depending on the user's request. Here are the rules:

## 1. GENERAL RULES
- Always use the language of the input texts for creating the output text unless told otherwise.
- Pay attention to additional user instructions on style, format, length, etc. of the output to generate. If no additional instructions are given, infer from the input texts and common sense.

## 2. FORMATS
- You will receive input as a JSON object with a "user_prompt" string and an "input_texts" list of InputText objects in the following format:
` + "```json\n{{input_text_schema}}\n```\n"

var outlineTemplate = `Your job is to create an outline for a new text based on one or more input texts and the user's request. Here are the rules:

## 1. GENERAL RULES
- Always use the language of the input texts for the outline unless told otherwise.
- Every paragraph of the outline has an optional subheadline and a text that condenses what the final paragraph will say in one or two sentences.
- Order the paragraphs the way they should appear in the final text.

## 2. FORMATS
- You will receive input as a JSON object with a "user_prompt" string and an "input_texts" list of InputText objects in the following format:
` + "```json\n{{input_text_schema}}\n```\n"

var fromOutlineTemplate = `Your job is to write a new text from an outline depending on the user's request. Here are the rules:

## 1. GENERAL RULES
- Always use the language of the outline for the output text unless told otherwise.
- Follow the order and the subheadlines of the outline. Expand every outline paragraph into full content.
- Pay attention to additional user instructions on style, format, length, etc. of the output to generate.

## 2. FORMATS
- You will receive input as a JSON object with a "user_prompt" string and an "outline" object in the following format:
` + "```json\n{{outline_schema}}\n```\n"

var fromWebTemplate = `Your job is to do a web search with the available tools, visit a given number of search results, scrape the content and repurpose it into a new text based on further instructions by the user. Here are the rules:

## 1. GENERAL RULES
- Always use the tools to search the web for the search terms given by the user before writing.
- Use the language requested by the user for the output text even if the search results are in a different language.

## 2. FORMATS
- You will receive input as a plain instruction naming the search terms and what to write.
`

var webReviewsTemplate = `Your job is to do a web search with the available tools, visit a given number of search results, scrape the content and parse it into the specified output format.

## 1. GENERAL RULES
- Always use the tools to do a web search matching the user request.
- For the output texts always use the language specified in the user prompt even if the web search results are in a different language.

## 2. FORMATS
- You will receive input in the form of a simple string written by the user specifying the subject to search for.
- Every review becomes one InputText object; put the review URL into metadata.source.
`

func FromFile() string {
	return withSchema(fromFileTemplate, "input_text_schema", &core.InputText{})
}

func Outline() string {
	return withSchema(outlineTemplate, "input_text_schema", &core.InputText{})
}

func FromFileWithOutline() string {
	return withSchema(fromOutlineTemplate, "outline_schema", &core.Outline{})
}

func FromWeb() string {
	return fromWebTemplate
}

func WebReviews() string {
	return webReviewsTemplate
}

// WebReviewsRequest is the instruction sent for one product title.
func WebReviewsRequest(productTitle string) string {
	return "Return a list of reviews for the product: " + productTitle + ". Each review should be a JSON object matching the InputText schema."
}

// FromWebRequest folds search terms and the user instruction into one
// raw instruction.
func FromWebRequest(searchTerms, userPrompt string) string {
	return "Search terms: " + searchTerms + "\n\n" + userPrompt
}

func withSchema(template, label string, v any) string {
	schema, err := core.StructToJSONSchema(v)
	if err != nil {
		panic(err)
	}
	return core.ReplaceLabels(template, map[string]string{label: string(schema)})
}
