package generation

// BuildRequest composes the outbound payload. It has no side effects; the
// generation config is present only when schema is non-nil.
func BuildRequest(systemInstruction string, contents []Content, schema *ResponseSchema) *GenerateContentRequest {
	req := &GenerateContentRequest{
		SystemInstruction: &Content{Parts: []Part{TextPart(systemInstruction)}},
		Contents:          contents,
	}
	if schema != nil {
		req.GenerationConfig = &GenerationConfig{
			ResponseMimeType: ResponseMimeTypeJSON,
			ResponseSchema:   schema,
		}
	}
	return req
}
