package generation

// GenerateRequest is the body of both generation endpoints. Files travel as
// multipart parts named files[] and are read separately.
type GenerateRequest struct {
	Content string `json:"content" form:"content"`
	Debug   bool   `json:"debug" form:"debug"`
}

// EnqueueRequest is the body of POST /v1/prompts/{prompt_id}/jobs. FileIDs
// reference files already stored for the prompt.
type EnqueueRequest struct {
	Content  string   `json:"content" binding:"max=10000"`
	UseChats bool     `json:"use_chats"`
	FileIDs  []string `json:"file_ids" binding:"max=20"`
}
