package generation

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
)

// Mode selects how the conversation is assembled.
type Mode string

const (
	// ModeStateless sends only the request text, without history.
	ModeStateless Mode = "stateless"
	// ModeStateful replays the stored turns of the prompt.
	ModeStateful Mode = "stateful"
)

func (m Mode) Valid() bool {
	return m == ModeStateless || m == ModeStateful
}

// Turn is a stored conversation message as the assembler sees it.
type Turn struct {
	Role string
	Text string
}

// Attachment is a file to inline into the request. Open is called once.
type Attachment struct {
	Name     string
	MimeType string
	Open     func() (io.ReadCloser, error)
}

// AssembleInput carries everything the assembler may use.
type AssembleInput struct {
	Mode        Mode
	Content     string
	Turns       []Turn
	Attachments []Attachment
}

// Assemble converts history and attachments into the provider contents list.
// Stateless mode sends Content alone. Stateful mode sends the stored turns
// only and appends every attachment as an inline_data part of the last turn.
func Assemble(ctx context.Context, in AssembleInput) ([]Content, error) {
	if in.Mode == ModeStateless {
		return []Content{{Parts: []Part{TextPart(in.Content)}}}, nil
	}

	contents := make([]Content, 0, len(in.Turns))
	for _, turn := range in.Turns {
		contents = append(contents, Content{
			Role:  turn.Role,
			Parts: []Part{TextPart(turn.Text)},
		})
	}

	if len(contents) == 0 {
		if len(in.Attachments) > 0 {
			return nil, fail(ctx, KindEmptyConversation, "cannot attach files to an empty conversation", nil, "4e8b2d7a-c1f3-4a96-8e05-b9d2f7c3a1e6")
		}
		return nil, fail(ctx, KindEmptyConversation, "conversation has no turns", nil, "7c2e9a4f-3b1d-4f86-a0e7-5d8c1b6f2e93")
	}
	if len(in.Attachments) == 0 {
		return contents, nil
	}

	parts, err := InlineParts(ctx, in.Attachments)
	if err != nil {
		return nil, err
	}
	last := &contents[len(contents)-1]
	last.Parts = append(last.Parts, parts...)
	return contents, nil
}

// InlineParts reads every attachment fully and encodes it as an inline_data part.
func InlineParts(ctx context.Context, attachments []Attachment) ([]Part, error) {
	parts := make([]Part, 0, len(attachments))
	for _, attachment := range attachments {
		data, err := readAttachment(attachment)
		if err != nil {
			return nil, fail(ctx, KindFileReadError, fmt.Sprintf("failed to read file %q", attachment.Name), err, "d91f4c2e-7b6a-4e38-a5c0-2e8f1b9d7a43")
		}
		parts = append(parts, Part{InlineData: &InlineData{
			MimeType: attachment.MimeType,
			Data:     base64.StdEncoding.EncodeToString(data),
		}})
	}
	return parts, nil
}

func readAttachment(attachment Attachment) ([]byte, error) {
	if attachment.Open == nil {
		return nil, fmt.Errorf("no reader for %q", attachment.Name)
	}
	rc, err := attachment.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
