package a2a

/*
Part is a discriminated union over Text, File and Data parts. We keep it
simple by embedding all optional fields in a single struct, with Kind
telling the reader which one is populated.
*/
type Part struct {
	Kind PartKind `json:"kind"`

	// Exactly one of the following should be populated depending on Kind.
	Text string         `json:"text,omitempty"`
	File *FilePart      `json:"file,omitempty"`
	Data map[string]any `json:"data,omitempty"`

	Metadata map[string]any `json:"metadata,omitempty"`
}

// PartKind is the discriminator for a Part union.
type PartKind string

const (
	PartKindText PartKind = "text"
	PartKindFile PartKind = "file"
	PartKindData PartKind = "data"
)

type FilePart struct {
	Name     *string `json:"name,omitempty"`
	MimeType *string `json:"mimeType,omitempty"`
	Bytes    string  `json:"bytes,omitempty"`
	URI      string  `json:"uri,omitempty"`
}

func NewTextPart(text string) Part {
	return Part{
		Kind: PartKindText,
		Text: text,
	}
}

func NewDataPart(data map[string]any) Part {
	return Part{
		Kind: PartKindData,
		Data: data,
	}
}

/*
IsText reports whether the part carries text. Peers that leave out the
kind discriminator still count when only the text field is set; explicit
file and data parts never do.
*/
func (part Part) IsText() bool {
	switch part.Kind {
	case PartKindText:
		return true
	case "":
		return part.Text != "" && part.File == nil && part.Data == nil
	}

	return false
}
