package a2a

import "github.com/google/uuid"

/*
Artifact is the output of a task.
*/
type Artifact struct {
	ArtifactID  string         `json:"artifactId"`
	Name        *string        `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	Parts       []Part         `json:"parts"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

func NewArtifact(name string, parts ...Part) Artifact {
	return Artifact{
		ArtifactID: uuid.NewString(),
		Name:       &name,
		Parts:      parts,
	}
}

func NewTextArtifact(name string, text string) Artifact {
	return NewArtifact(name, NewTextPart(text))
}
