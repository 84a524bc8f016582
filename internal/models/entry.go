// Package models contains the chat entry types shared by the transcript,
// renderer and session packages, plus the request and response shapes
// exchanged with Gemini backends.
package models

import (
	"errors"
	"fmt"
)

// Role identifies who authored a chat entry.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleModel
}

// Kind discriminates the payload carried by an Entry.
type Kind string

const (
	KindText   Kind = "text"
	KindImage  Kind = "image"
	KindButton Kind = "button"
)

// Image is one picture inside an image entry.
type Image struct {
	Src   string `json:"src"`
	Alt   string `json:"alt"`
	Label string `json:"label,omitempty"`
}

// Entry is one item of a chat transcript. Exactly one payload is
// meaningful, selected by Kind: Content for text, Images for image,
// Label for button. Button behaviour is bound elsewhere by entry ID.
type Entry struct {
	ID      string  `json:"id"`
	Role    Role    `json:"role"`
	Kind    Kind    `json:"type"`
	Content string  `json:"content,omitempty"`
	Images  []Image `json:"images,omitempty"`
	Label   string  `json:"label,omitempty"`
}

// Validation errors returned by Entry.Validate.
var (
	ErrMissingID      = errors.New("entry has no id")
	ErrUnknownRole    = errors.New("entry has unknown role")
	ErrUnknownKind    = errors.New("entry has unknown kind")
	ErrNoImages       = errors.New("image entry has no images")
	ErrEmptyImageSrc  = errors.New("image has empty source")
	ErrEmptyButtonTxt = errors.New("button entry has empty label")
)

// NewText creates a text entry.
func NewText(id string, role Role, content string) Entry {
	return Entry{ID: id, Role: role, Kind: KindText, Content: content}
}

// NewImages creates an image entry. The slice is copied.
func NewImages(id string, role Role, images ...Image) Entry {
	imgs := make([]Image, len(images))
	copy(imgs, images)
	return Entry{ID: id, Role: role, Kind: KindImage, Images: imgs}
}

// NewButton creates a call-to-action entry.
func NewButton(id string, role Role, label string) Entry {
	return Entry{ID: id, Role: role, Kind: KindButton, Label: label}
}

// Validate checks that the entry carries the payload its kind requires.
func (e Entry) Validate() error {
	if e.ID == "" {
		return ErrMissingID
	}
	if !e.Role.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownRole, e.Role)
	}
	switch e.Kind {
	case KindText:
		return nil
	case KindImage:
		if len(e.Images) == 0 {
			return ErrNoImages
		}
		for i, img := range e.Images {
			if img.Src == "" {
				return fmt.Errorf("%w (index %d)", ErrEmptyImageSrc, i)
			}
		}
		return nil
	case KindButton:
		if e.Label == "" {
			return ErrEmptyButtonTxt
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, e.Kind)
	}
}

// Clone returns a copy that shares no mutable state with e.
func (e Entry) Clone() Entry {
	if e.Images != nil {
		imgs := make([]Image, len(e.Images))
		copy(imgs, e.Images)
		e.Images = imgs
	}
	return e
}
