package models

import (
	"strings"

	"github.com/mmynk/catalog/internal/errs"
)

const (
	// DefaultFolderName is the fallback folder every user owns exactly once.
	// It stands for "no folder selected" and is excluded from folder analytics.
	DefaultFolderName = "All"

	// DefaultFolderColor is the color of the All folder.
	DefaultFolderColor = "#9E9E9E"
)

// Folder groups a user's receipts under a colored label.
type Folder struct {
	ID        string
	UserID    string
	Name      string
	Color     string
	CreatedAt int64
}

// IsDefault reports whether f is the user's All folder.
func (f *Folder) IsDefault() bool {
	return f.Name == DefaultFolderName
}

// NewFolder validates a user-created folder. The All folder cannot be created
// through this path.
func NewFolder(userID, name, color string) (*Folder, error) {
	name = strings.TrimSpace(name)
	var ve errs.ValidationErrors
	if userID == "" {
		ve.Add("folder owner is required")
	}
	if name == "" {
		ve.Add("folder name is required")
	}
	if strings.EqualFold(name, DefaultFolderName) {
		ve.Add("folder name %q is reserved", DefaultFolderName)
	}
	if err := ve.Err(); err != nil {
		return nil, err
	}
	if color == "" {
		color = DefaultFolderColor
	}
	return &Folder{UserID: userID, Name: name, Color: color}, nil
}

// DefaultFolder builds the All folder for a user.
func DefaultFolder(userID string) *Folder {
	return &Folder{UserID: userID, Name: DefaultFolderName, Color: DefaultFolderColor}
}

// FolderUpdate lists the mutable fields of a folder. Nil fields are unchanged.
type FolderUpdate struct {
	Name  *string
	Color *string
}

// Apply validates and applies the update.
func (u FolderUpdate) Apply(f *Folder) error {
	if f.IsDefault() {
		return errs.NewValidationError("folder %q cannot be modified", DefaultFolderName)
	}
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return errs.NewValidationError("folder name is required")
		}
		if strings.EqualFold(name, DefaultFolderName) {
			return errs.NewValidationError("folder name %q is reserved", DefaultFolderName)
		}
		f.Name = name
	}
	if u.Color != nil && *u.Color != "" {
		f.Color = *u.Color
	}
	return nil
}
