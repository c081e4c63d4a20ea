package referenceframe

import (
	"fmt"

	"github.com/pkg/errors"
)

// ParseError reports a description that cannot become a model: malformed markup, an
// unresolved joint parent, or a link claimed by more than one joint. A ParseError is
// fatal to the build that produced it.
type ParseError struct {
	Reason  string
	Element string
	Err     error
}

func (e *ParseError) Error() string {
	msg := "parse error: " + e.Reason
	if e.Element != "" {
		msg = fmt.Sprintf("parse error in %q: %s", e.Element, e.Reason)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError wraps an underlying failure to read the description.
func NewParseError(reason string, err error) error {
	return &ParseError{Reason: reason, Err: err}
}

// NewInvalidElementError reports a malformed attribute or element.
func NewInvalidElementError(element, reason string) error {
	return &ParseError{Reason: reason, Element: element}
}

// NewUnresolvedParentError is returned when a joint's parent link is never attached to
// the tree, because it is not declared or because the joints form a cycle.
func NewUnresolvedParentError(joint, parent string) error {
	return &ParseError{Reason: "unresolved parent", Element: joint, Err: errors.Errorf("parent link %q is not attached", parent)}
}

// NewMultipleParentsError is returned when more than one joint names the same child link.
func NewMultipleParentsError(link string, joints ...string) error {
	return &ParseError{Reason: "multiple parents", Element: link, Err: errors.Errorf("claimed by joints %q", joints)}
}

// NewUnknownChildLinkError is returned when a joint's child link is not declared.
func NewUnknownChildLinkError(joint, child string) error {
	return &ParseError{Reason: "unknown child link", Element: joint, Err: errors.Errorf("link %q is not declared", child)}
}

// NewDuplicateNameError is returned when two joints or two links share a name.
func NewDuplicateNameError(kind, name string) error {
	return &ParseError{Reason: "duplicate " + kind + " name", Element: name}
}

// IsParseError reports whether err is or wraps a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// AssetLoadError reports a mesh that could not be fetched or decoded for one link. The
// link is rendered without a visual; the rest of the model builds normally.
type AssetLoadError struct {
	Link     string
	Filename string
	Err      error
}

func (e *AssetLoadError) Error() string {
	return fmt.Sprintf("failed to load mesh %q for link %q: %v", e.Filename, e.Link, e.Err)
}

func (e *AssetLoadError) Unwrap() error {
	return e.Err
}

// NewAssetLoadError attributes a mesh load failure to a link.
func NewAssetLoadError(link, filename string, err error) error {
	return &AssetLoadError{Link: link, Filename: filename, Err: err}
}
