package browser

import (
	"fmt"
	"strings"
)

// fieldKind is how a form element is driven, read from the live document.
type fieldKind int

const (
	fieldText fieldKind = iota
	fieldToggle
	fieldSelect
)

func (k fieldKind) String() string {
	switch k {
	case fieldToggle:
		return "toggle"
	case fieldSelect:
		return "select"
	default:
		return "text"
	}
}

const describeElementJS = `el => ({ tag: el.tagName.toLowerCase(), type: (el.type || '').toLowerCase() })`

// inspectField reads tag name and input type from the element.
func inspectField(el Element) (fieldKind, error) {
	raw, err := el.Evaluate(describeElementJS)
	if err != nil {
		return fieldText, err
	}
	desc, ok := raw.(map[string]any)
	if !ok {
		return fieldText, fmt.Errorf("unexpected element description %T", raw)
	}
	tag, _ := desc["tag"].(string)
	inputType, _ := desc["type"].(string)

	switch {
	case tag == "select":
		return fieldSelect, nil
	case inputType == "checkbox" || inputType == "radio":
		return fieldToggle, nil
	default:
		return fieldText, nil
	}
}

// truthy reports whether a form value means "checked".
func truthy(value string) bool {
	switch strings.ToLower(value) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// applyField sets el to value according to its live kind. Toggles are set
// absolutely, never flipped.
func applyField(el Element, value string) (fieldKind, error) {
	kind, err := inspectField(el)
	if err != nil {
		return kind, fmt.Errorf("inspect element: %w", err)
	}
	switch kind {
	case fieldSelect:
		err = el.SelectOption(value)
	case fieldToggle:
		err = el.SetChecked(truthy(value))
	default:
		err = el.Fill(value)
	}
	return kind, err
}
