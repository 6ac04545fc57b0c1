package browser

// collapse returns the only value when there is exactly one and the whole
// list otherwise. A zero-length input yields an empty, non-nil list.
func collapse(values []string) any {
	if len(values) == 1 {
		return values[0]
	}
	if values == nil {
		return []string{}
	}
	return values
}

// extractTexts reads the inner text of every element matching selector.
func extractTexts(page Page, selector string) (any, error) {
	elements, err := page.QuerySelectorAll(selector)
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, len(elements))
	for _, el := range elements {
		text, err := el.InnerText()
		if err != nil {
			return nil, err
		}
		texts = append(texts, text)
	}
	return collapse(texts), nil
}

// extractAttributes reads attribute from every element matching selector,
// dropping missing or empty values before collapsing.
func extractAttributes(page Page, selector, attribute string) (any, error) {
	elements, err := page.QuerySelectorAll(selector)
	if err != nil {
		return nil, err
	}
	values := make([]string, 0, len(elements))
	for _, el := range elements {
		v, err := el.GetAttribute(attribute)
		if err != nil {
			return nil, err
		}
		if v != "" {
			values = append(values, v)
		}
	}
	return collapse(values), nil
}
