package formdef

import (
	"github.com/goliatone/go-formstate/pkg/dom"
	"github.com/goliatone/go-formstate/pkg/dom/memdom"
)

var valueAsAttrs = map[string]string{
	"date":   dom.AttrValueAsDate,
	"number": dom.AttrValueAsNumber,
	"bool":   dom.AttrValueAsBool,
}

// Build creates a live in-memory form from the definition.
func (d Definition) Build() *memdom.Form {
	form := memdom.NewForm()
	for _, ctrl := range d.Controls {
		form.Append(ctrl.element())
	}
	return form
}

func (c Control) element() *memdom.Element {
	var opts []memdom.ElementOption
	if c.Value != "" {
		opts = append(opts, memdom.WithValue(c.Value))
	}
	if c.Checked {
		opts = append(opts, memdom.WithChecked(true))
	}
	if c.Indeterminate {
		opts = append(opts, memdom.WithIndeterminate())
	}
	if c.Disabled {
		opts = append(opts, memdom.WithDisabled())
	}
	if c.Required {
		opts = append(opts, memdom.WithRequired())
	}
	if c.Pattern != "" {
		opts = append(opts, memdom.WithPattern(c.Pattern))
	}
	if c.Min != "" {
		opts = append(opts, memdom.WithMin(c.Min))
	}
	if c.Max != "" {
		opts = append(opts, memdom.WithMax(c.Max))
	}
	if c.MinLength != nil {
		opts = append(opts, memdom.WithMinLength(*c.MinLength))
	}
	if c.MaxLength != nil {
		opts = append(opts, memdom.WithMaxLength(*c.MaxLength))
	}
	if len(c.Rules) > 0 {
		opts = append(opts, memdom.WithRules(c.Rules...))
	}
	if c.Label != "" {
		opts = append(opts, memdom.WithAttr(LabelAttr, c.Label))
	}
	if c.ErrorMessage != "" {
		opts = append(opts, memdom.WithAttr(dom.AttrErrorMessage, c.ErrorMessage))
	}
	if attr, ok := valueAsAttrs[c.ValueAs]; ok {
		opts = append(opts, memdom.WithAttr(attr, ""))
	}
	for name, value := range c.Attrs {
		opts = append(opts, memdom.WithAttr(name, value))
	}

	switch dom.ParseControlType(c.Type) {
	case dom.TypeSelectOne:
		return memdom.Select(c.Name, false, c.Options, opts...)
	case dom.TypeSelectMultiple:
		return memdom.Select(c.Name, true, c.Options, opts...)
	case dom.TypeButton:
		return memdom.Button(c.Name, c.Type, opts...)
	case dom.TypeText:
		if c.Type == "textarea" {
			return memdom.TextArea(c.Name, opts...)
		}
	}
	return memdom.Input(c.Name, c.Type, opts...)
}
