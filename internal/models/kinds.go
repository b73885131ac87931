// internal/models/kinds.go
package models

import "fmt"

// FormKind discriminates the three intake forms. The raw values double as
// the `origin` query parameter carried through the sign-in redirect.
type FormKind string

const (
	KindRequestForm FormKind = "requestForm"
	KindRepairForm  FormKind = "repairForm"
	KindSellForm    FormKind = "sellForm"
)

// PagePath returns the canonical page path the form lives on.
func (k FormKind) PagePath() string {
	switch k {
	case KindRequestForm:
		return "/richiesta-personalizzata"
	case KindRepairForm:
		return "/ripara"
	case KindSellForm:
		return "/vendi"
	}
	return ""
}

func (k FormKind) Valid() bool {
	switch k {
	case KindRequestForm, KindRepairForm, KindSellForm:
		return true
	}
	return false
}

// ParseFormKind validates a raw kind tag coming from a URL or payload.
func ParseFormKind(raw string) (FormKind, error) {
	k := FormKind(raw)
	if !k.Valid() {
		return "", fmt.Errorf("unknown form kind: %q", raw)
	}
	return k, nil
}

// AllFormKinds lists every intake form, in intake-menu order.
func AllFormKinds() []FormKind {
	return []FormKind{KindRequestForm, KindRepairForm, KindSellForm}
}
