package domain

import (
	"regexp"
	"strings"
	"time"
)

// StoreType tells whether a business sells from a physical location.
type StoreType string

const (
	StorePhysical StoreType = "fisica"
	StoreVirtual  StoreType = "virtual"
)

// Placeholders sent in place of address and hours for online-only stores.
const (
	VirtualAddress = "Sin tienda física (virtual)"
	VirtualHours   = "Atención online"
)

// Normalize maps an empty or unknown value to a physical store.
func (t StoreType) Normalize() StoreType {
	if t == StoreVirtual {
		return StoreVirtual
	}
	return StorePhysical
}

func ParseStoreType(s string) (StoreType, error) {
	switch StoreType(strings.ToLower(strings.TrimSpace(s))) {
	case StorePhysical, "physical":
		return StorePhysical, nil
	case StoreVirtual:
		return StoreVirtual, nil
	}
	return "", NewValidationError("tipo_tienda", "store type must be fisica or virtual")
}

const clockLayout = "15:04"

var hoursRange = regexp.MustCompile(`^\s*(\d{2}:\d{2})\s*-\s*(\d{2}:\d{2})\s*$`)

var (
	virtualAddressPattern = regexp.MustCompile(`(?i)virtual|sin\s*tienda\s*f[ií]sica`)
	virtualHoursPattern   = regexp.MustCompile(`(?i)atenci[oó]n\s*online`)
)

// Hours is an opening range in HH:MM form.
type Hours struct {
	Opens  string `json:"horario_inicio,omitempty"`
	Closes string `json:"horario_fin,omitempty"`
}

func (h Hours) String() string {
	return h.Opens + " - " + h.Closes
}

func (h Hours) IsZero() bool {
	return strings.TrimSpace(h.Opens) == "" && strings.TrimSpace(h.Closes) == ""
}

// Validate requires both ends to be valid clock times with the closing time
// strictly after the opening time.
func (h Hours) Validate() error {
	opens, err1 := time.Parse(clockLayout, strings.TrimSpace(h.Opens))
	closes, err2 := time.Parse(clockLayout, strings.TrimSpace(h.Closes))
	if err1 != nil || err2 != nil {
		return NewValidationError("horario", "select a valid opening hours range")
	}
	if !closes.After(opens) {
		return NewValidationError("horario_fin", "closing time must be later than opening time")
	}
	return nil
}

// ParseHours reads "HH:MM - HH:MM".
func ParseHours(s string) (Hours, bool) {
	m := hoursRange.FindStringSubmatch(s)
	if m == nil {
		return Hours{}, false
	}
	return Hours{Opens: m[1], Closes: m[2]}, true
}

func looksVirtual(address, hours string) bool {
	return virtualAddressPattern.MatchString(address) || virtualHoursPattern.MatchString(hours)
}

// ValidateStore checks the physical-store rules: a valid hours range and a
// non-empty address. Virtual stores always pass.
func ValidateStore(t StoreType, address string, h Hours) error {
	if t.Normalize() == StoreVirtual {
		return nil
	}
	if err := h.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(address) == "" {
		return NewValidationError("direccion", "an address is required for a physical store")
	}
	return nil
}

// StoreLocation returns the address and hours to send for a store. Virtual
// stores always send the placeholders, whatever was typed before.
func StoreLocation(t StoreType, address string, h Hours) (string, string) {
	if t.Normalize() == StoreVirtual {
		return VirtualAddress, VirtualHours
	}
	return strings.TrimSpace(address), h.String()
}
