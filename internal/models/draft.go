package models

import "fmt"

// PropertyType is the listing category. Zero means "not chosen yet".
type PropertyType int

const (
	PropertyTypeHotel PropertyType = iota + 1
	PropertyTypeHostel
	PropertyTypeVilla
	PropertyTypeApartment
	PropertyTypeCottage
)

func (p PropertyType) Valid() bool {
	return p >= PropertyTypeHotel && p <= PropertyTypeCottage
}

func (p PropertyType) String() string {
	switch p {
	case PropertyTypeHotel:
		return "hotel"
	case PropertyTypeHostel:
		return "hostel"
	case PropertyTypeVilla:
		return "villa"
	case PropertyTypeApartment:
		return "apartment"
	case PropertyTypeCottage:
		return "cottage"
	default:
		return "unknown"
	}
}

// Feature bits for the amenities bitmask.
const (
	FeatureWiFi uint32 = 1 << iota
	FeatureParking
	FeaturePool
	FeatureAirConditioning
	FeatureKitchen
	FeatureWasher
	FeaturePetsAllowed
	FeatureBreakfast
)

// FeatureNames maps each defined bit to its display name.
var FeatureNames = map[uint32]string{
	FeatureWiFi:            "wifi",
	FeatureParking:         "parking",
	FeaturePool:            "pool",
	FeatureAirConditioning: "air_conditioning",
	FeatureKitchen:         "kitchen",
	FeatureWasher:          "washer",
	FeaturePetsAllowed:     "pets_allowed",
	FeatureBreakfast:       "breakfast",
}

// TimeOfDay is a wall-clock time with quarter-hour resolution.
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// Wire renders the time as the fixed-width HH:MM:SS string the listing API expects.
func (t TimeOfDay) Wire() string {
	return fmt.Sprintf("%02d:%02d:00", t.Hour, t.Minute)
}

// Geolocation is a latitude/longitude pair.
type Geolocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Wizard step bounds and per-field defaults.
const (
	StepFirst = 1
	StepLast  = 6
)

var (
	DefaultCheckIn  = TimeOfDay{Hour: 15, Minute: 0}
	DefaultCheckOut = TimeOfDay{Hour: 11, Minute: 0}
)

// Draft is the in-progress listing held by the wizard. It is mutated only through
// WizardState setters and persisted field-for-field by the draft store.
type Draft struct {
	Step         int          `json:"step"`
	Name         string       `json:"name"`
	PropertyType PropertyType `json:"property_type"`
	Geolocation  *Geolocation `json:"geolocation,omitempty"`
	Features     uint32       `json:"features"`
	Description  string       `json:"description"`
	CheckIn      TimeOfDay    `json:"check_in"`
	CheckOut     TimeOfDay    `json:"check_out"`
	OwnerID      string       `json:"owner_id"`
}

// NewDraft returns an empty draft for the given owner with documented defaults.
func NewDraft(ownerID string) Draft {
	return Draft{
		Step:     StepFirst,
		CheckIn:  DefaultCheckIn,
		CheckOut: DefaultCheckOut,
		OwnerID:  ownerID,
	}
}

// ClampStep forces n into the valid step range. Used when restoring persisted state.
func ClampStep(n int) int {
	if n < StepFirst {
		return StepFirst
	}
	if n > StepLast {
		return StepLast
	}
	return n
}
