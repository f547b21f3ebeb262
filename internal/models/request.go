package models

// UpdateDraftRequest is a partial update; only non-nil fields are applied.
type UpdateDraftRequest struct {
	Name         *string      `json:"name,omitempty"`
	PropertyType *int         `json:"property_type,omitempty"`
	Geolocation  *Geolocation `json:"geolocation,omitempty"`
	Features     *uint32      `json:"features,omitempty"`
	Description  *string      `json:"description,omitempty"`
	CheckIn      *TimeOfDay   `json:"check_in,omitempty"`
	CheckOut     *TimeOfDay   `json:"check_out,omitempty"`
}

type GoToRequest struct {
	Step int `json:"step" binding:"required,min=1,max=6"`
}
