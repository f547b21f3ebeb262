// Package validate holds the pure per-step rule families that gate wizard
// navigation and, at step 6, the submission itself.
package validate

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"listing-wizard-backend/internal/models"
	"listing-wizard-backend/internal/photos"
)

var v = validator.New()

// Errors is a field->message map. An empty map means the step is valid.
type Errors map[string]string

func (e Errors) Valid() bool {
	return len(e) == 0
}

func (e Errors) merge(other Errors) {
	for field, msg := range other {
		if _, taken := e[field]; !taken {
			e[field] = msg
		}
	}
}

// Notices are informational, non-blocking messages.
type Notices map[string]string

// Step1 checks the listing identity: name and category.
func Step1(d models.Draft) Errors {
	errs := Errors{}
	name := strings.TrimSpace(d.Name)
	if err := v.Var(name, "required,min=10,max=100"); err != nil {
		errs["name"] = "name must be between 10 and 100 characters"
	}
	if !d.PropertyType.Valid() {
		errs["property_type"] = "a property type must be selected"
	}
	return errs
}

// Step2 checks the geolocation pair.
func Step2(d models.Draft) Errors {
	errs := Errors{}
	if d.Geolocation == nil {
		errs["geolocation"] = "a location must be set"
		return errs
	}
	if err := v.Var(d.Geolocation.Latitude, "gte=-90,lte=90"); err != nil {
		errs["latitude"] = "latitude must be between -90 and 90"
	}
	if err := v.Var(d.Geolocation.Longitude, "gte=-180,lte=180"); err != nil {
		errs["longitude"] = "longitude must be between -180 and 180"
	}
	return errs
}

// Step3 has no hard constraint; a listing with zero amenities is allowed.
func Step3(d models.Draft) (Errors, Notices) {
	notices := Notices{}
	if d.Features == 0 {
		notices["features"] = "no amenities selected; listings with amenities attract more guests"
	}
	return Errors{}, notices
}

// Step4 checks the description and the check-in/check-out window.
func Step4(d models.Draft) Errors {
	errs := Errors{}
	desc := strings.TrimSpace(d.Description)
	if err := v.Var(desc, "required,min=50,max=200"); err != nil {
		errs["description"] = "description must be between 50 and 200 characters"
	}
	if err := v.Var(d.CheckIn.Hour, "gte=12,lte=23"); err != nil {
		errs["check_in"] = "check-in hour must be between 12:00 and 23:00"
	}
	if err := v.Var(d.CheckOut.Hour, "gte=6,lte=12"); err != nil {
		errs["check_out"] = "check-out hour must be between 06:00 and 12:00"
	}
	if err := v.Var(d.CheckIn.Minute, "oneof=0 15 30 45"); err != nil {
		errs["check_in"] = "check-in minutes must be a quarter-hour value"
	}
	if err := v.Var(d.CheckOut.Minute, "oneof=0 15 30 45"); err != nil {
		errs["check_out"] = "check-out minutes must be a quarter-hour value"
	}
	if len(errs) == 0 {
		// The gap wraps at midnight: check-out 06:00 with check-in 23:00 is 420 minutes.
		gap := (d.CheckIn.Minutes() - d.CheckOut.Minutes() + 24*60) % (24 * 60)
		if gap < 60 {
			errs["check_in"] = "the gap between check-out and check-in must be at least 60 minutes"
		}
	}
	return errs
}

// Step5 checks the photo count. Fewer than the recommended count is a notice, not
// an error.
func Step5(photoCount int) (Errors, Notices) {
	errs := Errors{}
	notices := Notices{}
	if photoCount < 1 {
		errs["photos"] = "at least one photo is required"
	} else if photoCount < photos.RecommendedPhotos {
		notices["photos"] = fmt.Sprintf("at least %d photos are recommended", photos.RecommendedPhotos)
	}
	if photoCount > photos.MaxPhotoCount {
		errs["photos"] = fmt.Sprintf("no more than %d photos are allowed", photos.MaxPhotoCount)
	}
	return errs, notices
}

// ForStep runs the validator family for one step. Per-step gates are advisory UX;
// All is what actually gates the network call.
func ForStep(step int, d models.Draft, photoCount int) (Errors, Notices) {
	switch step {
	case 1:
		return Step1(d), nil
	case 2:
		return Step2(d), nil
	case 3:
		return Step3(d)
	case 4:
		return Step4(d), nil
	case 5:
		return Step5(photoCount)
	default:
		return Errors{}, nil
	}
}

// All re-runs the union of every prior step's rules against the final snapshot.
// This is the authoritative pre-submit check.
func All(d models.Draft, photoCount int) Errors {
	errs := Step1(d)
	errs.merge(Step2(d))
	errs.merge(Step4(d))
	step5, _ := Step5(photoCount)
	errs.merge(step5)
	return errs
}
