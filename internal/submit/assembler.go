// Package submit assembles the final creation payload and drives the listing call.
package submit

import (
	"context"
	"errors"
	"strings"

	"listing-wizard-backend/internal/listings"
	"listing-wizard-backend/internal/logging"
	"listing-wizard-backend/internal/models"
	"listing-wizard-backend/internal/photos"
	"listing-wizard-backend/internal/validate"
	"listing-wizard-backend/internal/wizard"
)

// fieldSteps routes each backend field name to the wizard step that owns it, so a
// rejection can send the user straight to the offending screen.
var fieldSteps = map[string]int{
	"name":         1,
	"propertytype": 1,
	"latitude":     2,
	"longitude":    2,
	"location":     2,
	"geolocation":  2,
	"features":     3,
	"description":  4,
	"checkin":      4,
	"checkout":     4,
	"checkintime":  4,
	"checkouttime": 4,
	"photos":       5,
}

// Error describes a failed submission. Exactly one of Validation or Fields is set
// for structured failures; Generic marks a rejection with no structured body. The
// draft is preserved in every failure case.
type Error struct {
	Validation validate.Errors
	Fields     map[string][]string
	Steps      map[string]int
	Generic    bool
	Err        error
}

func (e *Error) Error() string {
	switch {
	case len(e.Validation) > 0:
		return "draft failed validation"
	case len(e.Fields) > 0:
		return "listing rejected by backend"
	default:
		return "listing submission failed"
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Assembler builds the wire payload from the draft and photo collection and owns
// the submission flow.
type Assembler struct {
	client *listings.Client
}

func NewAssembler(client *listings.Client) *Assembler {
	return &Assembler{client: client}
}

// Build produces the creation payload: trimmed strings, fixed-width times, the raw
// feature bitmask, split coordinates, and every encoded photo in display order.
func Build(d models.Draft, encodedPhotos []string) listings.CreateListingRequest {
	payload := listings.CreateListingRequest{
		Name:         strings.TrimSpace(d.Name),
		PropertyType: int(d.PropertyType),
		Features:     d.Features,
		Description:  strings.TrimSpace(d.Description),
		CheckInTime:  d.CheckIn.Wire(),
		CheckOutTime: d.CheckOut.Wire(),
		OwnerID:      d.OwnerID,
		Photos:       encodedPhotos,
	}
	if d.Geolocation != nil {
		payload.Latitude = d.Geolocation.Latitude
		payload.Longitude = d.Geolocation.Longitude
	}
	return payload
}

// Submit re-validates the full draft (the authoritative gate), posts it, and on
// success resets the wizard. On any failure the draft is preserved so the user can
// retry without re-entering data.
func (a *Assembler) Submit(ctx context.Context, state *wizard.State, photoMgr *photos.Manager) (string, *Error) {
	draft := state.Draft()

	if errs := validate.All(draft, photoMgr.Count()); !errs.Valid() {
		return "", &Error{Validation: errs, Steps: validationSteps(errs)}
	}

	payload := Build(draft, photoMgr.EncodedPhotos())

	// Transient backend failures are retried; structured field rejections come back
	// immediately for the user to fix.
	var created *listings.CreateListingResponse
	err := a.client.RetryWithBackoff(func() error {
		resp, callErr := a.client.CreateListing(ctx, payload)
		if callErr != nil {
			return callErr
		}
		created = resp
		return nil
	}, 3)
	if err != nil {
		var apiErr *listings.APIError
		if errors.As(err, &apiErr) && len(apiErr.Fields) > 0 {
			return "", &Error{
				Fields: apiErr.Fields,
				Steps:  fieldErrorSteps(apiErr.Fields),
				Err:    err,
			}
		}
		logging.Logger.WithError(err).Warn("Listing submission failed without structured errors")
		return "", &Error{Generic: true, Err: err}
	}

	state.Reset(ctx)
	return created.ID, nil
}

func fieldErrorSteps(fields map[string][]string) map[string]int {
	steps := make(map[string]int, len(fields))
	for field := range fields {
		if step, ok := fieldSteps[normalizeField(field)]; ok {
			steps[field] = step
		}
	}
	return steps
}

func validationSteps(errs validate.Errors) map[string]int {
	steps := make(map[string]int, len(errs))
	for field := range errs {
		if step, ok := fieldSteps[normalizeField(field)]; ok {
			steps[field] = step
		}
	}
	return steps
}

func normalizeField(field string) string {
	return strings.ToLower(strings.ReplaceAll(field, "_", ""))
}
