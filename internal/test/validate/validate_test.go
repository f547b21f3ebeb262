package validate_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"listing-wizard-backend/internal/models"
	"listing-wizard-backend/internal/validate"
)

func validDraft() models.Draft {
	return models.Draft{
		Step:         1,
		Name:         "Cozy Seaside Flat",
		PropertyType: models.PropertyTypeVilla,
		Geolocation:  &models.Geolocation{Latitude: 50.45, Longitude: 30.52},
		Description:  strings.Repeat("Spacious and bright villa. ", 3),
		CheckIn:      models.TimeOfDay{Hour: 15, Minute: 0},
		CheckOut:     models.TimeOfDay{Hour: 11, Minute: 0},
		OwnerID:      "owner-1",
	}
}

func TestStep1_NameBoundaries(t *testing.T) {
	d := validDraft()

	d.Name = strings.Repeat("a", 9)
	assert.Contains(t, validate.Step1(d), "name", "9 characters is too short")

	d.Name = strings.Repeat("a", 10)
	assert.NotContains(t, validate.Step1(d), "name", "10 characters is the lower bound")

	d.Name = strings.Repeat("a", 100)
	assert.NotContains(t, validate.Step1(d), "name", "100 characters is the upper bound")

	d.Name = strings.Repeat("a", 101)
	assert.Contains(t, validate.Step1(d), "name", "101 characters is too long")

	// The bound applies to the trimmed name.
	d.Name = "   " + strings.Repeat("a", 9) + "   "
	assert.Contains(t, validate.Step1(d), "name")
}

func TestStep1_PropertyType(t *testing.T) {
	d := validDraft()

	d.PropertyType = 0
	assert.Contains(t, validate.Step1(d), "property_type", "absence is invalid")

	d.PropertyType = models.PropertyType(9)
	assert.Contains(t, validate.Step1(d), "property_type")

	for pt := models.PropertyTypeHotel; pt <= models.PropertyTypeCottage; pt++ {
		d.PropertyType = pt
		assert.NotContains(t, validate.Step1(d), "property_type")
	}
}

func TestStep2_Geolocation(t *testing.T) {
	d := validDraft()
	assert.True(t, validate.Step2(d).Valid())

	d.Geolocation = nil
	assert.Contains(t, validate.Step2(d), "geolocation")

	d.Geolocation = &models.Geolocation{Latitude: 90.5, Longitude: 0}
	assert.Contains(t, validate.Step2(d), "latitude")

	d.Geolocation = &models.Geolocation{Latitude: 0, Longitude: -180.5}
	assert.Contains(t, validate.Step2(d), "longitude")

	d.Geolocation = &models.Geolocation{Latitude: -90, Longitude: 180}
	assert.True(t, validate.Step2(d).Valid(), "bounds are inclusive")
}

func TestStep3_ZeroAmenitiesIsNoticeOnly(t *testing.T) {
	d := validDraft()
	d.Features = 0

	errs, notices := validate.Step3(d)
	assert.True(t, errs.Valid())
	assert.Contains(t, notices, "features")

	d.Features = models.FeatureWiFi
	_, notices = validate.Step3(d)
	assert.NotContains(t, notices, "features")
}

func TestStep4_DescriptionBoundaries(t *testing.T) {
	d := validDraft()

	d.Description = strings.Repeat("a", 49)
	assert.Contains(t, validate.Step4(d), "description")

	d.Description = strings.Repeat("a", 50)
	assert.NotContains(t, validate.Step4(d), "description")

	d.Description = strings.Repeat("a", 200)
	assert.NotContains(t, validate.Step4(d), "description")

	d.Description = strings.Repeat("a", 201)
	assert.Contains(t, validate.Step4(d), "description")
}

func TestStep4_CheckTimes(t *testing.T) {
	d := validDraft()

	d.CheckIn = models.TimeOfDay{Hour: 11, Minute: 0}
	assert.Contains(t, validate.Step4(d), "check_in", "check-in before noon is invalid")

	d = validDraft()
	d.CheckOut = models.TimeOfDay{Hour: 13, Minute: 0}
	assert.Contains(t, validate.Step4(d), "check_out", "check-out after noon is invalid")

	d = validDraft()
	d.CheckIn = models.TimeOfDay{Hour: 15, Minute: 20}
	assert.Contains(t, validate.Step4(d), "check_in", "minutes must land on a quarter hour")
}

func TestStep4_CircularGap(t *testing.T) {
	d := validDraft()

	// 23:00 in, 06:00 out: the gap wraps to 420 minutes and is fine.
	d.CheckIn = models.TimeOfDay{Hour: 23, Minute: 0}
	d.CheckOut = models.TimeOfDay{Hour: 6, Minute: 0}
	assert.True(t, validate.Step4(d).Valid())

	// 12:30 in, 12:00 out: only 30 minutes to turn the property around.
	d.CheckIn = models.TimeOfDay{Hour: 12, Minute: 30}
	d.CheckOut = models.TimeOfDay{Hour: 12, Minute: 0}
	assert.Contains(t, validate.Step4(d), "check_in")

	// Exactly 60 minutes passes.
	d.CheckIn = models.TimeOfDay{Hour: 13, Minute: 0}
	d.CheckOut = models.TimeOfDay{Hour: 12, Minute: 0}
	assert.True(t, validate.Step4(d).Valid())
}

func TestStep5_PhotoCount(t *testing.T) {
	errs, notices := validate.Step5(0)
	assert.Contains(t, errs, "photos", "at least one photo is required")
	assert.Empty(t, notices)

	errs, notices = validate.Step5(3)
	assert.True(t, errs.Valid())
	assert.Contains(t, notices, "photos", "below the recommended count is a notice")

	errs, notices = validate.Step5(5)
	assert.True(t, errs.Valid())
	assert.Empty(t, notices)

	errs, _ = validate.Step5(16)
	assert.Contains(t, errs, "photos")
}

func TestForStep_UnknownStepIsValid(t *testing.T) {
	errs, _ := validate.ForStep(6, validDraft(), 5)
	assert.True(t, errs.Valid())
}

func TestAll_UnionOfAllSteps(t *testing.T) {
	d := validDraft()
	assert.True(t, validate.All(d, 1).Valid())

	d.Name = "short"
	d.Geolocation = nil
	d.Description = "too short"
	errs := validate.All(d, 0)
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "geolocation")
	assert.Contains(t, errs, "description")
	assert.Contains(t, errs, "photos")
}
