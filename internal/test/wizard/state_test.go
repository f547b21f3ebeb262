package wizard_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-wizard-backend/internal/imagecodec"
	"listing-wizard-backend/internal/models"
	"listing-wizard-backend/internal/photos"
	"listing-wizard-backend/internal/storage"
	"listing-wizard-backend/internal/wizard"
)

type fixture struct {
	backing  *storage.MemoryStore
	store    *storage.DraftStore
	registry *imagecodec.PreviewRegistry
	photos   *photos.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backing := storage.NewMemoryStore(5 << 20)
	store := storage.NewDraftStore(backing, "owner-1")
	registry := imagecodec.NewPreviewRegistry()
	return &fixture{
		backing:  backing,
		store:    store,
		registry: registry,
		photos:   photos.NewManager(registry, store),
	}
}

func (f *fixture) newState(t *testing.T) *wizard.State {
	t.Helper()
	state, err := wizard.New(context.Background(), "owner-1", f.store, f.photos)
	require.NoError(t, err)
	return state
}

func TestNew_StartsAtStepOneWithDefaults(t *testing.T) {
	state := newFixture(t).newState(t)

	d := state.Draft()
	assert.Equal(t, models.StepFirst, d.Step)
	assert.Equal(t, models.DefaultCheckIn, d.CheckIn)
	assert.Equal(t, models.DefaultCheckOut, d.CheckOut)
	assert.Equal(t, "owner-1", d.OwnerID)
	assert.Empty(t, d.Name)
}

func TestSetters_WriteThroughImmediately(t *testing.T) {
	f := newFixture(t)
	state := f.newState(t)
	ctx := context.Background()

	state.SetName(ctx, "Cozy Seaside Flat")
	state.SetPropertyType(ctx, models.PropertyTypeApartment)

	// A fresh load sees every committed change without any explicit save call.
	persisted, err := f.store.LoadDraft(ctx)
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, "Cozy Seaside Flat", persisted.Name)
	assert.Equal(t, models.PropertyTypeApartment, persisted.PropertyType)
}

func TestAdvance_NeverSkipsAndStopsAtLast(t *testing.T) {
	f := newFixture(t)
	state := f.newState(t)
	ctx := context.Background()

	state.SetName(ctx, "Cozy Seaside Flat")
	for want := 2; want <= models.StepLast; want++ {
		step, err := state.Advance(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, step)
	}

	_, err := state.Advance(ctx)
	assert.Error(t, err, "cannot advance past the final step")
	assert.Equal(t, models.StepLast, state.Step())
}

func TestGoTo_ClampsToRange(t *testing.T) {
	f := newFixture(t)
	state := f.newState(t)
	ctx := context.Background()

	state.SetName(ctx, "Cozy Seaside Flat")
	assert.Equal(t, models.StepLast, state.GoTo(ctx, 99))
	assert.Equal(t, models.StepFirst, state.GoTo(ctx, -3))
}

func TestEmptyNameGuard_RedirectsToStepOne(t *testing.T) {
	f := newFixture(t)
	state := f.newState(t)
	ctx := context.Background()

	// Jumping deep into the wizard with no name is treated as not started.
	assert.Equal(t, models.StepFirst, state.GoTo(ctx, 4))

	state.SetName(ctx, "Cozy Seaside Flat")
	assert.Equal(t, 4, state.GoTo(ctx, 4))

	// Clearing the name while deep in the wizard snaps back on the next move.
	state.SetName(ctx, "")
	assert.Equal(t, models.StepFirst, state.GoTo(ctx, 5))
}

func TestRehydrate_RestoresPersistedDraft(t *testing.T) {
	f := newFixture(t)
	state := f.newState(t)
	ctx := context.Background()

	state.SetName(ctx, "Cozy Seaside Flat")
	state.SetDescription(ctx, strings.Repeat("Sea view from every room. ", 3))
	state.GoTo(ctx, 4)

	// A second mount (new manager, same backing channel) sees the same draft.
	restoredPhotos := photos.NewManager(imagecodec.NewPreviewRegistry(), f.store)
	restored, err := wizard.New(ctx, "owner-1", f.store, restoredPhotos)
	require.NoError(t, err)

	d := restored.Draft()
	assert.Equal(t, 4, d.Step)
	assert.Equal(t, "Cozy Seaside Flat", d.Name)
	assert.Equal(t, "owner-1", d.OwnerID)
}

func TestRehydrate_EmptyNameForcesStepOne(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Persist a nameless draft parked at step 3.
	d := models.NewDraft("owner-1")
	d.Step = 3
	require.NoError(t, f.store.SaveDraft(ctx, d))

	state := f.newState(t)
	assert.Equal(t, models.StepFirst, state.Step())
}

func TestReset_ClearsDraftPhotosAndStorage(t *testing.T) {
	f := newFixture(t)
	state := f.newState(t)
	ctx := context.Background()

	state.SetName(ctx, "Cozy Seaside Flat")
	state.SetFeatures(ctx, models.FeatureWiFi|models.FeatureKitchen)
	state.GoTo(ctx, 3)

	state.Reset(ctx)

	d := state.Draft()
	assert.Equal(t, models.StepFirst, d.Step)
	assert.Empty(t, d.Name)
	assert.Zero(t, d.Features)
	assert.Equal(t, "owner-1", d.OwnerID, "owner survives reset")

	persisted, err := f.store.LoadDraft(ctx)
	require.NoError(t, err)
	assert.Nil(t, persisted, "persisted draft is removed, not emptied")
}

func TestApply_PartialUpdate(t *testing.T) {
	f := newFixture(t)
	state := f.newState(t)
	ctx := context.Background()

	name := "Cozy Seaside Flat"
	features := models.FeatureWiFi | models.FeaturePool
	state.Apply(ctx, models.UpdateDraftRequest{
		Name:     &name,
		Features: &features,
	})

	d := state.Draft()
	assert.Equal(t, name, d.Name)
	assert.Equal(t, features, d.Features)
	assert.Equal(t, models.DefaultCheckIn, d.CheckIn, "untouched fields keep their values")
}
