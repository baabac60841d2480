package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"betegna-backend/models"
	"betegna-backend/storage"

	evbus "github.com/asaskevich/EventBus"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ownPrefix = "https://test-bucket.s3.eu-west-1.amazonaws.com/"

type fakeUploader struct {
	batches [][]storage.File
	folders []string
	err     error
}

func (u *fakeUploader) Upload(ctx context.Context, files []storage.File, folder string) ([]string, error) {
	if u.err != nil {
		return nil, u.err
	}
	u.batches = append(u.batches, files)
	u.folders = append(u.folders, folder)
	urls := make([]string, len(files))
	for i, f := range files {
		urls[i] = ownPrefix + folder + "/" + f.Name
	}
	return urls, nil
}

type fakeFetcher struct {
	fetched []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (storage.File, error) {
	f.fetched = append(f.fetched, url)
	return storage.File{Name: "fetched_" + fmt.Sprint(len(f.fetched)), Data: []byte(url)}, nil
}

type fakeServiceStore struct {
	existing  *models.Service
	insertErr error
	updateErr error

	inserted    []*models.Service
	updates     []map[string]interface{}
	deleted     int
	deletedRows int64
}

func (s *fakeServiceStore) Get(ctx context.Context, providerID, id uuid.UUID) (*models.Service, error) {
	if s.existing == nil {
		return nil, ErrNotFound
	}
	cp := *s.existing
	return &cp, nil
}

func (s *fakeServiceStore) Insert(ctx context.Context, svc *models.Service) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.inserted = append(s.inserted, svc)
	return nil
}

func (s *fakeServiceStore) UpdateFields(ctx context.Context, providerID, id uuid.UUID, fields map[string]interface{}) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updates = append(s.updates, fields)
	return nil
}

func (s *fakeServiceStore) Delete(ctx context.Context, providerID, id uuid.UUID) (int64, error) {
	s.deleted++
	return s.deletedRows, nil
}

type fakeMenuItemStore struct {
	existing *models.MenuItem
	inserted []*models.MenuItem
	updates  []map[string]interface{}
}

func (s *fakeMenuItemStore) Get(ctx context.Context, providerID, id uuid.UUID) (*models.MenuItem, error) {
	if s.existing == nil {
		return nil, ErrNotFound
	}
	cp := *s.existing
	return &cp, nil
}

func (s *fakeMenuItemStore) Insert(ctx context.Context, item *models.MenuItem) error {
	s.inserted = append(s.inserted, item)
	return nil
}

func (s *fakeMenuItemStore) UpdateFields(ctx context.Context, providerID, id uuid.UUID, fields map[string]interface{}) error {
	s.updates = append(s.updates, fields)
	return nil
}

func (s *fakeMenuItemStore) Delete(ctx context.Context, providerID, id uuid.UUID) (int64, error) {
	return 1, nil
}

func newTestPipeline() (*Pipeline, *fakeUploader, *fakeFetcher, *MediaStage, evbus.Bus) {
	stage := NewMediaStage()
	uploader := &fakeUploader{}
	fetcher := &fakeFetcher{}
	bus := evbus.New()
	p := &Pipeline{
		Stage:        stage,
		Uploader:     uploader,
		Fetcher:      fetcher,
		Bus:          bus,
		OwnURLPrefix: ownPrefix,
	}
	return p, uploader, fetcher, stage, bus
}

func collectEvents(t *testing.T, bus evbus.Bus, topic string) *[]EntityEvent {
	t.Helper()
	var events []EntityEvent
	require.NoError(t, bus.Subscribe(topic, func(ev EntityEvent) {
		events = append(events, ev)
	}))
	return &events
}

func TestResolveMediaSplicesBatchesInDraftOrder(t *testing.T) {
	p, uploader, fetcher, stage, _ := newTestPipeline()

	a := stage.Create("a.jpg", "image/jpeg", []byte("a"))
	b := stage.Create("b.jpg", "image/jpeg", []byte("b"))

	assets := []MediaAsset{
		{LocalURI: a.URI},
		{RemoteURL: ownPrefix + "public/p1/kept.jpg"},
		{RemoteURL: "https://elsewhere.example.com/foreign.jpg"},
		{LocalURI: b.URI},
	}

	urls, err := p.ResolveMedia(context.Background(), assets, "public/p1")
	require.NoError(t, err)
	require.Len(t, urls, 4)

	// One batch for the staged assets, one for the foreign remote.
	require.Len(t, uploader.batches, 2)
	assert.Len(t, uploader.batches[0], 2)
	assert.Len(t, uploader.batches[1], 1)
	assert.Equal(t, []string{"https://elsewhere.example.com/foreign.jpg"}, fetcher.fetched)

	// URLs land at the positions of their source assets.
	assert.Contains(t, urls[0], "a.jpg")
	assert.Equal(t, ownPrefix+"public/p1/kept.jpg", urls[1])
	assert.Contains(t, urls[2], "fetched_1")
	assert.Contains(t, urls[3], "b.jpg")

	// Resolution alone does not free the staged bytes; the caller
	// releases them after its write commits.
	_, err = stage.Read(a.URI)
	assert.NoError(t, err)
	_, err = stage.Read(b.URI)
	assert.NoError(t, err)
}

func TestResolveMediaKeepsStagedOnUploadFailure(t *testing.T) {
	p, uploader, _, stage, _ := newTestPipeline()
	uploader.err = errors.New("bucket down")

	a := stage.Create("a.jpg", "image/jpeg", []byte("a"))

	_, err := p.ResolveMedia(context.Background(), []MediaAsset{{LocalURI: a.URI}}, "public/p1")
	require.Error(t, err)

	// The staged asset survives so the client can retry the submit.
	_, err = stage.Read(a.URI)
	assert.NoError(t, err)
}

func TestResolveMediaRejectsEmptyAsset(t *testing.T) {
	p, uploader, _, _, _ := newTestPipeline()

	_, err := p.ResolveMedia(context.Background(), []MediaAsset{{}}, "public/p1")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, uploader.batches)
}

func TestCreateServiceUploadsOnceAndInserts(t *testing.T) {
	p, uploader, _, stage, bus := newTestPipeline()
	store := &fakeServiceStore{}
	providerID := uuid.New()
	events := collectEvents(t, bus, TopicServiceCreated)

	a := stage.Create("cover.jpg", "image/jpeg", []byte("img"))
	draft := ServiceDraft{
		Name:  "Haircut",
		Price: 30,
		Media: []MediaAsset{{LocalURI: a.URI}},
	}

	svc, err := p.CreateService(context.Background(), store, providerID, draft)
	require.NoError(t, err)

	require.Len(t, uploader.batches, 1)
	require.Len(t, uploader.batches[0], 1)
	assert.Equal(t, "public/"+providerID.String(), uploader.folders[0])

	require.Len(t, store.inserted, 1)
	assert.Equal(t, store.inserted[0], svc)
	require.Len(t, svc.ServiceImage, 1)
	assert.Contains(t, svc.ServiceImage[0], "cover.jpg")
	assert.True(t, svc.IsActive)

	require.Len(t, *events, 1)
	assert.Equal(t, providerID, (*events)[0].ProviderID)
	assert.Equal(t, svc.ID, (*events)[0].ID)

	// Staged bytes are freed once the insert committed.
	_, err = stage.Read(a.URI)
	assert.ErrorIs(t, err, ErrStaleAsset)
}

func TestCreateServiceRetriesAfterWriteFailure(t *testing.T) {
	p, _, _, stage, _ := newTestPipeline()
	providerID := uuid.New()

	a := stage.Create("cover.jpg", "image/jpeg", []byte("img"))
	draft := ServiceDraft{
		Name:  "Haircut",
		Price: 30,
		Media: []MediaAsset{{LocalURI: a.URI}},
	}

	broken := &fakeServiceStore{insertErr: errors.New("db down")}
	_, err := p.CreateService(context.Background(), broken, providerID, draft)
	require.Error(t, err)

	// The staged asset survives the failed write, so resubmitting the
	// identical draft succeeds.
	_, err = stage.Read(a.URI)
	require.NoError(t, err)

	healthy := &fakeServiceStore{}
	svc, err := p.CreateService(context.Background(), healthy, providerID, draft)
	require.NoError(t, err)
	require.Len(t, healthy.inserted, 1)
	require.Len(t, svc.ServiceImage, 1)

	_, err = stage.Read(a.URI)
	assert.ErrorIs(t, err, ErrStaleAsset, "the retry that committed frees the bytes")
}

func TestUpdateServiceKeepsStagedOnWriteFailure(t *testing.T) {
	p, _, _, stage, _ := newTestPipeline()
	providerID := uuid.New()
	store := &fakeServiceStore{
		existing:  existingService(providerID),
		updateErr: errors.New("db down"),
	}

	a := stage.Create("new.jpg", "image/jpeg", []byte("img"))
	patch := ServicePatch{Media: []MediaAsset{{LocalURI: a.URI}}}

	_, err := p.UpdateService(context.Background(), store, providerID, store.existing.ID, patch)
	require.Error(t, err)

	_, err = stage.Read(a.URI)
	assert.NoError(t, err, "a failed update leaves the draft retryable")

	store.updateErr = nil
	_, err = p.UpdateService(context.Background(), store, providerID, store.existing.ID, patch)
	require.NoError(t, err)
	require.Len(t, store.updates, 1)

	_, err = stage.Read(a.URI)
	assert.ErrorIs(t, err, ErrStaleAsset)
}

func TestCreateServiceValidationShortCircuits(t *testing.T) {
	p, uploader, _, _, _ := newTestPipeline()
	store := &fakeServiceStore{}

	_, err := p.CreateService(context.Background(), store, uuid.New(), ServiceDraft{
		Name:  "", // invalid
		Price: 30,
		Media: []MediaAsset{{LocalURI: "staged://x"}},
	})
	require.ErrorIs(t, err, ErrValidation)

	assert.Empty(t, uploader.batches, "validation failure must precede any upload")
	assert.Empty(t, store.inserted, "validation failure must precede any write")
}

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool      { return &b }

func existingService(providerID uuid.UUID) *models.Service {
	catID := uuid.New()
	return &models.Service{
		ID:           uuid.New(),
		ProviderID:   providerID,
		Name:         "Haircut",
		Description:  "Classic cut",
		Price:        30,
		Discount:     5,
		CategoryID:   &catID,
		ServiceImage: models.StringList{ownPrefix + "public/p/old.jpg"},
		IsActive:     true,
	}
}

func TestUpdateServiceWritesOnlyChangedFields(t *testing.T) {
	p, uploader, _, _, bus := newTestPipeline()
	providerID := uuid.New()
	store := &fakeServiceStore{existing: existingService(providerID)}
	events := collectEvents(t, bus, TopicServiceUpdated)

	// The client resubmits the whole form; only the name differs.
	patch := ServicePatch{
		Name:        strPtr("Fade"),
		Description: strPtr("Classic cut"),
		Price:       f64Ptr(30),
		Discount:    f64Ptr(5),
		IsActive:    boolPtr(true),
	}

	updated, err := p.UpdateService(context.Background(), store, providerID, store.existing.ID, patch)
	require.NoError(t, err)

	require.Len(t, store.updates, 1)
	assert.Equal(t, map[string]interface{}{"name": "Fade"}, store.updates[0])
	assert.Equal(t, "Fade", updated.Name)
	assert.Equal(t, 30.0, updated.Price)
	assert.Empty(t, uploader.batches, "untouched media must not trigger uploads")

	require.Len(t, *events, 1)
	assert.Equal(t, map[string]interface{}{"name": "Fade"}, (*events)[0].Fields)
}

func TestUpdateServiceNoOpSkipsWrite(t *testing.T) {
	p, _, _, _, bus := newTestPipeline()
	providerID := uuid.New()
	store := &fakeServiceStore{existing: existingService(providerID)}
	events := collectEvents(t, bus, TopicServiceUpdated)

	patch := ServicePatch{
		Name:     strPtr("Haircut"),
		Price:    f64Ptr(30),
		Discount: f64Ptr(5),
	}

	updated, err := p.UpdateService(context.Background(), store, providerID, store.existing.ID, patch)
	require.NoError(t, err)

	assert.Empty(t, store.updates, "an unchanged submit must not hit the database")
	assert.Empty(t, *events, "a no-op publishes nothing")
	assert.Equal(t, store.existing.Name, updated.Name)
}

func TestUpdateServiceUnchangedMediaIsNotRewritten(t *testing.T) {
	p, uploader, _, _, _ := newTestPipeline()
	providerID := uuid.New()
	store := &fakeServiceStore{existing: existingService(providerID)}

	// Media resubmitted as the same own-bucket URL.
	patch := ServicePatch{
		Media: []MediaAsset{{RemoteURL: store.existing.ServiceImage[0]}},
	}

	_, err := p.UpdateService(context.Background(), store, providerID, store.existing.ID, patch)
	require.NoError(t, err)

	assert.Empty(t, uploader.batches)
	assert.Empty(t, store.updates)
}

func TestUpdateServiceValidatesPatchedNumbers(t *testing.T) {
	p, _, _, _, _ := newTestPipeline()
	providerID := uuid.New()
	store := &fakeServiceStore{existing: existingService(providerID)}

	// New discount exceeds the unchanged price.
	_, err := p.UpdateService(context.Background(), store, providerID, store.existing.ID, ServicePatch{
		Discount: f64Ptr(31),
	})
	require.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, store.updates)

	// Clearing all media is rejected.
	_, err = p.UpdateService(context.Background(), store, providerID, store.existing.ID, ServicePatch{
		Media: []MediaAsset{},
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateServiceNotFound(t *testing.T) {
	p, _, _, _, _ := newTestPipeline()
	store := &fakeServiceStore{existing: nil}

	_, err := p.UpdateService(context.Background(), store, uuid.New(), uuid.New(), ServicePatch{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteService(t *testing.T) {
	p, _, _, _, bus := newTestPipeline()
	providerID := uuid.New()
	id := uuid.New()
	events := collectEvents(t, bus, TopicServiceDeleted)

	store := &fakeServiceStore{deletedRows: 0}
	err := p.DeleteService(context.Background(), store, providerID, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, *events)

	store = &fakeServiceStore{deletedRows: 1}
	err = p.DeleteService(context.Background(), store, providerID, id)
	require.NoError(t, err)
	require.Len(t, *events, 1)
	assert.Equal(t, id, (*events)[0].ID)
}

func TestUpdateMenuItemDescriptionOnly(t *testing.T) {
	p, uploader, _, _, bus := newTestPipeline()
	providerID := uuid.New()
	store := &fakeMenuItemStore{existing: &models.MenuItem{
		ID:              uuid.New(),
		ProviderID:      providerID,
		Name:            "Pasta",
		Description:     "Old text",
		Price:           12,
		DiscountPercent: 10,
		MenuImage:       models.StringList{ownPrefix + "public/p/pasta.jpg"},
		IsAvailable:     true,
	}}
	events := collectEvents(t, bus, TopicMenuItemUpdated)

	patch := MenuItemPatch{
		Name:            strPtr("Pasta"),
		Description:     strPtr("Fresh egg pasta"),
		Price:           f64Ptr(12),
		DiscountPercent: f64Ptr(10),
	}

	updated, err := p.UpdateMenuItem(context.Background(), store, providerID, store.existing.ID, patch)
	require.NoError(t, err)

	require.Len(t, store.updates, 1)
	assert.Equal(t, map[string]interface{}{"description": "Fresh egg pasta"}, store.updates[0])
	assert.Equal(t, "Fresh egg pasta", updated.Description)
	assert.Empty(t, uploader.batches)
	require.Len(t, *events, 1)
}

func TestCreateMenuItemValidationGate(t *testing.T) {
	p, uploader, _, _, _ := newTestPipeline()
	store := &fakeMenuItemStore{}

	_, err := p.CreateMenuItem(context.Background(), store, uuid.New(), MenuItemDraft{
		Name:            "Pasta",
		Price:           12,
		DiscountPercent: 150, // invalid
		Media:           []MediaAsset{{LocalURI: "staged://x"}},
	})
	require.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, uploader.batches)
	assert.Empty(t, store.inserted)
}
