package service

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/formloom/formloom-backend/internal/common"
	"github.com/formloom/formloom-backend/internal/domain"
	"github.com/formloom/formloom-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/datatypes"
)

// MockPresetRepository is a mock implementation of repository.PresetRepository
type MockPresetRepository struct {
	mock.Mock
}

func (m *MockPresetRepository) Create(preset *domain.FormPreset) error {
	args := m.Called(preset)
	return args.Error(0)
}

func (m *MockPresetRepository) FindByID(tenantID string, id uint64) (*domain.FormPreset, error) {
	args := m.Called(tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FormPreset), args.Error(1)
}

func (m *MockPresetRepository) List(tenantID string, page, limit int) ([]domain.FormPreset, int64, error) {
	args := m.Called(tenantID, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.FormPreset), args.Get(1).(int64), args.Error(2)
}

func (m *MockPresetRepository) Save(preset *domain.FormPreset) error {
	args := m.Called(preset)
	return args.Error(0)
}

func (m *MockPresetRepository) Delete(tenantID string, id uint64) error {
	args := m.Called(tenantID, id)
	return args.Error(0)
}

func (m *MockPresetRepository) CreateRevision(rev *domain.FormPresetRevision) error {
	args := m.Called(rev)
	return args.Error(0)
}

func (m *MockPresetRepository) CreateRevisions(revs []domain.FormPresetRevision) error {
	args := m.Called(revs)
	return args.Error(0)
}

func (m *MockPresetRepository) FindRevisions(tenantID string, presetID uint64) ([]domain.FormPresetRevision, error) {
	args := m.Called(tenantID, presetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FormPresetRevision), args.Error(1)
}

func (m *MockPresetRepository) FindLatestRevisions(tenantID string, presetID uint64, limit int) ([]domain.FormPresetRevision, error) {
	args := m.Called(tenantID, presetID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FormPresetRevision), args.Error(1)
}

func (m *MockPresetRepository) FindRevisionByVersion(tenantID string, presetID uint64, version uint) (*domain.FormPresetRevision, error) {
	args := m.Called(tenantID, presetID, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FormPresetRevision), args.Error(1)
}

func (m *MockPresetRepository) Transaction(fn func(tx repository.PresetRepository) error) error {
	return fn(m)
}

// MockFormRepository is a mock implementation of repository.FormRepository
type MockFormRepository struct {
	mock.Mock
}

func (m *MockFormRepository) Create(form *domain.Form) error {
	args := m.Called(form)
	return args.Error(0)
}

func (m *MockFormRepository) FindWithFields(tenantID string, id uint64) (*domain.Form, error) {
	args := m.Called(tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Form), args.Error(1)
}

func (m *MockFormRepository) List(tenantID string, page, limit int) ([]domain.Form, int64, error) {
	args := m.Called(tenantID, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Form), args.Get(1).(int64), args.Error(2)
}

func testForm(fieldCount int) *domain.Form {
	form := &domain.Form{
		ID:       10,
		TenantID: "tenant-a",
		Name:     "Contact form",
	}
	for i := 0; i < fieldCount; i++ {
		form.Fields = append(form.Fields, domain.FormField{
			FieldKey:  fmt.Sprintf("field_%d", i+1),
			Label:     fmt.Sprintf("Field %d", i+1),
			FieldType: "text",
			IsActive:  true,
			Position:  i,
		})
	}
	return form
}

func snapshotFieldCount(t *testing.T, snapshot datatypes.JSON) int {
	t.Helper()
	var doc struct {
		Fields []json.RawMessage `json:"fields"`
	}
	assert.NoError(t, json.Unmarshal(snapshot, &doc))
	return len(doc.Fields)
}

func newTestService(presets repository.PresetRepository, forms repository.FormRepository) PresetService {
	return NewPresetService(presets, forms, NewPresetCodec(1<<20, 50))
}

func TestCreateFromForm(t *testing.T) {
	presetRepo := new(MockPresetRepository)
	formRepo := new(MockFormRepository)
	formRepo.On("FindWithFields", "tenant-a", uint64(10)).Return(testForm(3), nil)
	presetRepo.On("Create", mock.AnythingOfType("*domain.FormPreset")).Return(nil)

	svc := newTestService(presetRepo, formRepo)
	preset, err := svc.CreateFromForm("tenant-a", "user-1", &domain.CreatePresetRequest{
		FormID:   10,
		Name:     "Contact preset",
		Category: "contact",
	})

	assert.NoError(t, err)
	assert.Equal(t, uint(1), preset.SnapshotVersion)
	assert.Equal(t, "tenant-a", preset.TenantID)
	assert.Equal(t, "user-1", preset.CreatedByUserID)
	assert.Equal(t, 3, snapshotFieldCount(t, preset.Snapshot))
	presetRepo.AssertExpectations(t)
}

func TestCreateFromForm_FormNotFound(t *testing.T) {
	presetRepo := new(MockPresetRepository)
	formRepo := new(MockFormRepository)
	formRepo.On("FindWithFields", "tenant-a", uint64(99)).Return(nil, common.ErrFormNotFound)

	svc := newTestService(presetRepo, formRepo)
	_, err := svc.CreateFromForm("tenant-a", "user-1", &domain.CreatePresetRequest{FormID: 99, Name: "x"})

	assert.ErrorIs(t, err, common.ErrFormNotFound)
	presetRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestCreateFromForm_TenantMismatch(t *testing.T) {
	presetRepo := new(MockPresetRepository)
	formRepo := new(MockFormRepository)
	formRepo.On("FindWithFields", "tenant-b", uint64(10)).Return(nil, common.ErrTenantMismatch)

	svc := newTestService(presetRepo, formRepo)
	_, err := svc.CreateFromForm("tenant-b", "user-1", &domain.CreatePresetRequest{FormID: 10, Name: "x"})

	assert.ErrorIs(t, err, common.ErrTenantMismatch)
}

func TestUpdateFromForm_ArchivesCurrentAndBumpsVersion(t *testing.T) {
	oldSnapshot := datatypes.JSON(`{"form":{"name":"old"},"fields":[]}`)
	preset := &domain.FormPreset{
		ID:              1,
		TenantID:        "tenant-a",
		Name:            "Contact preset",
		SnapshotVersion: 1,
		Snapshot:        oldSnapshot,
	}

	presetRepo := new(MockPresetRepository)
	formRepo := new(MockFormRepository)
	formRepo.On("FindWithFields", "tenant-a", uint64(10)).Return(testForm(4), nil)
	presetRepo.On("FindByID", "tenant-a", uint64(1)).Return(preset, nil)
	presetRepo.On("CreateRevision", mock.MatchedBy(func(rev *domain.FormPresetRevision) bool {
		return rev.PresetID == 1 && rev.Version == 1 && string(rev.Snapshot) == string(oldSnapshot)
	})).Return(nil)
	presetRepo.On("Save", mock.MatchedBy(func(p *domain.FormPreset) bool {
		return p.SnapshotVersion == 2
	})).Return(nil)
	presetRepo.On("FindRevisions", "tenant-a", uint64(1)).Return([]domain.FormPresetRevision{
		{PresetID: 1, Version: 1, Snapshot: oldSnapshot},
	}, nil)

	svc := newTestService(presetRepo, formRepo)
	detail, err := svc.UpdateFromForm("tenant-a", "user-2", 1, 10)

	assert.NoError(t, err)
	assert.Equal(t, uint(2), detail.Preset.SnapshotVersion)
	assert.Equal(t, 4, snapshotFieldCount(t, detail.Preset.Snapshot))
	assert.Len(t, detail.Revisions, 1)
	assert.Equal(t, uint(1), detail.Revisions[0].Version)
	presetRepo.AssertExpectations(t)
}

func TestUpdateFromForm_ConflictWhenVersionAlreadyArchived(t *testing.T) {
	preset := &domain.FormPreset{
		ID:              1,
		TenantID:        "tenant-a",
		SnapshotVersion: 3,
		Snapshot:        datatypes.JSON(`{}`),
	}

	presetRepo := new(MockPresetRepository)
	formRepo := new(MockFormRepository)
	presetRepo.On("FindByID", "tenant-a", uint64(1)).Return(preset, nil)
	formRepo.On("FindWithFields", "tenant-a", uint64(10)).Return(testForm(2), nil)
	presetRepo.On("CreateRevision", mock.Anything).Return(common.ErrVersionConflict)

	svc := newTestService(presetRepo, formRepo)
	_, err := svc.UpdateFromForm("tenant-a", "user-2", 1, 10)

	assert.ErrorIs(t, err, common.ErrVersionConflict)
	presetRepo.AssertNotCalled(t, "Save", mock.Anything)
}

func TestRollback_SameVersionRejected(t *testing.T) {
	preset := &domain.FormPreset{ID: 1, TenantID: "tenant-a", SnapshotVersion: 5}

	presetRepo := new(MockPresetRepository)
	presetRepo.On("FindByID", "tenant-a", uint64(1)).Return(preset, nil)

	svc := newTestService(presetRepo, new(MockFormRepository))
	_, err := svc.Rollback("tenant-a", "user-1", 1, 5)

	assert.ErrorIs(t, err, common.ErrSameVersion)
	presetRepo.AssertNotCalled(t, "CreateRevision", mock.Anything)
}

func TestRollback_RevisionNotFound(t *testing.T) {
	preset := &domain.FormPreset{ID: 1, TenantID: "tenant-a", SnapshotVersion: 5}

	presetRepo := new(MockPresetRepository)
	presetRepo.On("FindByID", "tenant-a", uint64(1)).Return(preset, nil)
	presetRepo.On("FindRevisionByVersion", "tenant-a", uint64(1), uint(2)).
		Return(nil, common.ErrRevisionNotFound)

	svc := newTestService(presetRepo, new(MockFormRepository))
	_, err := svc.Rollback("tenant-a", "user-1", 1, 2)

	assert.ErrorIs(t, err, common.ErrRevisionNotFound)
}

func TestRollback_ArchivesReplacedVersionNotTarget(t *testing.T) {
	currentSnapshot := datatypes.JSON(`{"form":{"name":"v3"},"fields":[]}`)
	targetSnapshot := datatypes.JSON(`{"form":{"name":"v1"},"fields":[]}`)
	preset := &domain.FormPreset{
		ID:              1,
		TenantID:        "tenant-a",
		SnapshotVersion: 3,
		Snapshot:        currentSnapshot,
	}

	presetRepo := new(MockPresetRepository)
	presetRepo.On("FindByID", "tenant-a", uint64(1)).Return(preset, nil)
	presetRepo.On("FindRevisionByVersion", "tenant-a", uint64(1), uint(1)).Return(
		&domain.FormPresetRevision{PresetID: 1, Version: 1, Snapshot: targetSnapshot}, nil)
	presetRepo.On("CreateRevision", mock.MatchedBy(func(rev *domain.FormPresetRevision) bool {
		// archives the version being replaced, never the target's
		return rev.Version == 3 && string(rev.Snapshot) == string(currentSnapshot)
	})).Return(nil)
	presetRepo.On("Save", mock.MatchedBy(func(p *domain.FormPreset) bool {
		return p.SnapshotVersion == 4 && string(p.Snapshot) == string(targetSnapshot)
	})).Return(nil)
	presetRepo.On("FindRevisions", "tenant-a", uint64(1)).Return([]domain.FormPresetRevision{
		{Version: 3}, {Version: 2}, {Version: 1},
	}, nil)

	svc := newTestService(presetRepo, new(MockFormRepository))
	detail, err := svc.Rollback("tenant-a", "user-1", 1, 1)

	assert.NoError(t, err)
	assert.Equal(t, uint(4), detail.Preset.SnapshotVersion)
	assert.Equal(t, string(targetSnapshot), string(detail.Preset.Snapshot))
	presetRepo.AssertExpectations(t)
}

func TestExport_CapsRevisionsAtCeiling(t *testing.T) {
	preset := &domain.FormPreset{
		ID:              1,
		TenantID:        "tenant-a",
		Name:            "Contact preset",
		SnapshotVersion: 4,
		Snapshot:        datatypes.JSON(`{"form":{"name":"v4"},"fields":[]}`),
	}
	revisions := []domain.FormPresetRevision{
		{Version: 3, Snapshot: datatypes.JSON(`{"v":3}`)},
		{Version: 2, Snapshot: datatypes.JSON(`{"v":2}`)},
		{Version: 1, Snapshot: datatypes.JSON(`{"v":1}`)},
	}

	presetRepo := new(MockPresetRepository)
	presetRepo.On("FindByID", "tenant-a", uint64(1)).Return(preset, nil)
	presetRepo.On("FindLatestRevisions", "tenant-a", uint64(1), 50).Return(revisions, nil)

	svc := newTestService(presetRepo, new(MockFormRepository))
	env, err := svc.Export("tenant-a", 1, true)

	assert.NoError(t, err)
	assert.Equal(t, domain.PresetExportFormat, env.Format)
	assert.Equal(t, domain.PresetExportFormatVersion, env.FormatVersion)
	assert.Equal(t, uint(4), env.Preset.SnapshotVersion)
	// emitted ascending regardless of fetch order
	assert.Len(t, env.Revisions, 3)
	assert.Equal(t, uint(1), env.Revisions[0].Version)
	assert.Equal(t, uint(3), env.Revisions[2].Version)
}

func TestExport_WithoutRevisions(t *testing.T) {
	preset := &domain.FormPreset{ID: 1, TenantID: "tenant-a", Name: "p", SnapshotVersion: 2, Snapshot: datatypes.JSON(`{}`)}

	presetRepo := new(MockPresetRepository)
	presetRepo.On("FindByID", "tenant-a", uint64(1)).Return(preset, nil)

	svc := newTestService(presetRepo, new(MockFormRepository))
	env, err := svc.Export("tenant-a", 1, false)

	assert.NoError(t, err)
	assert.Empty(t, env.Revisions)
	presetRepo.AssertNotCalled(t, "FindLatestRevisions", mock.Anything, mock.Anything, mock.Anything)
}

func TestImport_CreatesNewPresetWithHistory(t *testing.T) {
	raw := []byte(`{
		"format": "formloom.preset.export",
		"formatVersion": 1,
		"exportedAt": "2025-06-01T12:00:00Z",
		"preset": {"name": "Imported", "category": "contact", "snapshotVersion": 3, "snapshot": {"form":{"name":"v3"},"extra":"kept"}},
		"revisions": [
			{"version": 1, "snapshot": {"v":1}, "createdAt": "2025-05-01T00:00:00Z"},
			{"version": 2, "snapshot": {"v":2}, "createdAt": "2025-05-02T00:00:00Z"}
		]
	}`)

	presetRepo := new(MockPresetRepository)
	presetRepo.On("Create", mock.MatchedBy(func(p *domain.FormPreset) bool {
		return p.TenantID == "tenant-b" && p.SnapshotVersion == 3 && p.CreatedByUserID == "importer"
	})).Run(func(args mock.Arguments) {
		args.Get(0).(*domain.FormPreset).ID = 77
	}).Return(nil)
	presetRepo.On("CreateRevisions", mock.MatchedBy(func(revs []domain.FormPresetRevision) bool {
		return len(revs) == 2 && revs[0].PresetID == 77 && revs[0].CreatedByUserID == "importer"
	})).Return(nil)

	svc := newTestService(presetRepo, new(MockFormRepository))
	result, err := svc.Import("tenant-b", "importer", raw)

	assert.NoError(t, err)
	assert.Equal(t, uint64(77), result.PresetID)
	assert.Equal(t, "Imported", result.Name)
	assert.Equal(t, uint(3), result.SnapshotVersion)
	assert.Equal(t, 2, result.RevisionCount)
	presetRepo.AssertExpectations(t)
}

func TestImport_RejectsOversizedPayloadBeforePersistence(t *testing.T) {
	presetRepo := new(MockPresetRepository)
	formRepo := new(MockFormRepository)
	svc := NewPresetService(presetRepo, formRepo, NewPresetCodec(64, 50))

	big := []byte(`{"format":"formloom.preset.export","formatVersion":1,"preset":{"name":"` +
		string(make([]byte, 128)) + `"}}`)
	_, err := svc.Import("tenant-a", "user-1", big)

	assert.ErrorIs(t, err, common.ErrImportTooLarge)
	presetRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestExportImportRoundTrip(t *testing.T) {
	snapshot := datatypes.JSON(`{"form":{"name":"v2","unknown_field":true},"fields":[{"key":"a"}]}`)
	revSnapshot := datatypes.JSON(`{"form":{"name":"v1"},"fields":[]}`)
	preset := &domain.FormPreset{
		ID:              1,
		TenantID:        "tenant-a",
		Name:            "Round trip",
		SnapshotVersion: 2,
		Snapshot:        snapshot,
	}

	presetRepo := new(MockPresetRepository)
	presetRepo.On("FindByID", "tenant-a", uint64(1)).Return(preset, nil)
	presetRepo.On("FindLatestRevisions", "tenant-a", uint64(1), 50).Return([]domain.FormPresetRevision{
		{PresetID: 1, Version: 1, Snapshot: revSnapshot},
	}, nil)

	var imported *domain.FormPreset
	var importedRevs []domain.FormPresetRevision
	presetRepo.On("Create", mock.AnythingOfType("*domain.FormPreset")).Run(func(args mock.Arguments) {
		imported = args.Get(0).(*domain.FormPreset)
		imported.ID = 2
	}).Return(nil)
	presetRepo.On("CreateRevisions", mock.AnythingOfType("[]domain.FormPresetRevision")).Run(func(args mock.Arguments) {
		importedRevs = args.Get(0).([]domain.FormPresetRevision)
	}).Return(nil)

	svc := newTestService(presetRepo, new(MockFormRepository))

	env, err := svc.Export("tenant-a", 1, true)
	assert.NoError(t, err)
	raw, err := json.Marshal(env)
	assert.NoError(t, err)

	result, err := svc.Import("tenant-b", "importer", raw)
	assert.NoError(t, err)

	assert.Equal(t, preset.SnapshotVersion, result.SnapshotVersion)
	assert.JSONEq(t, string(snapshot), string(imported.Snapshot))
	assert.Len(t, importedRevs, 1)
	assert.Equal(t, uint(1), importedRevs[0].Version)
	assert.JSONEq(t, string(revSnapshot), string(importedRevs[0].Snapshot))
}

// fakePresetRepo is an in-memory PresetRepository that enforces the
// (preset_id, version) uniqueness constraint like the real store.
type fakePresetRepo struct {
	mu        sync.Mutex
	nextID    uint64
	presets   map[uint64]*domain.FormPreset
	revisions map[uint64][]domain.FormPresetRevision
}

func newFakePresetRepo() *fakePresetRepo {
	return &fakePresetRepo{
		nextID:    1,
		presets:   make(map[uint64]*domain.FormPreset),
		revisions: make(map[uint64][]domain.FormPresetRevision),
	}
}

func (f *fakePresetRepo) Create(preset *domain.FormPreset) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	preset.ID = f.nextID
	f.nextID++
	cp := *preset
	f.presets[preset.ID] = &cp
	return nil
}

func (f *fakePresetRepo) FindByID(tenantID string, id uint64) (*domain.FormPreset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.presets[id]
	if !ok {
		return nil, common.ErrPresetNotFound
	}
	if p.TenantID != tenantID {
		return nil, common.ErrTenantMismatch
	}
	cp := *p
	return &cp, nil
}

func (f *fakePresetRepo) List(tenantID string, page, limit int) ([]domain.FormPreset, int64, error) {
	return nil, 0, nil
}

func (f *fakePresetRepo) Save(preset *domain.FormPreset) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *preset
	f.presets[preset.ID] = &cp
	return nil
}

func (f *fakePresetRepo) Delete(tenantID string, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.presets, id)
	delete(f.revisions, id)
	return nil
}

func (f *fakePresetRepo) CreateRevision(rev *domain.FormPresetRevision) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.revisions[rev.PresetID] {
		if existing.Version == rev.Version {
			return common.ErrVersionConflict
		}
	}
	f.revisions[rev.PresetID] = append(f.revisions[rev.PresetID], *rev)
	return nil
}

func (f *fakePresetRepo) CreateRevisions(revs []domain.FormPresetRevision) error {
	for i := range revs {
		if err := f.CreateRevision(&revs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakePresetRepo) FindRevisions(tenantID string, presetID uint64) ([]domain.FormPresetRevision, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	revs := append([]domain.FormPresetRevision(nil), f.revisions[presetID]...)
	for i := 0; i < len(revs); i++ {
		for j := i + 1; j < len(revs); j++ {
			if revs[j].Version > revs[i].Version {
				revs[i], revs[j] = revs[j], revs[i]
			}
		}
	}
	return revs, nil
}

func (f *fakePresetRepo) FindLatestRevisions(tenantID string, presetID uint64, limit int) ([]domain.FormPresetRevision, error) {
	revs, err := f.FindRevisions(tenantID, presetID)
	if err != nil {
		return nil, err
	}
	if len(revs) > limit {
		revs = revs[:limit]
	}
	return revs, nil
}

func (f *fakePresetRepo) FindRevisionByVersion(tenantID string, presetID uint64, version uint) (*domain.FormPresetRevision, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rev := range f.revisions[presetID] {
		if rev.Version == version {
			cp := rev
			return &cp, nil
		}
	}
	return nil, common.ErrRevisionNotFound
}

func (f *fakePresetRepo) Transaction(fn func(tx repository.PresetRepository) error) error {
	return fn(f)
}

// TestLineageSequence walks the create -> update -> rollback lifecycle and
// checks version arithmetic and snapshot contents at every step.
func TestLineageSequence(t *testing.T) {
	repo := newFakePresetRepo()
	formRepo := new(MockFormRepository)
	formRepo.On("FindWithFields", "tenant-a", uint64(10)).Return(testForm(3), nil).Once()
	formRepo.On("FindWithFields", "tenant-a", uint64(10)).Return(testForm(4), nil).Once()

	svc := newTestService(repo, formRepo)

	// create: version 1, no revisions
	preset, err := svc.CreateFromForm("tenant-a", "user-1", &domain.CreatePresetRequest{FormID: 10, Name: "seq"})
	assert.NoError(t, err)
	assert.Equal(t, uint(1), preset.SnapshotVersion)
	assert.Equal(t, 3, snapshotFieldCount(t, preset.Snapshot))

	detail, err := svc.Get("tenant-a", preset.ID)
	assert.NoError(t, err)
	assert.Empty(t, detail.Revisions)

	// update against the 4-field form: version 2, one revision (the 3-field snapshot)
	detail, err = svc.UpdateFromForm("tenant-a", "user-1", preset.ID, 10)
	assert.NoError(t, err)
	assert.Equal(t, uint(2), detail.Preset.SnapshotVersion)
	assert.Equal(t, 4, snapshotFieldCount(t, detail.Preset.Snapshot))
	assert.Len(t, detail.Revisions, 1)
	assert.Equal(t, uint(1), detail.Revisions[0].Version)
	assert.Equal(t, 3, snapshotFieldCount(t, detail.Revisions[0].Snapshot))

	// rollback to v1: version 3, live snapshot is the 3-field shape again,
	// revisions now hold v1 (3 fields) and v2 (4 fields)
	detail, err = svc.Rollback("tenant-a", "user-1", preset.ID, 1)
	assert.NoError(t, err)
	assert.Equal(t, uint(3), detail.Preset.SnapshotVersion)
	assert.Equal(t, 3, snapshotFieldCount(t, detail.Preset.Snapshot))
	assert.Len(t, detail.Revisions, 2)
	assert.Equal(t, uint(2), detail.Revisions[0].Version)
	assert.Equal(t, 4, snapshotFieldCount(t, detail.Revisions[0].Snapshot))
	assert.Equal(t, uint(1), detail.Revisions[1].Version)
	assert.Equal(t, 3, snapshotFieldCount(t, detail.Revisions[1].Snapshot))
}

// TestConcurrentUpdateLosesRace simulates the second writer of a concurrent
// pair: the version slot it wants to archive is already taken, so it must
// observe a conflict and leave the preset untouched.
func TestConcurrentUpdateLosesRace(t *testing.T) {
	repo := newFakePresetRepo()
	formRepo := new(MockFormRepository)
	formRepo.On("FindWithFields", "tenant-a", uint64(10)).Return(testForm(3), nil)

	svc := newTestService(repo, formRepo)
	preset, err := svc.CreateFromForm("tenant-a", "user-1", &domain.CreatePresetRequest{FormID: 10, Name: "race"})
	assert.NoError(t, err)

	// another writer already archived version 1
	assert.NoError(t, repo.CreateRevision(&domain.FormPresetRevision{
		TenantID: "tenant-a",
		PresetID: preset.ID,
		Version:  1,
		Snapshot: preset.Snapshot,
	}))

	_, err = svc.UpdateFromForm("tenant-a", "user-1", preset.ID, 10)
	assert.ErrorIs(t, err, common.ErrVersionConflict)

	// exactly one revision exists and the head never moved
	current, err := repo.FindByID("tenant-a", preset.ID)
	assert.NoError(t, err)
	assert.Equal(t, uint(1), current.SnapshotVersion)
	revs, _ := repo.FindRevisions("tenant-a", preset.ID)
	assert.Len(t, revs, 1)
}
