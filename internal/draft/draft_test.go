package draft

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/therapy-booking/internal/catalog"
	"github.com/wolfman30/therapy-booking/internal/persistence"
	"github.com/wolfman30/therapy-booking/pkg/logging"
)

func newTestService(t *testing.T, port persistence.Port) *Service {
	t.Helper()
	svc, err := NewService(context.Background(), port, catalog.Default(), logging.Discard())
	require.NoError(t, err)
	return svc
}

func firstTherapist(t *testing.T) catalog.Therapist {
	t.Helper()
	th, err := catalog.Default().Therapist("th-001")
	require.NoError(t, err)
	return th
}

func TestSetPackageUsesCanonicalRecord(t *testing.T) {
	svc := newTestService(t, persistence.NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, svc.SetPackage(ctx, "STARTER"))
	d := svc.Current()
	require.NotNil(t, d.Package)
	assert.Equal(t, catalog.PackageStarter, d.Package.Key)
	assert.Equal(t, int64(4999), d.Package.Price)
	assert.Equal(t, 4, d.Package.Sessions)

	err := svc.SetPackage(ctx, "platinum")
	assert.ErrorIs(t, err, catalog.ErrUnknownPackage)
	assert.Equal(t, catalog.PackageStarter, svc.Current().Package.Key)
}

func TestAmountsDelegateToPricing(t *testing.T) {
	svc := newTestService(t, persistence.NewMemoryStore())
	ctx := context.Background()

	assert.Equal(t, int64(0), svc.FinalAmount())

	require.NoError(t, svc.SetPackage(ctx, catalog.PackageStarter))
	assert.Equal(t, int64(4999), svc.TotalAmount())
	assert.Equal(t, int64(900), svc.TaxAmount())
	assert.Equal(t, int64(5899), svc.FinalAmount())

	require.NoError(t, svc.SetIsAssessment(ctx, true))
	assert.Equal(t, int64(0), svc.TotalAmount())
	assert.Equal(t, int64(0), svc.TaxAmount())
	assert.Equal(t, int64(0), svc.FinalAmount())
}

func TestMutationsPersistAndResume(t *testing.T) {
	port := persistence.NewMemoryStore()
	ctx := context.Background()
	svc := newTestService(t, port)

	require.NoError(t, svc.SetIsAssessment(ctx, false))
	_, ok, err := port.Load(ctx, persistence.KeyBookingDraft)
	require.NoError(t, err)
	assert.False(t, ok, "empty draft is not persisted")

	require.NoError(t, svc.SetTherapist(ctx, firstTherapist(t)))
	require.NoError(t, svc.SetPackage(ctx, catalog.PackageProfessional))
	require.NoError(t, svc.SetDateTime(ctx, "2025-06-02", "10:00"))

	raw, ok, err := port.Load(ctx, persistence.KeyBookingDraft)
	require.NoError(t, err)
	require.True(t, ok)
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &fields))
	for _, k := range []string{"therapist", "package", "date", "time", "isAssessment"} {
		assert.Contains(t, fields, k)
	}

	resumed := newTestService(t, port)
	d := resumed.Current()
	require.NotNil(t, d.Therapist)
	assert.Equal(t, "th-001", d.Therapist.ID)
	assert.Equal(t, catalog.PackageProfessional, d.Package.Key)
	assert.Equal(t, "2025-06-02", *d.Date)
	assert.Equal(t, "10:00", *d.Time)
	assert.NoError(t, d.Validate())
}

func TestClearErasesPersistedRecord(t *testing.T) {
	port := persistence.NewMemoryStore()
	ctx := context.Background()
	svc := newTestService(t, port)
	require.NoError(t, svc.SetTherapist(ctx, firstTherapist(t)))

	require.NoError(t, svc.Clear(ctx))
	_, ok, err := port.Load(ctx, persistence.KeyBookingDraft)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, svc.Current().Empty())

	resumed := newTestService(t, port)
	assert.True(t, resumed.Current().Empty())
}

func TestUnreadableDraftIsDiscarded(t *testing.T) {
	port := persistence.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, port.Save(ctx, persistence.KeyBookingDraft, "[broken"))

	svc := newTestService(t, port)
	assert.True(t, svc.Current().Empty())
	_, ok, err := port.Load(ctx, persistence.KeyBookingDraft)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	th := firstTherapist(t)
	date, clock := "2025-06-02", "10:00"
	pkg, err := catalog.Default().Package(catalog.PackageSingle)
	require.NoError(t, err)

	assert.ErrorIs(t, Draft{}.Validate(), ErrIncomplete)
	assert.ErrorIs(t, Draft{Therapist: &th, Date: &date, Time: &clock}.Validate(), ErrIncomplete)
	assert.NoError(t, Draft{Therapist: &th, Date: &date, Time: &clock, IsAssessment: true}.Validate())
	assert.NoError(t, Draft{Therapist: &th, Package: &pkg, Date: &date, Time: &clock}.Validate())
	assert.ErrorIs(t, Draft{Therapist: &th, Package: &pkg}.Validate(), ErrIncomplete)
}

func TestCurrentIsACopy(t *testing.T) {
	svc := newTestService(t, persistence.NewMemoryStore())
	ctx := context.Background()
	require.NoError(t, svc.SetTherapist(ctx, firstTherapist(t)))

	d := svc.Current()
	d.Therapist.Name = "changed"
	d.Therapist.Specializations[0] = "changed"
	again := svc.Current()
	assert.NotEqual(t, "changed", again.Therapist.Name)
	assert.NotEqual(t, "changed", again.Therapist.Specializations[0])
}
