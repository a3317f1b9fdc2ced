package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okingsaam/Pulse/internal/catalog"
	"github.com/okingsaam/Pulse/internal/identity"
	"github.com/okingsaam/Pulse/internal/logs"
	"github.com/okingsaam/Pulse/internal/memstore"
	"github.com/okingsaam/Pulse/internal/rejection"
)

var admin = identity.Actor{ID: uuid.New(), Role: identity.RoleAdmin}

func newManager() (*catalog.Manager, *memstore.Store) {
	store := memstore.New()
	return catalog.NewManager(store, store, "BR", logs.Discard()), store
}

func TestCreateProfessional(t *testing.T) {
	m, _ := newManager()
	ctx := context.Background()

	p, err := m.CreateProfessional(ctx, admin, catalog.ProfessionalInput{
		Name:      "Dr. Lima",
		Specialty: "Cardiology",
		LicenseID: " crm-sp 1234 ",
		Phone:     "11 3333-4444",
	})
	require.NoError(t, err)
	assert.True(t, p.Active)
	require.NotNil(t, p.LicenseID)
	assert.Equal(t, "CRM-SP 1234", *p.LicenseID)
	require.NotNil(t, p.Phone)
	assert.Equal(t, "+551133334444", *p.Phone)

	_, err = m.CreateProfessional(ctx, admin, catalog.ProfessionalInput{Name: "Dr. Reis", Specialty: "Cardiology", LicenseID: "CRM-SP 1234"})
	assert.True(t, rejection.Is(err, rejection.Conflict))
}

func TestCreateProfessional_Rules(t *testing.T) {
	m, _ := newManager()
	ctx := context.Background()

	_, err := m.CreateProfessional(ctx, identity.Actor{ID: uuid.New(), Role: identity.RoleProfessional}, catalog.ProfessionalInput{Name: "A", Specialty: "B"})
	assert.ErrorIs(t, err, catalog.ErrForbidden)

	_, err = m.CreateProfessional(ctx, admin, catalog.ProfessionalInput{Name: "A"})
	assert.ErrorIs(t, err, catalog.ErrSpecialtyRequired)
}

func TestCreateService_Rules(t *testing.T) {
	m, _ := newManager()
	ctx := context.Background()

	prof, err := m.CreateProfessional(ctx, admin, catalog.ProfessionalInput{Name: "Dr. Lima", Specialty: "Cardiology"})
	require.NoError(t, err)

	tests := []struct {
		name string
		in   catalog.ServiceInput
		want error
	}{
		{"negative price", catalog.ServiceInput{Name: "X", PriceCents: -1, Duration: time.Hour}, catalog.ErrNegativePrice},
		{"no duration", catalog.ServiceInput{Name: "X", PriceCents: 100}, catalog.ErrInvalidDuration},
		{"sub-second duration", catalog.ServiceInput{Name: "X", Duration: time.Millisecond}, catalog.ErrInvalidDuration},
		{"no name", catalog.ServiceInput{PriceCents: 100, Duration: time.Hour}, catalog.ErrNameRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.CreateService(ctx, admin, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	free, err := m.CreateService(ctx, admin, catalog.ServiceInput{Name: "Free screening", Duration: 15 * time.Minute})
	require.NoError(t, err)
	assert.Equal(t, int64(0), free.PriceCents)

	missing := uuid.New()
	_, err = m.CreateService(ctx, admin, catalog.ServiceInput{Name: "X", Duration: time.Hour, ProfessionalID: &missing})
	assert.True(t, rejection.Is(err, rejection.NotFound))

	owned, err := m.CreateService(ctx, admin, catalog.ServiceInput{Name: "Checkup", PriceCents: 20000, Duration: time.Hour, ProfessionalID: &prof.ID})
	require.NoError(t, err)

	list, err := m.ListServices(ctx, catalog.ServiceFilter{ProfessionalID: &prof.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, owned.ID, list[0].ID)
}

func TestLinkAccount(t *testing.T) {
	m, store := newManager()
	ctx := context.Background()

	prof, err := m.CreateProfessional(ctx, admin, catalog.ProfessionalInput{Name: "Dr. Lima", Specialty: "Cardiology"})
	require.NoError(t, err)
	other, err := m.CreateProfessional(ctx, admin, catalog.ProfessionalInput{Name: "Dr. Reis", Specialty: "Dermatology"})
	require.NoError(t, err)

	doctor := identity.Person{ID: uuid.New(), Name: "Lima", Role: identity.RoleProfessional, Active: true}
	patient := identity.Person{ID: uuid.New(), Name: "Ana", Role: identity.RolePatient, Active: true}
	require.NoError(t, store.CreatePerson(ctx, &doctor))
	require.NoError(t, store.CreatePerson(ctx, &patient))

	_, err = m.LinkAccount(ctx, admin, prof.ID, patient.ID)
	assert.ErrorIs(t, err, catalog.ErrNotProfessional)

	linked, err := m.LinkAccount(ctx, admin, prof.ID, doctor.ID)
	require.NoError(t, err)
	require.NotNil(t, linked.PersonID)
	assert.Equal(t, doctor.ID, *linked.PersonID)

	_, err = m.LinkAccount(ctx, admin, other.ID, doctor.ID)
	assert.ErrorIs(t, err, catalog.ErrPersonAlreadyLinked)

	_, err = m.LinkAccount(ctx, identity.Actor{ID: doctor.ID, Role: identity.RoleProfessional}, prof.ID, doctor.ID)
	assert.ErrorIs(t, err, catalog.ErrForbidden)
}

func TestUpdateAndDeleteService(t *testing.T) {
	m, _ := newManager()
	ctx := context.Background()

	svc, err := m.CreateService(ctx, admin, catalog.ServiceInput{Name: "Checkup", PriceCents: 100, Duration: time.Hour})
	require.NoError(t, err)

	inactive := false
	updated, err := m.UpdateService(ctx, admin, svc.ID, catalog.ServiceInput{Name: "Checkup", PriceCents: 250, Duration: 45 * time.Minute, Active: &inactive})
	require.NoError(t, err)
	assert.Equal(t, int64(250), updated.PriceCents)
	assert.False(t, updated.Active)

	active, err := m.ListServices(ctx, catalog.ServiceFilter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, m.DeleteService(ctx, admin, svc.ID))
	_, err = m.GetService(ctx, svc.ID)
	assert.ErrorIs(t, err, catalog.ErrServiceNotFound)
}
